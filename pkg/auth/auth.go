package authentication

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

type IBasicAuthService interface {
	ValidateAdmin(username, password string) bool
	DecodeFromHeader(auth string) (string, string)
}

type BasicAuthTConfig struct {
	AdminUsername string
	AdminPassword string
}

type basicAuth struct {
	adminUsername string
	adminPassword string
}

func NewBasicAuthService(config *BasicAuthTConfig) IBasicAuthService {
	if config == nil {
		config = &BasicAuthTConfig{}
	}
	return &basicAuth{
		adminUsername: config.AdminUsername,
		adminPassword: config.AdminPassword,
	}
}

// DecodeFromHeader returns empty credentials for anything that is not a
// well formed Basic authorization value.
func (b *basicAuth) DecodeFromHeader(auth string) (string, string) {
	encoded, ok := strings.CutPrefix(auth, "Basic ")
	if !ok {
		return "", ""
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ""
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", ""
	}
	return username, password
}

// ValidateAdmin never accepts an unconfigured account.
func (b *basicAuth) ValidateAdmin(username, password string) bool {
	if b.adminUsername == "" || b.adminPassword == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(b.adminUsername), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(b.adminPassword), []byte(password)) == 1
	return userOK && passOK
}
