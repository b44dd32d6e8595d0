package authentication

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestDecodeFromHeader(t *testing.T) {
	svc := NewBasicAuthService(&BasicAuthTConfig{})

	user, pass := svc.DecodeFromHeader(header("admin", "s3:cret"))
	assert.Equal(t, "admin", user)
	assert.Equal(t, "s3:cret", pass)

	user, pass = svc.DecodeFromHeader("Bearer token")
	assert.Empty(t, user)
	assert.Empty(t, pass)

	user, _ = svc.DecodeFromHeader("Basic !!!")
	assert.Empty(t, user)
}

func TestValidateAdmin(t *testing.T) {
	svc := NewBasicAuthService(&BasicAuthTConfig{AdminUsername: "admin", AdminPassword: "password"})
	assert.True(t, svc.ValidateAdmin("admin", "password"))
	assert.False(t, svc.ValidateAdmin("admin", "wrong"))

	empty := NewBasicAuthService(nil)
	assert.False(t, empty.ValidateAdmin("", ""))
}
