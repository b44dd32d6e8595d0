package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	authentication "github.com/Alwanly/attribute-poll/pkg/auth"
	"github.com/Alwanly/attribute-poll/pkg/deps"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/middleware"
	"github.com/Alwanly/attribute-poll/pkg/poll"
)

type recordingPoller struct {
	mu   sync.Mutex
	cmds []poll.Command
}

func (p *recordingPoller) Start(context.Context) error { return nil }
func (p *recordingPoller) Stop() error                 { return nil }

func (p *recordingPoller) Send(cmd poll.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, cmd)
}

func (p *recordingPoller) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cmds)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app    *fiber.App
	store  *attribute.MemoryStore
	poller *recordingPoller
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(middleware.CanonicalLoggerMiddleware(log))

	s := &testServer{app: app, store: attribute.NewMemoryStore(), poller: &recordingPoller{}}
	NewHandler(deps.App{
		Fiber:  app,
		Logger: log,
		Middleware: middleware.NewAuthMiddleware(middleware.SetBasicAuth(&authentication.BasicAuthTConfig{
			AdminUsername: "admin",
			AdminPassword: "secret",
		})),
		Store:  s.store,
		Poller: s.poller,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string, admin bool) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if admin {
		req.Header.Set(fiber.HeaderAuthorization, "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.poller.Send(poll.EnableCommand{})

	code, env := s.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"healthy","service":"attribute-poll","pending_commands":1}`, string(env.Data))
}

func TestPollCommands(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/poll/register", `{"attribute":12,"interval_seconds":30}`, true)
	assert.Equal(t, http.StatusAccepted, code)
	assert.True(t, env.Success)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/poll/12/schedule"},
		{http.MethodPost, "/poll/12/restart"},
		{http.MethodDelete, "/poll/12"},
		{http.MethodPost, "/poll/disable"},
		{http.MethodPost, "/poll/enable"},
		{http.MethodPost, "/poll/print"},
	} {
		code, _ := s.do(t, tc.method, tc.path, "", true)
		assert.Equal(t, http.StatusAccepted, code, tc.path)
	}

	assert.Equal(t, []poll.Command{
		poll.RegisterCommand{Attribute: 12, Interval: 30},
		poll.ScheduleCommand{Attribute: 12},
		poll.RestartCommand{Attribute: 12},
		poll.DeregisterCommand{Attribute: 12},
		poll.DisableCommand{},
		poll.EnableCommand{},
		poll.PrintQueueCommand{},
	}, s.poller.cmds)
}

func TestPollCommands_Rejected(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/poll/enable", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodPost, "/poll/register", `{"attribute":0}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "attribute")

	code, _ = s.do(t, http.MethodPost, "/poll/abc/schedule", "", true)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Empty(t, s.poller.cmds)
}

func TestAttributes(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/attributes", `{"type":9729}`, true)
	require.Equal(t, http.StatusCreated, code)

	var created struct {
		ID     uint64 `json:"id"`
		Type   string `json:"type"`
		Parent uint64 `json:"parent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "0x00002601", created.Type)
	assert.Equal(t, uint64(s.store.Root()), created.Parent)

	path := "/attributes/" + strconv.FormatUint(created.ID, 10)
	code, _ = s.do(t, http.MethodGet, path, "", false)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, path, "", false)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAttributes_Errors(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/attributes", `{"type":1}`, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/attributes", `{"parent":999,"type":9729}`, true)
	assert.Equal(t, http.StatusNotFound, code)

	root := "/attributes/" + strconv.FormatUint(uint64(s.store.Root()), 10)
	code, _ = s.do(t, http.MethodDelete, root, "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(t, http.MethodDelete, root, "", true)
	assert.Equal(t, http.StatusBadRequest, code)
}
