package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-sync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() config.Config {
	return config.Config{
		App:   config.AppConfig{AppName: "portfolio", Environment: "test", HTTPPort: "0"},
		Store: config.StoreConfig{Driver: config.DriverMemory},
		JWT: config.JWTConfig{
			AccessSecret:     "access",
			RefreshSecret:    "refresh",
			AccessExpiresIn:  time.Hour,
			RefreshExpiresIn: 2 * time.Hour,
		},
		Admin: config.AdminConfig{Username: "admin", Password: "let-me-in"},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	a, cleanup, err := Bootstrap(ctx, testConfig(), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = cleanup()
	})
	return a
}

func call(t *testing.T, a *App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func login(t *testing.T, a *App) (string, string) {
	t.Helper()
	status, env := call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "let-me-in",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken, data.RefreshToken
}

type contentData struct {
	Domain string            `json:"domain"`
	Items  []json.RawMessage `json:"items"`
	Empty  bool              `json:"empty"`
}

type editorData struct {
	Mode  string `json:"mode"`
	Items []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"items"`
}

func TestApp_PublicContent(t *testing.T) {
	a := newTestApp(t)

	status, _ := call(t, a, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := call(t, a, http.MethodGet, "/api/v1/content/projects", "", nil)
	require.Equal(t, http.StatusOK, status)
	var projects contentData
	require.NoError(t, json.Unmarshal(env.Data, &projects))
	assert.Equal(t, "projects", projects.Domain)
	assert.Len(t, projects.Items, 6)
	assert.False(t, projects.Empty)

	status, env = call(t, a, http.MethodGet, "/api/v1/content", "", nil)
	require.Equal(t, http.StatusOK, status)
	var all []contentData
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 3)

	status, _ = call(t, a, http.MethodGet, "/api/v1/content/blog", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestApp_AdminRequiresToken(t *testing.T) {
	a := newTestApp(t)

	status, env := call(t, a, http.MethodGet, "/api/v1/admin/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Status)

	status, _ = call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	_, refresh := login(t, a)
	status, _ = call(t, a, http.MethodGet, "/api/v1/admin/session", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestApp_AddCertificateShowsUpPublicly(t *testing.T) {
	a := newTestApp(t)
	token, _ := login(t, a)

	status, env := call(t, a, http.MethodPost, "/api/v1/admin/certificates/add", token, nil)
	require.Equal(t, http.StatusOK, status)
	var ed editorData
	require.NoError(t, json.Unmarshal(env.Data, &ed))
	assert.Equal(t, "creating", ed.Mode)

	status, env = call(t, a, http.MethodPost, "/api/v1/admin/certificates/save", token, map[string]string{
		"title": "X", "issuer": "Y", "date": "2024", "link": "https://x",
	})
	require.Equal(t, http.StatusCreated, status)
	ed = editorData{}
	require.NoError(t, json.Unmarshal(env.Data, &ed))
	assert.Equal(t, "browsing", ed.Mode)
	require.Len(t, ed.Items, 3)
	added := ed.Items[2]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "X", added.Title)

	status, env = call(t, a, http.MethodGet, "/api/v1/content/certificates", "", nil)
	require.Equal(t, http.StatusOK, status)
	var certs contentData
	require.NoError(t, json.Unmarshal(env.Data, &certs))
	assert.Len(t, certs.Items, 3)
}

func TestApp_DeleteNeedsConfirmation(t *testing.T) {
	a := newTestApp(t)
	token, _ := login(t, a)

	status, _ := call(t, a, http.MethodDelete, "/api/v1/admin/projects/1", token, nil)
	assert.Equal(t, http.StatusPreconditionRequired, status)

	status, _ = call(t, a, http.MethodDelete, "/api/v1/admin/projects/missing?confirm=true", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := call(t, a, http.MethodDelete, "/api/v1/admin/projects/1?confirm=true", token, nil)
	require.Equal(t, http.StatusOK, status)
	var ed editorData
	require.NoError(t, json.Unmarshal(env.Data, &ed))
	assert.Len(t, ed.Items, 5)

	status, env = call(t, a, http.MethodGet, "/api/v1/content/projects", "", nil)
	require.Equal(t, http.StatusOK, status)
	var projects contentData
	require.NoError(t, json.Unmarshal(env.Data, &projects))
	assert.Len(t, projects.Items, 5)
}

func TestApp_EditorTransitionsAndSession(t *testing.T) {
	a := newTestApp(t)
	token, _ := login(t, a)

	status, _ := call(t, a, http.MethodPost, "/api/v1/admin/work-entries/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, a, http.MethodPost, "/api/v1/admin/work-entries/1/edit", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, a, http.MethodPut, "/api/v1/admin/session/tab", token, map[string]string{"tab": "projects"})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, a, http.MethodGet, "/api/v1/admin/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	var sess struct {
		ActiveTab string `json:"active_tab"`
		Editors   map[string]struct {
			Mode      string `json:"mode"`
			EditingID string `json:"editing_id"`
		} `json:"editors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "projects", sess.ActiveTab)
	assert.Equal(t, "editing", sess.Editors["work-entries"].Mode)
	assert.Equal(t, "1", sess.Editors["work-entries"].EditingID)

	status, _ = call(t, a, http.MethodPost, "/api/v1/admin/work-entries/save", token, map[string]string{"position": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = call(t, a, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, a, http.MethodGet, "/api/v1/admin/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "browsing", sess.Editors["work-entries"].Mode)
}

func TestApp_SyncAndMetrics(t *testing.T) {
	a := newTestApp(t)
	token, _ := login(t, a)

	status, env := call(t, a, http.MethodPost, "/api/v1/admin/sync", token, nil)
	require.Equal(t, http.StatusOK, status)
	var report struct {
		Trigger string `json:"trigger"`
		Domains []struct {
			Result string `json:"result"`
		} `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "manual", report.Trigger)
	require.Len(t, report.Domains, 3)
	for _, d := range report.Domains {
		assert.Equal(t, "rebroadcast", d.Result)
	}

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "portfolio_http_requests_total")
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr("8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	addr, err = ListenAddr(":9000")
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)

	_, err = ListenAddr(" ")
	assert.Error(t, err)
}
