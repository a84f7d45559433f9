package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/dbtest"
	"bitwise74/roleplay-api/internal/service"
	"bitwise74/roleplay-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	t      *testing.T
	router *gin.Engine
	deps   *internal.Deps
	mailer *service.MemoryMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mailer := &service.MemoryMailer{}
	d := &internal.Deps{
		DB: dbtest.New(t),
		Argon: &security.ArgonHash{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Sessions:      security.NewSessionIssuer("test-secret", 2*time.Hour),
		Mailer:        mailer,
		MailFrom:      "no-reply@roleplay.com",
		ResetTokenTTL: 2 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := NewRouter(ctx, d, &Options{
		CORSOrigins: []string{"http://localhost:5173"},
		BodyLimit:   1 << 20,
	})

	return &env{t: t, router: router, deps: d, mailer: mailer}
}

// do sends body as JSON. A string body is sent as is.
func (e *env) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func idOf(v any) uint {
	return uint(v.(float64))
}

func (e *env) register(username string) uint {
	e.t.Helper()

	w := e.do(http.MethodPost, "/users", gin.H{
		"email":    username + "@example.com",
		"username": username,
		"password": "secret",
	}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	return idOf(decode(e.t, w)["user"].(map[string]any)["id"])
}

func (e *env) login(username, password string) string {
	e.t.Helper()

	w := e.do(http.MethodPost, "/sessions", gin.H{
		"email":    username + "@example.com",
		"password": password,
	}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	return decode(e.t, w)["token"].(map[string]any)["token"].(string)
}

type account struct {
	ID    uint
	Token string
}

func (e *env) account(username string) account {
	e.t.Helper()

	userID := e.register(username)
	return account{ID: userID, Token: e.login(username, "secret")}
}

func (e *env) createTable(a account, name, description string) uint {
	e.t.Helper()

	w := e.do(http.MethodPost, "/tables", gin.H{
		"name":        name,
		"description": description,
		"schedule":    "Fridays 20h",
		"location":    "Discord",
		"chronic":     "Chronicle",
		"master":      a.ID,
	}, a.Token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	return idOf(decode(e.t, w)["table"].(map[string]any)["id"])
}

func (e *env) requestJoin(a account, tableID uint) uint {
	e.t.Helper()

	w := e.do(http.MethodPost, fmt.Sprintf("/tables/%d/requests", tableID), nil, a.Token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	return idOf(decode(e.t, w)["tableRequest"].(map[string]any)["id"])
}

func playerIDs(table map[string]any) []uint {
	players := table["players"].([]any)

	ids := make([]uint, len(players))
	for i, p := range players {
		ids[i] = idOf(p.(map[string]any)["id"])
	}

	return ids
}
