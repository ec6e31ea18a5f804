package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcampus/portal/internal/cache"
	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/config"
	"smartcampus/portal/internal/repository"
	"smartcampus/portal/internal/service"
)

// campus is a scripted stand-in for the remote campus API.
type campus struct {
	role     string
	events   string
	loginHit int
	lastPut  map[string]any
}

func (f *campus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := func(status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	user := `{"id":4,"firstname":"Ada","lastname":"Lovelace","email":"ada@estiam.com","role":"` + f.role + `"}`

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		f.loginHit++
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			reply(http.StatusOK, `{"success":false,"error":"bad credentials"}`)
			return
		}
		reply(http.StatusOK, `{"success":true,"user":`+user+`,"carte":{"id":9,"num_carte":"ESTIAM-0042","token":"tok","etat":true}}`)
	case "POST /api/auth/login-nfc":
		reply(http.StatusOK, `{"success":true,"user":`+user+`,"carte":null}`)
	case "POST /api/auth/register":
		reply(http.StatusOK, `{"success":true,"message":"Compte créé"}`)
	case "GET /api/upcoming-events":
		if f.events == "" {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		reply(http.StatusOK, f.events)
	case "GET /api/users/4":
		reply(http.StatusOK, `{"success":true,"user":`+user+`}`)
	case "PUT /api/users/4":
		f.lastPut = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&f.lastPut)
		reply(http.StatusOK, `{"success":true,"user":`+user+`}`)
	case "GET /api/classes":
		reply(http.StatusOK, `{"success":true,"classes":[{"id":1,"nom":"B3 DEV","niveau":"Bachelor 3"},{"id":2,"nom":"M1 CYBER","niveau":"Master 1"}]}`)
	case "GET /api/filieres":
		reply(http.StatusOK, `{"success":true,"filieres":[{"id":1,"nom":"Cybersécurité"}]}`)
	case "GET /api/matieres":
		reply(http.StatusOK, `{"success":true,"matieres":[{"id":1,"nom":"Go","code":"GO101"}]}`)
	default:
		reply(http.StatusNotFound, `{"success":false,"error":"not found"}`)
	}
}

type avatarSink struct {
	key string
}

func (s *avatarSink) PutAvatar(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.key = key
	return "https://s3.campus.test/avatars/" + key, nil
}

type testEnv struct {
	engine   *gin.Engine
	campus   *campus
	redis    *miniredis.Miniredis
	avatars  *avatarSink
	sessions *service.SessionService
}

func newTestEnv(t *testing.T, role string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := &campus{role: role}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.AppConfig{
		Environment: "test",
		Upstream:    config.UpstreamConfig{BaseURL: srv.URL + "/api"},
		Storage:     config.StorageConfig{MaxAvatarSize: 1 << 10},
		Security: config.SecurityConfig{
			JWTAccessSecret: "0123456789abcdef0123456789abcdef",
			JWTAccessTTL:    time.Minute,
			RefreshTTL:      time.Hour,
			MaxSessions:     5,
			LoginAttempts:   3,
			LoginWindow:     time.Minute,
			AdminRoles:      []string{"admin", "ROLE_ADMIN"},
		},
	}
	log := zerolog.Nop()
	client := campusapi.New(cfg.Upstream, log)
	sessions := service.NewSessionService(repository.NewMemorySessionStore(), cfg.Security, log)
	avatars := &avatarSink{}

	set := NewHandlerSet(Deps{
		Log:       log,
		Config:    cfg,
		Auth:      service.NewAuthService(client, nil, service.NewProjector(time.UTC), service.FallbackSampleEvents, log),
		Sessions:  sessions,
		Profiles:  service.NewProfileService(client, avatars, cfg.Storage.MaxAvatarSize, log),
		Reference: service.NewReferenceService(client),
		Throttle:  cache.NewLoginThrottle(rdb, cfg.Security.LoginAttempts, cfg.Security.LoginWindow),
		Database:  func(context.Context) error { return nil },
		Cache:     func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	engine := gin.New()
	set.Routes(engine.Group("/api"))

	return &testEnv{engine: engine, campus: upstream, redis: mr, avatars: avatars, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, deviceID string) loginResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "ada@estiam.com", "password": "secret", "deviceId": deviceID,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "etudiant")

	resp := env.login(t, "phone")

	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.User.ID)
	require.NotNil(t, resp.Card)
	assert.Equal(t, "ESTIAM-0042", resp.Card.NumCarte)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "phone", resp.DeviceID)
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t, "etudiant")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Veuillez remplir tous les champs"}, decode(t, rec))
	assert.Zero(t, env.campus.loginHit)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "ada@estiam.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "bad credentials", decode(t, rec)["error"])
}

func TestLogin_Throttled(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	body := gin.H{"email": "ada@estiam.com", "password": "wrong"}

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", body, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 3, env.campus.loginHit, "throttled attempt never reaches the campus api")
}

func TestLoginNFC(t *testing.T) {
	env := newTestEnv(t, "etudiant")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login-nfc", gin.H{"token": ""}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login-nfc", gin.H{"token": "04A1"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "card")
}

func TestMeAndSessions(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	phone := env.login(t, "phone")
	env.login(t, "laptop")

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, phone.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var me meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "AL", me.Initials)
	require.NotNil(t, me.Card)
	assert.Equal(t, "•••• 0042", me.Card.NumCarte)

	rec = env.do(t, http.MethodGet, "/api/v1/sessions", nil, phone.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Sessions []sessionResponse `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Sessions, 2)

	rec = env.do(t, http.MethodDelete, "/api/v1/sessions/phone", nil, phone.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/sessions/laptop", nil, phone.AccessToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	env := newTestEnv(t, "etudiant")

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	first := env.login(t, "phone")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{
		"userId": 4, "deviceId": "phone", "refreshToken": first.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{
		"userId": 4, "deviceId": "phone", "refreshToken": first.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, first.AccessToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", nil, first.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutNeedsTheSessionToken(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	victim := env.login(t, "phone")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", gin.H{"userId": 4, "deviceId": "phone"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := env.login(t, "laptop")
	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, other.AccessToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", nil, victim.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code, "logging out one device leaves the others signed in")
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	today := time.Now().UTC().Format("2006-01-02")
	env.campus.events = `{"success":true,"evenements":[{"id":7,"nom":"Forum","lieu":"Hall","date_debut":"` + today + `T00:00:00Z","date_fin":"` + today + `T00:01:00Z"}]}`
	token := env.login(t, "phone").AccessToken

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.SourceLive, resp.Source)
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, "EVENT7", resp.Courses[0].CodeMatiere)
	assert.Equal(t, "active", string(resp.Courses[0].Status))
	assert.Equal(t, "En cours", resp.Courses[0].StatusText)
	assert.Equal(t, service.CourseStats{Active: 1, Total: 1}, resp.Stats)
}

func TestDashboard_SampleFallback(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	token := env.login(t, "phone").AccessToken

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.SourceSample, resp.Source)
	assert.Len(t, resp.Courses, 2)
	assert.Equal(t, 2, resp.Stats.Upcoming)
	assert.Empty(t, resp.Error)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	token := env.login(t, "phone").AccessToken

	rec := env.do(t, http.MethodGet, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/profile", gin.H{"telephone": "0600000000"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"telephone": "0600000000"}, env.campus.lastPut)

	rec = env.do(t, http.MethodPut, "/api/v1/profile", gin.H{"email": "nope"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func avatarRequest(t *testing.T, token, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	token := env.login(t, "phone").AccessToken

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, avatarRequest(t, token, "me.png", png))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(env.avatars.key, "users/4/"))
	assert.Equal(t, "https://s3.campus.test/avatars/"+env.avatars.key, env.campus.lastPut["avatar"])

	rec = httptest.NewRecorder()
	env.engine.ServeHTTP(rec, avatarRequest(t, token, "evil.png", []byte("#!/bin/sh")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	student := newTestEnv(t, "etudiant")
	token := student.login(t, "phone").AccessToken
	rec := student.do(t, http.MethodGet, "/api/v1/admin/classes", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := newTestEnv(t, "ROLE_ADMIN")
	token = admin.login(t, "desk").AccessToken

	rec = admin.do(t, http.MethodGet, "/api/v1/admin/classes?search=bachelor", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, float64(1), out["total"])

	rec = admin.do(t, http.MethodGet, "/api/v1/admin/filieres", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = admin.do(t, http.MethodGet, "/api/v1/admin/matieres?search=go", nil, token)
	assert.Equal(t, float64(1), decode(t, rec)["total"])
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, "etudiant")
	form := gin.H{
		"firstname": "Ada", "lastname": "Lovelace", "email": "ada@estiam.com",
		"password": "s3cret!", "passwordConfirmation": "s3cret!", "classe_id": 1, "filiere_id": 2,
	}

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", form, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	form["passwordConfirmation"] = "other"
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", form, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "etudiant")

	rec := env.do(t, http.MethodGet, "/api/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["cache"])

	env.redis.SetError("LOADING")
	rec = env.do(t, http.MethodGet, "/api/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["cache"])
}
