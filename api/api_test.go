package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/wholspace-backend/auth"
	"github.com/rpupo63/wholspace-backend/database/memstore"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
	"github.com/rpupo63/wholspace-backend/storage"
)

const testSigningKey = "test-signing-key"

type testServer struct {
	handler  http.Handler
	verifier *auth.Verifier
	blob     *storage.Memory
}

type projectView struct {
	models.Project
	LikedByMe bool `json:"likedByMe"`
}

func newTestServer(t *testing.T, c map[string]string) *testServer {
	t.Helper()

	blob := storage.NewMemory("https://cdn.test")
	service := services.New(memstore.New(), blob)
	verifier := auth.NewVerifier(testSigningKey, "")
	if c == nil {
		c = map[string]string{}
	}

	return &testServer{
		handler:  newRouter(service, withConfig(c), withVerifier(verifier), withStartupTime(time.Now())),
		verifier: verifier,
		blob:     blob,
	}
}

func (s *testServer) token(t *testing.T, uid string) string {
	t.Helper()
	token, err := s.verifier.Issue(auth.Identity{
		UID:            uid,
		Email:          uid + "@example.com",
		EmailVerified:  true,
		DisplayName:    uid,
		SignInProvider: "google.com",
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// signIn establishes a session for uid and returns its token
func (s *testServer) signIn(t *testing.T, uid string) string {
	t.Helper()
	token := s.token(t, uid)
	rec := s.do(t, http.MethodPost, "/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestAuthentication(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing token", header: "", status: http.StatusUnauthorized},
		{name: "not a bearer token", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + srv.token(t, "alice"), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// public routes accept anonymous callers but still reject bad tokens
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/stats", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/stats", "bogus", nil).Code)
}

func TestSessionRejectsUnverifiedPasswordAccount(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	token, err := srv.verifier.Issue(auth.Identity{
		UID:            "pw",
		Email:          "pw@example.com",
		SignInProvider: auth.PasswordProvider,
	}, time.Hour)
	require.NoError(t, err)

	rec := srv.do(t, http.MethodPost, "/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", decode[ErrorResponse](t, rec).Status)
}

func TestFollowFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	alice := srv.signIn(t, "alice")
	srv.signIn(t, "bob")

	for range 2 {
		rec := srv.do(t, http.MethodPost, "/users/bob/follow", alice, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, decode[FollowStatusResponse](t, rec).Following)
	}

	bob := decode[models.User](t, srv.do(t, http.MethodGet, "/users/bob", "", nil))
	assert.Equal(t, int64(1), bob.FollowerCount)

	status := decode[FollowStatusResponse](t, srv.do(t, http.MethodGet, "/users/bob/following-status", alice, nil))
	assert.True(t, status.Following)

	followers := decode[[]models.User](t, srv.do(t, http.MethodGet, "/users/bob/followers", "", nil))
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].UID)

	rec := srv.do(t, http.MethodPost, "/users/alice/follow", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/users/bob/follow", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bob = decode[models.User](t, srv.do(t, http.MethodGet, "/users/bob", "", nil))
	assert.Zero(t, bob.FollowerCount)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/users/ghost", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/users/bob/followers?limit=-1", "", nil).Code)
}

func TestProjectFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	owner := srv.signIn(t, "owner")
	fan := srv.signIn(t, "fan")

	rec := srv.do(t, http.MethodPost, "/projects", owner, models.ProjectInput{Title: "Todo", Tool: "Bolt"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[projectView](t, rec)
	assert.Equal(t, models.DefaultCategory, created.Category)
	projectPath := "/projects/" + created.ID

	rec = srv.do(t, http.MethodPost, projectPath+"/like", fan, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	viewed := decode[projectView](t, srv.do(t, http.MethodGet, projectPath, fan, nil))
	assert.True(t, viewed.LikedByMe)
	assert.Equal(t, int64(1), viewed.Likes)
	assert.Equal(t, int64(1), viewed.Views)

	anonymous := decode[projectView](t, srv.do(t, http.MethodGet, projectPath, "", nil))
	assert.False(t, anonymous.LikedByMe)

	rec = srv.do(t, http.MethodPatch, projectPath, fan, map[string]any{"title": "stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPatch, projectPath, owner, []byte(`{"title":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPatch, projectPath, owner, map[string]any{"title": "Todo v2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Todo v2", decode[projectView](t, rec).Title)

	page := decode[services.ProjectPage](t, srv.do(t, http.MethodGet, "/projects?limit=5", "", nil))
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/projects?cursor=%25%25", "", nil).Code)

	ownerUser := decode[models.User](t, srv.do(t, http.MethodGet, "/users/owner", "", nil))
	assert.Equal(t, int64(1), ownerUser.ProjectCount)
	assert.Equal(t, int64(1), ownerUser.TotalLikes)

	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodDelete, projectPath, fan, nil).Code)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, projectPath, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, projectPath, "", nil).Code)

	ownerUser = decode[models.User](t, srv.do(t, http.MethodGet, "/users/owner", "", nil))
	assert.Zero(t, ownerUser.ProjectCount)
	assert.Zero(t, ownerUser.TotalLikes)
}

func TestLikeWithoutSessionIsNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	owner := srv.signIn(t, "owner")
	created := decode[projectView](t, srv.do(t, http.MethodPost, "/projects", owner, models.ProjectInput{Title: "Todo"}))

	rec := srv.do(t, http.MethodPost, "/projects/"+created.ID+"/like", srv.token(t, "no-session"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	project := decode[projectView](t, srv.do(t, http.MethodGet, "/projects/"+created.ID, "", nil))
	assert.Zero(t, project.Likes)
	assert.Empty(t, project.LikedBy)
	ownerUser := decode[models.User](t, srv.do(t, http.MethodGet, "/users/owner", "", nil))
	assert.Zero(t, ownerUser.TotalLikes)
}

func TestUploadImage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	owner := srv.signIn(t, "owner")
	created := decode[projectView](t, srv.do(t, http.MethodPost, "/projects", owner, models.ProjectInput{Title: "Gallery"}))

	upload := func(path, contentType string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+owner)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("/projects/"+created.ID+"/images/0?filename=cover.webp", "image/webp", []byte("webp"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	thumb := models.ProjectImageKey("owner", created.ID, 0, "webp")
	assert.Equal(t, "https://cdn.test/"+thumb, decode[projectView](t, rec).ThumbnailURL)
	_, ok := srv.blob.Get(thumb)
	assert.True(t, ok)

	assert.Equal(t, http.StatusUnsupportedMediaType, upload("/projects/"+created.ID+"/images/1", "text/plain", []byte("x")).Code)
	assert.Equal(t, http.StatusBadRequest, upload("/projects/"+created.ID+"/images/first", "image/png", []byte("x")).Code)

	rec = upload("/me/avatar?filename=me.png", "image/png", []byte("png"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://cdn.test/"+models.AvatarKey("owner", "png"), decode[models.User](t, rec).PhotoURL)
}

func TestProfileRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	alice := srv.signIn(t, "alice")
	bob := srv.signIn(t, "bob")

	rec := srv.do(t, http.MethodPost, "/me/profile/complete", alice, map[string]any{"displayName": "Alice", "handle": "@Alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[models.User](t, rec)
	assert.Equal(t, "alice", profile.Handle)
	assert.True(t, profile.IsProfileComplete)

	rec = srv.do(t, http.MethodPatch, "/me/profile", bob, map[string]any{"handle": "alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "handle", decode[ErrorResponse](t, rec).Field)

	availability := decode[HandleAvailabilityResponse](t, srv.do(t, http.MethodGet, "/handles/ALICE/available", "", nil))
	assert.Equal(t, "alice", availability.Handle)
	assert.False(t, availability.Available)

	byHandle := decode[models.User](t, srv.do(t, http.MethodGet, "/users/handle/alice", "", nil))
	assert.Equal(t, "alice", byHandle.UID)

	featured := decode[[]models.User](t, srv.do(t, http.MethodGet, "/users/featured", "", nil))
	require.Len(t, featured, 1)
	assert.Equal(t, "alice", featured[0].UID)

	found := decode[[]models.User](t, srv.do(t, http.MethodGet, "/users/search?q=ali", "", nil))
	require.Len(t, found, 1)

	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodPost, "/users/alice/reconcile", bob, nil).Code)
	rec = srv.do(t, http.MethodPost, "/users/alice/reconcile", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.CounterReconciliation](t, rec).Drifted())

	counts := decode[models.ProjectCounts](t, srv.do(t, http.MethodGet, "/users/alice/counts", "", nil))
	assert.Zero(t, counts.All)

	catalog := decode[CatalogResponse](t, srv.do(t, http.MethodGet, "/catalog", "", nil))
	assert.Equal(t, models.Tools, catalog.Tools)
	assert.Equal(t, models.Categories, catalog.Categories)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{"ACCEPTED_ORIGINS": "https://wholspace.test"})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		return rec
	}

	allowed := preflight("https://wholspace.test")
	assert.Equal(t, "https://wholspace.test", allowed.Header().Get("Access-Control-Allow-Origin"))

	blocked := preflight("https://evil.test")
	assert.Equal(t, http.StatusForbidden, blocked.Code)
	assert.Empty(t, blocked.Header().Get("Access-Control-Allow-Origin"))
}
