package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/monitoring"
	"github.com/vedran77/linkup/internal/repository/repotest"
	"github.com/vedran77/linkup/internal/service"
)

const testPassword = "Secret#123"

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	store   *repotest.Store
	handler http.Handler
	metrics *monitoring.Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repotest.NewStore()
	metrics := monitoring.New()

	svc := Services{
		Auth:        service.NewAuthService(store, "test-secret", time.Hour),
		Profiles:    service.NewProfileService(store),
		Hashtags:    service.NewHashtagService(store.Hashtags()),
		Discovery:   service.NewDiscoveryService(store),
		Connections: service.NewConnectionService(store, metrics),
		Users:       service.NewUserService(store.Users()),
	}
	h := NewRouter(svc, RouterOptions{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSOrigin: "*",
		Metrics:    metrics,
	})
	return &testAPI{t: t, store: store, handler: h, metrics: metrics}
}

func (a *testAPI) do(method, path, token string, body any) (int, apiResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (a *testAPI) register(email, first, last string) (string, int64) {
	a.t.Helper()
	code, resp := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": testPassword, "firstName": first, "lastName": last,
	})
	require.Equal(a.t, http.StatusCreated, code, resp.Message)

	var auth service.AuthResponse
	require.NoError(a.t, json.Unmarshal(resp.Data, &auth))
	require.NotEmpty(a.t, auth.Token)
	return auth.Token, auth.User.ID
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	token, id := api.register("Ada@Example.com", "Ada", "Lovelace")

	code, resp := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "password": testPassword, "firstName": "Ada", "lastName": "Again",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "EMAIL_TAKEN", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "nope", "password": "short", "firstName": "A", "lastName": "Lovelace",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "email")
	assert.Contains(t, resp.Error.Fields, "password")
	assert.Contains(t, resp.Error.Fields, "firstName")

	code, resp = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Wrong#1234",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", resp.Message)

	code, resp = api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[struct {
		User service.Account `json:"user"`
	}](t, resp.Data)
	assert.Equal(t, id, me.User.ID)
	assert.Equal(t, "ada@example.com", me.User.Email)

	code, _ = api.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = api.do(http.MethodPost, "/api/users/deactivate", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Account deactivated successfully", resp.Message)

	code, resp = api.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Account deactivated", resp.Error.Message)

	code, resp = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", resp.Error.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/profiles/me"},
		{http.MethodPut, "/api/profiles"},
		{http.MethodPost, "/api/connections"},
		{http.MethodGet, "/api/connections"},
		{http.MethodGet, "/api/users/stats"},
	} {
		code, resp := api.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, route.path)
		assert.False(t, resp.Success)
	}

	code, resp := api.do(http.MethodGet, "/api/profiles/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", resp.Error.Message)
}

func TestConnectionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ada, adaID := api.register("ada@example.com", "Ada", "Lovelace")
	bob, bobID := api.register("bob@example.com", "Bob", "Builder")

	code, resp := api.do(http.MethodPost, "/api/connections", ada, map[string]any{"addresseeId": adaID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SELF_CONNECTION", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/api/connections", ada, map[string]any{"addresseeId": 9999})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/api/connections", ada, map[string]any{"addresseeId": bobID, "message": "hi"})
	require.Equal(t, http.StatusCreated, code)
	created := decode[struct {
		ConnectionID int64 `json:"connectionId"`
	}](t, resp.Data)
	require.NotZero(t, created.ConnectionID)

	// The pair is unordered.
	code, resp = api.do(http.MethodPost, "/api/connections", bob, map[string]any{"addresseeId": adaID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "REQUEST_EXISTS", resp.Error.Code)
	assert.Equal(t, 1, api.store.PairCount(adaID, bobID))

	respondPath := fmt.Sprintf("/api/connections/%d", created.ConnectionID)

	code, resp = api.do(http.MethodPut, respondPath, ada, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusNotFound, code, "requester cannot respond")

	code, resp = api.do(http.MethodPut, respondPath, bob, map[string]string{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, resp = api.do(http.MethodPut, "/api/connections/abc", bob, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)

	code, resp = api.do(http.MethodPut, respondPath, bob, map[string]string{"action": "decline"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Connection request declined successfully", resp.Message)
	assert.JSONEq(t, `{"status":"blocked"}`, string(resp.Data))

	code, resp = api.do(http.MethodPut, respondPath, bob, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_PROCESSED", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/api/connections", ada, map[string]any{"addresseeId": bobID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONNECTION_BLOCKED", resp.Error.Code)

	code, resp = api.do(http.MethodGet, "/api/connections?status=blocked", ada, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Connections []domain.ConnectionView `json:"connections"`
		Status      domain.ConnectionStatus `json:"status"`
	}](t, resp.Data)
	require.Len(t, list.Connections, 1)
	assert.True(t, list.Connections[0].IsRequester)
	assert.Equal(t, bobID, list.Connections[0].ConnectedUser.ID)
	assert.Equal(t, domain.ConnectionBlocked, list.Status)

	code, resp = api.do(http.MethodGet, "/api/connections", ada, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"connections":[],"status":"accepted"}`, string(resp.Data))

	code, resp = api.do(http.MethodGet, "/api/connections?status=friends", ada, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATUS", resp.Error.Code)
}

func TestProfileUpdateAndVisibility(t *testing.T) {
	api := newTestAPI(t)
	ada, adaID := api.register("ada@example.com", "Ada", "Lovelace")
	bob, bobID := api.register("bob@example.com", "Bob", "Builder")
	goTag := api.store.AddHashtag("golang", "Go", "technology", true)
	pgTag := api.store.AddHashtag("postgres", "PostgreSQL", "technology", true)
	uxTag := api.store.AddHashtag("design", "Design", "design", true)

	code, resp := api.do(http.MethodPut, "/api/profiles", ada, map[string]any{
		"hashtags": []int64{goTag, pgTag, uxTag},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "HASHTAG_LIMIT", resp.Error.Code)
	assert.Equal(t, "Free users can select maximum 2 hashtags", resp.Error.Message)

	code, resp = api.do(http.MethodPut, "/api/profiles", ada, map[string]any{
		"bio":       "Analytical engines",
		"website":   "not a url",
		"hashtags":  []int64{goTag},
		"isVisible": false,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Fields, "website")

	code, resp = api.do(http.MethodPut, "/api/profiles", ada, map[string]any{
		"bio":       "Analytical engines",
		"hashtags":  []int64{goTag, pgTag},
		"isVisible": false,
	})
	require.Equal(t, http.StatusOK, code)
	updated := decode[struct {
		Profile domain.Profile `json:"profile"`
	}](t, resp.Data)
	assert.Len(t, updated.Profile.Hashtags, 2)
	assert.False(t, updated.Profile.IsVisible)
	assert.ElementsMatch(t, []int64{goTag, pgTag}, api.store.UserTags(adaID))

	path := fmt.Sprintf("/api/discovery/profile/%d", adaID)

	code, resp = api.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PROFILE_PRIVATE", resp.Error.Code)

	code, _ = api.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = api.do(http.MethodGet, path, ada, nil)
	require.Equal(t, http.StatusOK, code)
	own := decode[map[string]json.RawMessage](t, resp.Data)
	assert.JSONEq(t, "true", string(own["isOwnProfile"]))
	profile := decode[map[string]any](t, own["profile"])
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotContains(t, profile, "isOwnProfile")

	code, resp = api.do(http.MethodGet, fmt.Sprintf("/api/discovery/profile/%d", bobID), ada, nil)
	require.Equal(t, http.StatusOK, code)
	other := decode[map[string]json.RawMessage](t, resp.Data)
	assert.JSONEq(t, "false", string(other["isOwnProfile"]))
	assert.NotContains(t, decode[map[string]any](t, other["profile"]), "email")

	code, resp = api.do(http.MethodGet, "/api/discovery/profile/zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = api.do(http.MethodGet, "/api/users/stats", ada, nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[domain.UserStats](t, resp.Data)
	assert.Equal(t, 2, stats.TotalHashtags)

	code, resp = api.do(http.MethodDelete, "/api/profiles/picture", ada, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile picture removed successfully", resp.Message)
}

func TestDiscoverEndpoint(t *testing.T) {
	api := newTestAPI(t)
	ada, adaID := api.register("ada@example.com", "Ada", "Lovelace")

	fake := api.store.DiscoveryFake
	for i := 1; i <= 3; i++ {
		fake.Cards = append(fake.Cards, domain.ProfileCard{UserID: int64(100 + i), FirstName: "User", LastName: fmt.Sprint(i)})
	}
	fake.Total = 3

	code, resp := api.do(http.MethodGet, "/api/discovery?limit=2&sortBy=alphabetical", "", nil)
	require.Equal(t, http.StatusOK, code)
	result := decode[service.DiscoveryResult](t, resp.Data)
	assert.Len(t, result.Profiles, 2)
	assert.Equal(t, service.Pagination{CurrentPage: 1, Limit: 2, Total: 3, TotalPages: 2, HasMore: true}, result.Pagination)
	assert.Equal(t, "alphabetical", string(result.Filters.SortBy))
	assert.NotContains(t, fake.LastPred.Args, any(adaID))

	code, _ = api.do(http.MethodGet, "/api/discovery", ada, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, fake.LastPred.Args, any(adaID))

	// A bad token on an optional route is treated as anonymous.
	code, _ = api.do(http.MethodGet, "/api/discovery", "garbage", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestHashtagEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.store.AddHashtag("golang", "Go", "technology", true)
	api.store.AddHashtag("gardening", "Gardening", "lifestyle", true)

	code, resp := api.do(http.MethodGet, "/api/hashtags", "", nil)
	require.Equal(t, http.StatusOK, code)
	catalog := decode[service.HashtagCatalog](t, resp.Data)
	assert.Len(t, catalog.Hashtags, 2)
	assert.Len(t, catalog.Categories, 2)

	code, resp = api.do(http.MethodGet, "/api/hashtags/category/technology", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"golang"`)
	assert.NotContains(t, string(resp.Data), `"gardening"`)

	code, resp = api.do(http.MethodGet, "/api/hashtags/search?q=g", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "SEARCH_TOO_SHORT", resp.Error.Code)

	code, resp = api.do(http.MethodGet, "/api/hashtags/search?q=go", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"golang"`)

	code, _ = api.do(http.MethodGet, "/api/hashtags/popular?limit=5", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodGet, "/api/hashtags/stats", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownRouteAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="GET /health"`)
}
