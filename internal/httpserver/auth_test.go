package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret1", "tgTag": "@ann",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[transport.UserResponse](t, rec)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ann", "email": "ANN@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]any{"email": "bad", "password": "1"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := []string{}
	for _, e := range decode[errorBody](t, rec).Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fields)

	rec = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Root", "email": "root@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[transport.UserResponse](t, rec).IsAdmin)

	rec = env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[transport.LoginResponse](t, rec)
	assert.Equal(t, user.ID, login.UserID)
	assert.Equal(t, "Ann", login.Name)
	require.NotEmpty(t, login.Token)

	rec = env.doJSON(t, http.MethodGet, "/api/user", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, decode[transport.UserResponse](t, rec).ID)

	rec = env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@example.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decode[errorBody](t, rec).Message)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = env.send(req, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", decode[errorBody](t, rec).Message)
}

func TestUserEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.DB, models.User{Email: "me@example.com"})
	token := env.token(t, me)

	assert.Equal(t, http.StatusUnauthorized, env.doJSON(t, http.MethodGet, "/api/user", nil, "").Code)

	rec := env.doMultipart(t, http.MethodPut, "/api/user",
		map[string]string{"name": "Me Again", "email": "me@example.com", "tgTag": "me"}, "me.png", []byte("png"), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[transport.UserResponse](t, rec)
	assert.Equal(t, "Me Again", updated.Name)
	require.NotNil(t, updated.TgTag)
	assert.Equal(t, "@me", *updated.TgTag)
	require.NotNil(t, updated.Image)
	assert.True(t, strings.HasPrefix(*updated.Image, "/uploads/users/me_"))

	rec = env.doJSON(t, http.MethodPut, "/api/user", map[string]any{"name": "x", "email": "not-an-email"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, env.doJSON(t, http.MethodDelete, "/api/user", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.doJSON(t, http.MethodGet, "/api/user", nil, token).Code)
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := uuid.New()
	env.Searcher.res = search.Result{Total: 1, Items: []search.Document{{ID: id, EnName: "Red cap"}}}

	assert.Equal(t, http.StatusBadRequest, env.doJSON(t, http.MethodGet, "/api/product/search", nil, "").Code)

	rec := env.doJSON(t, http.MethodGet, "/api/product/search?q=cap", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[transport.SearchResponse](t, rec)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, id, res.Items[0].ID)
}

func TestSearchEndpoint_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Searcher.err = search.ErrDisabled
	assert.Equal(t, http.StatusServiceUnavailable, env.doJSON(t, http.MethodGet, "/api/product/search?q=cap", nil, "").Code)

	env.Searcher.err = errors.New("cluster on fire")
	rec := env.doJSON(t, http.MethodGet, "/api/product/search?q=cap", nil, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[errorBody](t, rec).Message)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.doJSON(t, http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.doJSON(t, http.MethodGet, "/health/ready", nil, "").Code)
}
