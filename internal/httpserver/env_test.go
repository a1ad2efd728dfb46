package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type fakeSearcher struct {
	res search.Result
	err error
}

func (f *fakeSearcher) Search(context.Context, string, int, int) (search.Result, error) {
	return f.res, f.err
}

type testEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Tokens   *tokens.Issuer
	Orders   *service.OrderService
	Searcher *fakeSearcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	images, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	issuer := tokens.NewIssuer("test-secret", "storefront", "storefront-clients", time.Hour)
	orders := &service.OrderService{Repo: r}
	searcher := &fakeSearcher{}

	e := echo.New()
	Register(e, &Deps{
		DB:             db,
		AuthHandler:    &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: issuer, AdminEmails: []string{"root@example.com"}}},
		UserHandler:    &UserHTTP{Svc: &service.UserService{Repo: r, Images: images}},
		CatalogHandler: &CatalogHTTP{Svc: &service.ProductService{Repo: r, Images: images}},
		LikeHandler:    &LikeHTTP{Svc: &service.LikeService{Repo: r}},
		OrderHandler:   &OrderHTTP{Svc: orders},
		SearchHandler:  &SearchHTTP{Search: searcher},
		Tokens:         issuer,
	})
	t.Cleanup(orders.Wait)

	return &testEnv{E: e, DB: db, Tokens: issuer, Orders: orders, Searcher: searcher}
}

func (env *testEnv) token(t *testing.T, u models.User) string {
	t.Helper()
	raw, _, err := env.Tokens.Issue(&u)
	require.NoError(t, err)
	return raw
}

func (env *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return env.send(req, token)
}

func (env *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, fileName string, file []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile(imageField, fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return env.send(req, token)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}
