package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestGetProducts_Pipeline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	testutil.CreateProduct(t, env.DB, models.Product{EnName: "A", Price: testutil.Price("10"), Category: models.CategoryJeans})
	b := testutil.CreateProduct(t, env.DB, models.Product{EnName: "B", Price: testutil.Price("20"), Category: models.CategoryHat})

	rec := env.doJSON(t, http.MethodGet, "/api/product?minPrice=15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[transport.PagedProductsResponse](t, rec)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.EqualValues(t, 1, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, b.ID, page.Data[0].ID)
	assert.Equal(t, models.CategoryHat, page.Data[0].Category)

	rec = env.doJSON(t, http.MethodGet, "/api/product?orderBy=price&sortDirection=Descending&pageSize=1&page=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[transport.PagedProductsResponse](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "A", page.Data[0].EnName)
	assert.EqualValues(t, 2, page.TotalPages)

	rec = env.doJSON(t, http.MethodGet, "/api/product?category=hat", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[transport.PagedProductsResponse](t, rec).Data, 1)

	rec = env.doJSON(t, http.MethodGet, "/api/product?minPrice=cheap&color=ultraviolet", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "validation failed", body.Message)
	assert.Len(t, body.Errors, 2)
}

func TestGetProducts_IsLikedFollowsCaller(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	a := testutil.CreateProduct(t, env.DB, models.Product{EnName: "A", Price: testutil.Price("1")})
	testutil.CreateProduct(t, env.DB, models.Product{EnName: "B", Price: testutil.Price("2")})
	user := testutil.CreateUser(t, env.DB, models.User{Email: "liker@example.com"})
	token := env.token(t, user)

	require.Equal(t, http.StatusNoContent, env.doJSON(t, http.MethodPost, "/api/product/"+a.ID.String()+"/like", nil, token).Code)

	rec := env.doJSON(t, http.MethodGet, "/api/product?isLiked=true", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.PagedProductsResponse](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, a.ID, page.Data[0].ID)
	assert.Equal(t, 1, page.Data[0].Likes)

	rec = env.doJSON(t, http.MethodGet, "/api/product?isLiked=true", nil, "")
	assert.Len(t, decode[transport.PagedProductsResponse](t, rec).Data, 2, "anonymous callers are not filtered")
}

func TestProductAdminCRUD(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.token(t, testutil.CreateUser(t, env.DB, models.User{Email: "admin@example.com", IsAdmin: true}))
	user := env.token(t, testutil.CreateUser(t, env.DB, models.User{Email: "user@example.com"}))

	fields := map[string]string{
		"uaName": "Худі", "enName": "Hoodie", "description": "warm", "price": "49.90",
		"category": "Hoodie", "size": "M", "color": "Black", "count": "3",
	}

	assert.Equal(t, http.StatusUnauthorized, env.doMultipart(t, http.MethodPost, "/api/product", fields, "h.png", []byte("png"), "").Code)
	assert.Equal(t, http.StatusForbidden, env.doMultipart(t, http.MethodPost, "/api/product", fields, "h.png", []byte("png"), user).Code)

	rec := env.doMultipart(t, http.MethodPost, "/api/product", fields, "h.png", []byte("png"), admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transport.ProductResponse](t, rec)
	assert.True(t, strings.HasPrefix(created.Image, "/uploads/products/h_"))
	assert.Equal(t, "49.9", created.Price.String())
	assert.Equal(t, models.SizeM, created.Size)

	rec = env.doMultipart(t, http.MethodPost, "/api/product", fields, "", nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	noImage := map[string]string{}
	for k, v := range fields {
		noImage[k] = v
	}
	noImage["enName"], noImage["uaName"] = "Cap", "Кепка"
	rec = env.doMultipart(t, http.MethodPost, "/api/product", noImage, "", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "image", decode[errorBody](t, rec).Errors[0].Field)

	rec = env.doMultipart(t, http.MethodPost, "/api/product", noImage, "cap.exe", []byte("x"), admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, imageField, decode[errorBody](t, rec).Errors[0].Field)

	path := "/api/product/" + created.ID.String()
	rec = env.doJSON(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hoodie", decode[transport.ProductResponse](t, rec).EnName)

	update := transport.ProductForm{
		UaName: "Худі", EnName: "Hoodie", Price: "55", Category: "3", Size: "L", Color: "Navy", Count: 1,
		Image: "https://cdn.example.com/hoodie.png",
	}
	rec = env.doJSON(t, http.MethodPut, path, update, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[transport.ProductResponse](t, rec)
	assert.Equal(t, "https://cdn.example.com/hoodie.png", updated.Image)
	assert.Equal(t, models.ColorNavy, updated.Color)

	assert.Equal(t, http.StatusBadRequest, env.doJSON(t, http.MethodGet, "/api/product/not-a-uuid", nil, "").Code)
	assert.Equal(t, http.StatusNoContent, env.doJSON(t, http.MethodDelete, path, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, env.doJSON(t, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.doJSON(t, http.MethodDelete, path, nil, admin).Code)
}

func TestDeleteProduct_ReferencedByOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := testutil.CreateProduct(t, env.DB, models.Product{EnName: "Boots", Price: testutil.Price("80")})
	buyer := testutil.CreateUser(t, env.DB, models.User{Email: "buyer@example.com", TgTag: testutil.StrPtr("@buyer")})
	admin := env.token(t, testutil.CreateUser(t, env.DB, models.User{Email: "admin@example.com", IsAdmin: true}))

	rec := env.doJSON(t, http.MethodPost, "/api/order", map[string]any{
		"price":    80,
		"products": []map[string]any{{"productId": p.ID, "quantity": 1}},
	}, env.token(t, buyer))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSON(t, http.MethodDelete, "/api/product/"+p.ID.String(), nil, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Message, "associated with existing orders")
}

func TestLikeEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := testutil.CreateProduct(t, env.DB, models.Product{EnName: "Dress", Price: testutil.Price("40")})
	token := env.token(t, testutil.CreateUser(t, env.DB, models.User{Email: "l@example.com"}))
	path := "/api/product/" + p.ID.String() + "/like"

	assert.Equal(t, http.StatusUnauthorized, env.doJSON(t, http.MethodPost, path, nil, "").Code)
	assert.Equal(t, http.StatusNoContent, env.doJSON(t, http.MethodPost, path, nil, token).Code)
	assert.Equal(t, http.StatusConflict, env.doJSON(t, http.MethodPost, path, nil, token).Code)
	assert.Equal(t, http.StatusNoContent, env.doJSON(t, http.MethodDelete, path, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.doJSON(t, http.MethodDelete, path, nil, token).Code)
}

func TestEnumListings(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodGet, "/api/product/sizes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sizes := decode[[]models.EnumValue](t, rec)
	require.NotEmpty(t, sizes)
	assert.Equal(t, models.EnumValue{Value: 0, Name: "XS"}, sizes[0])

	for _, path := range []string{"/api/product/categories", "/api/product/colors"} {
		assert.Equal(t, http.StatusOK, env.doJSON(t, http.MethodGet, path, nil, "").Code, path)
	}
}
