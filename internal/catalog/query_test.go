package catalog

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func names(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.EnName
	}
	return out
}

func seedCatalog(t *testing.T, db *gorm.DB) (a, b models.Product) {
	t.Helper()

	a = testutil.CreateProduct(t, db, models.Product{
		UaName: "Джинси", EnName: "A", Description: "Blue denim", Price: testutil.Price("10"),
		Count: 5, Likes: 3, Category: models.CategoryJeans, Size: models.SizeM, Color: models.ColorBlue,
	})
	b = testutil.CreateProduct(t, db, models.Product{
		UaName: "Кепка", EnName: "B", Description: "Red cap 100% cotton", Price: testutil.Price("20"),
		Count: 0, Likes: 7, Category: models.CategoryHat, Size: models.SizeOneSize, Color: models.ColorRed,
	})
	return a, b
}

func TestQuery_MinPriceScenario(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	_, b := seedCatalog(t, db)

	res, err := Query(context.Background(), db, Spec{Filter: Filter{MinPrice: ptr(testutil.Price("15"))}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.TotalCount)
	require.Len(t, res.Data, 1)
	assert.Equal(t, b.ID, res.Data[0].ID)
	assert.True(t, b.Price.Equal(res.Data[0].Price))
}

func TestQuery_Predicates(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	seedCatalog(t, db)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"A", "B"}},
		{name: "description case-insensitive", filter: Filter{Description: "DENIM"}, want: []string{"A"}},
		{name: "en name substring", filter: Filter{EnName: "b"}, want: []string{"B"}},
		{name: "percent is literal", filter: Filter{Description: "100%"}, want: []string{"B"}},
		{name: "percent alone matches nothing", filter: Filter{Description: "%%"}, want: []string{}},
		{name: "underscore is literal", filter: Filter{EnName: "_"}, want: []string{}},
		{name: "max price inclusive", filter: Filter{MaxPrice: ptr(testutil.Price("10"))}, want: []string{"A"}},
		{name: "price range", filter: Filter{MinPrice: ptr(testutil.Price("10")), MaxPrice: ptr(testutil.Price("20"))}, want: []string{"A", "B"}},
		{name: "category", filter: Filter{Category: ptr(models.CategoryHat)}, want: []string{"B"}},
		{name: "min stock", filter: Filter{Count: ptr(1)}, want: []string{"A"}},
		{name: "likes range", filter: Filter{MinLikes: ptr(3), MaxLikes: ptr(6)}, want: []string{"A"}},
		{name: "size", filter: Filter{Size: ptr(models.SizeOneSize)}, want: []string{"B"}},
		{name: "color", filter: Filter{Color: ptr(models.ColorBlue)}, want: []string{"A"}},
		{name: "and semantics", filter: Filter{Color: ptr(models.ColorBlue), Category: ptr(models.CategoryHat)}, want: []string{}},
		{name: "is liked without caller is ignored", filter: Filter{IsLiked: ptr(true)}, want: []string{"A", "B"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := Query(context.Background(), db, Spec{Filter: tt.filter, Sort: ParseSort("enname", "")})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res.Data))
			assert.EqualValues(t, len(tt.want), res.TotalCount)
		})
	}
}

func TestQuery_IsLiked(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	a, _ := seedCatalog(t, db)
	user := testutil.CreateUser(t, db, models.User{Email: "liker@example.com"})
	require.NoError(t, db.Create(&models.UserProductLike{UserID: user.ID, ProductID: a.ID}).Error)

	ctx := context.Background()
	sort := ParseSort("enname", "asc")

	liked, err := Query(ctx, db, Spec{Filter: Filter{IsLiked: ptr(true)}, Sort: sort, CallerID: &user.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(liked.Data))

	notLiked, err := Query(ctx, db, Spec{Filter: Filter{IsLiked: ptr(false)}, Sort: sort, CallerID: &user.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(notLiked.Data))

	stranger := uuid.New()
	none, err := Query(ctx, db, Spec{Filter: Filter{IsLiked: ptr(true)}, Sort: sort, CallerID: &stranger})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
	assert.EqualValues(t, 0, none.TotalCount)
}

func TestQuery_Sort(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	tests := []struct {
		orderBy, dir string
		want         []string
	}{
		{orderBy: "price", dir: "Descending", want: []string{"B", "A"}},
		{orderBy: "popularity", dir: "asc", want: []string{"A", "B"}},
		{orderBy: "stock", dir: "Ascending", want: []string{"B", "A"}},
		{orderBy: "category", dir: "desc", want: []string{"B", "A"}},
		{orderBy: "name", dir: "", want: []string{"A", "B"}},
		// ua_name: "Джинси" < "Кепка"
		{orderBy: "bogus", dir: "", want: []string{"A", "B"}},
		{orderBy: "", dir: "Descending", want: []string{"B", "A"}},
	}

	for _, tt := range tests {
		res, err := Query(ctx, db, Spec{Sort: ParseSort(tt.orderBy, tt.dir)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, names(res.Data), "orderBy=%q dir=%q", tt.orderBy, tt.dir)
	}
}

func TestQuery_PagesReconstructFilteredSet(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	for i := 0; i < 23; i++ {
		testutil.CreateProduct(t, db, models.Product{
			EnName: fmt.Sprintf("p%02d", i),
			UaName: "same",
			Price:  decimal.NewFromInt(int64(i % 4)),
			Count:  i % 3,
		})
	}

	ctx := context.Background()
	filter := Filter{Count: ptr(1)}
	// Sorting on a heavily tied column still yields disjoint pages.
	sort := ParseSort("price", "desc")

	first, err := Query(ctx, db, Spec{Filter: filter, Sort: sort, Page: PageParams{Page: 1, PageSize: 4}})
	require.NoError(t, err)
	total := first.TotalCount
	require.EqualValues(t, 15, total)

	seen := map[uuid.UUID]int{}
	for page := 1; int64(page) <= first.TotalPages(); page++ {
		res, err := Query(ctx, db, Spec{Filter: filter, Sort: sort, Page: PageParams{Page: page, PageSize: 4}})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Data), 4)
		assert.Equal(t, total, res.TotalCount)
		for _, p := range res.Data {
			assert.GreaterOrEqual(t, p.Count, 1)
			seen[p.ID]++
		}
	}
	assert.Len(t, seen, int(total))
	for id, n := range seen {
		assert.Equal(t, 1, n, "product %s seen %d times", id, n)
	}

	again, err := Query(ctx, db, Spec{Filter: filter, Sort: sort, Page: PageParams{Page: 1, PageSize: 4}})
	require.NoError(t, err)
	assert.Equal(t, names(first.Data), names(again.Data))

	beyond, err := Query(ctx, db, Spec{Filter: filter, Sort: sort, Page: PageParams{Page: 99, PageSize: 4}})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, total, beyond.TotalCount)

	huge, err := Query(ctx, db, Spec{Filter: filter, Sort: sort, Page: PageParams{Page: 1_000_000_000_000_000_000}})
	require.NoError(t, err)
	assert.Empty(t, huge.Data)
	assert.Equal(t, total, huge.TotalCount)
	assert.Greater(t, huge.Page, 1)
}

func TestPageParams_Normalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PageParams{Page: 1, PageSize: 10}, PageParams{}.Normalize())
	assert.Equal(t, PageParams{Page: 1, PageSize: 5}, PageParams{Page: -4, PageSize: 5}.Normalize())
	assert.Equal(t, PageParams{Page: 3, PageSize: 100}, PageParams{Page: 3, PageSize: 500}.Normalize())
	assert.Equal(t, 20, PageParams{Page: 3, PageSize: 10}.Offset())

	huge := PageParams{Page: math.MaxInt}.Normalize()
	assert.Greater(t, huge.Page, 1)
	assert.Equal(t, 10, huge.PageSize)
	assert.Positive(t, huge.Offset())
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SortEnName, ParseSortKey("Name"))
	assert.Equal(t, SortEnName, ParseSortKey("enName"))
	assert.Equal(t, SortUaName, ParseSortKey("uaName"))
	assert.Equal(t, SortCount, ParseSortKey("stock"))
	assert.Equal(t, SortLikes, ParseSortKey("popularity"))
	assert.Equal(t, SortUaName, ParseSortKey("id; DROP TABLE products"))
	assert.Equal(t, Descending, ParseDirection("DESC"))
	assert.Equal(t, Ascending, ParseDirection("sideways"))
}
