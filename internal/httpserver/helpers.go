package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
	mw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const imageField = "imageFile"

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, invalid("%s must be a uuid", name)
	}
	return id, nil
}

func caller(c echo.Context) (service.Caller, error) {
	who, ok := mw.Caller(c)
	if !ok {
		return service.Caller{}, service.ErrUnauthorized
	}
	return who, nil
}

// formImage returns the optional uploaded image. The caller closes it.
func formImage(c echo.Context) (*storage.Upload, func(), error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, invalid("invalid %s: %w", imageField, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	u := &storage.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}
	return u, func() { _ = f.Close() }, nil
}

// productSpec reads the product pipeline query parameters.
func productSpec(c echo.Context, callerID *uuid.UUID) (catalog.Spec, error) {
	var fe service.FieldErrors
	q := c.QueryParams()
	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }

	money := func(k string) *decimal.Decimal {
		s := get(k)
		if s == "" {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			fe.Add(k, "must be a decimal number")
			return nil
		}
		return &d
	}
	integer := func(k string) *int {
		s := get(k)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			fe.Add(k, "must be an integer")
			return nil
		}
		return &n
	}

	f := catalog.Filter{
		UaName:      get("uaName"),
		EnName:      get("enName"),
		Description: get("description"),
		MinPrice:    money("minPrice"),
		MaxPrice:    money("maxPrice"),
		Count:       integer("count"),
		MinLikes:    integer("minLikes"),
		MaxLikes:    integer("maxLikes"),
	}
	if s := get("category"); s != "" {
		if v, err := models.ParseCategory(s); err != nil {
			fe.Add("category", "unknown category")
		} else {
			f.Category = &v
		}
	}
	if s := get("size"); s != "" {
		if v, err := models.ParseSize(s); err != nil {
			fe.Add("size", "unknown size")
		} else {
			f.Size = &v
		}
	}
	if s := get("color"); s != "" {
		if v, err := models.ParseColor(s); err != nil {
			fe.Add("color", "unknown color")
		} else {
			f.Color = &v
		}
	}
	if s := get("isLiked"); s != "" {
		if v, err := strconv.ParseBool(s); err != nil {
			fe.Add("isLiked", "must be true or false")
		} else {
			f.IsLiked = &v
		}
	}

	page := integer("page")
	size := integer("pageSize")
	if err := fe.Err(); err != nil {
		return catalog.Spec{}, err
	}

	spec := catalog.Spec{
		Filter:   f,
		Sort:     catalog.ParseSort(get("orderBy"), get("sortDirection")),
		CallerID: callerID,
	}
	if page != nil {
		spec.Page.Page = *page
	}
	if size != nil {
		spec.Page.PageSize = *size
	}
	spec.Page = spec.Page.Normalize()
	return spec, nil
}
