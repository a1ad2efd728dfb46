package catalog

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SortKey string

const (
	SortUaName      SortKey = "uaname"
	SortEnName      SortKey = "enname"
	SortDescription SortKey = "description"
	SortPrice       SortKey = "price"
	SortCategory    SortKey = "category"
	SortCount       SortKey = "count"
	SortLikes       SortKey = "likes"
	SortSize        SortKey = "size"
	SortColor       SortKey = "color"
)

var sortColumns = map[SortKey]string{
	SortUaName:      "ua_name",
	SortEnName:      "en_name",
	SortDescription: "description",
	SortPrice:       "price",
	SortCategory:    "category",
	SortCount:       "count",
	SortLikes:       "likes",
	SortSize:        "size",
	SortColor:       "color",
}

var sortAliases = map[string]SortKey{
	"name":       SortEnName,
	"stock":      SortCount,
	"popularity": SortLikes,
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type SortParams struct {
	Key       SortKey
	Direction Direction
}

// ParseSortKey maps a client field name onto the closed key set; anything
// unknown falls back to the primary display name.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := sortAliases[s]; ok {
		return k
	}
	if _, ok := sortColumns[SortKey(s)]; ok {
		return SortKey(s)
	}
	return SortUaName
}

func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "descending", "desc", "1":
		return Descending
	default:
		return Ascending
	}
}

func ParseSort(orderBy, direction string) SortParams {
	return SortParams{Key: ParseSortKey(orderBy), Direction: ParseDirection(direction)}
}

func (s SortParams) column() string {
	if col, ok := sortColumns[s.Key]; ok {
		return col
	}
	return sortColumns[SortUaName]
}

// Scope orders by the chosen column, then by id so equal keys keep a fixed
// order across pages.
func (s SortParams) Scope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.
			Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: s.column()}, Desc: s.Direction == Descending}).
			Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: "id"}})
	}
}
