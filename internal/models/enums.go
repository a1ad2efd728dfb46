package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Enum values are persisted as their declaration index, so columns sort in
// declaration order.

type Category int

const (
	CategoryJeans Category = iota
	CategoryHat
	CategoryShirt
	CategoryHoodie
	CategoryPants
	CategoryJacket
	CategoryAccessory
)

type Size int

const (
	SizeXS Size = iota
	SizeS
	SizeM
	SizeL
	SizeXL
	SizeXXL
	SizeOneSize
)

type Color int

const (
	ColorRed Color = iota
	ColorBlue
	ColorGreen
	ColorYellow
	ColorBlack
	ColorWhite
	ColorGray
	ColorPink
	ColorPurple
	ColorOrange
	ColorBrown
	ColorNavy
	ColorBeige
)

var (
	categoryNames = []string{"Jeans", "Hat", "Shirt", "Hoodie", "Pants", "Jacket", "Accessory"}
	sizeNames     = []string{"XS", "S", "M", "L", "XL", "XXL", "OneSize"}
	colorNames    = []string{"Red", "Blue", "Green", "Yellow", "Black", "White", "Gray", "Pink", "Purple", "Orange", "Brown", "Navy", "Beige"}
)

// EnumValue is one entry of an enum listing.
type EnumValue struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

func enumValues(names []string) []EnumValue {
	out := make([]EnumValue, len(names))
	for i, n := range names {
		out[i] = EnumValue{Value: i, Name: n}
	}
	return out
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return strconv.Itoa(v)
	}
	return names[v]
}

// parseEnum accepts a name (case-insensitive) or a declaration index.
func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(names) {
		return n, nil
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func unmarshalEnum(kind string, names []string, b []byte) (int, error) {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		return parseEnum(kind, names, strconv.Itoa(n))
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, fmt.Errorf("%s must be a name or an integer", kind)
	}
	return parseEnum(kind, names, s)
}

func CategoryValues() []EnumValue { return enumValues(categoryNames) }
func SizeValues() []EnumValue     { return enumValues(sizeNames) }
func ColorValues() []EnumValue    { return enumValues(colorNames) }

func ParseCategory(s string) (Category, error) {
	v, err := parseEnum("category", categoryNames, s)
	return Category(v), err
}

func ParseSize(s string) (Size, error) {
	v, err := parseEnum("size", sizeNames, s)
	return Size(v), err
}

func ParseColor(s string) (Color, error) {
	v, err := parseEnum("color", colorNames, s)
	return Color(v), err
}

func (c Category) String() string { return enumName(categoryNames, int(c)) }
func (s Size) String() string     { return enumName(sizeNames, int(s)) }
func (c Color) String() string    { return enumName(colorNames, int(c)) }

func (c Category) Valid() bool { return c >= 0 && int(c) < len(categoryNames) }
func (s Size) Valid() bool     { return s >= 0 && int(s) < len(sizeNames) }
func (c Color) Valid() bool    { return c >= 0 && int(c) < len(colorNames) }

func (c Category) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }
func (s Size) MarshalJSON() ([]byte, error)     { return json.Marshal(s.String()) }
func (c Color) MarshalJSON() ([]byte, error)    { return json.Marshal(c.String()) }

func (c *Category) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("category", categoryNames, b)
	*c = Category(v)
	return err
}

func (s *Size) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("size", sizeNames, b)
	*s = Size(v)
	return err
}

func (c *Color) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum("color", colorNames, b)
	*c = Color(v)
	return err
}
