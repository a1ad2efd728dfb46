package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate clamps page and size and returns the row offset and limit.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// (page-1)*size must not overflow int.
	if page-1 > math.MaxInt/size {
		page = math.MaxInt/size + 1
	}
	return (page - 1) * size, size
}

func TotalPages(total int64, size int) int64 {
	if size < 1 || total <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
