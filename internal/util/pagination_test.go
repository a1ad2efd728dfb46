package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		page, size    int
		offset, limit int
	}{
		{name: "defaults", page: 0, size: 0, offset: 0, limit: 10},
		{name: "negative page", page: -3, size: 5, offset: 0, limit: 5},
		{name: "third page", page: 3, size: 20, offset: 40, limit: 20},
		{name: "capped size", page: 2, size: 1000, offset: 100, limit: 100},
		{name: "huge page", page: math.MaxInt, size: 10, offset: math.MaxInt / 10 * 10, limit: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ParseIntDefault("", 5))
	assert.Equal(t, 5, ParseIntDefault("abc", 5))
	assert.Equal(t, -2, ParseIntDefault("-2", 5))
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, TotalPages(0, 10))
	assert.EqualValues(t, 1, TotalPages(10, 10))
	assert.EqualValues(t, 2, TotalPages(11, 10))
}
