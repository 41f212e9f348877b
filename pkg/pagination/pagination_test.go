package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Params
	}{
		{"defaults for zero values", 0, 0, Params{Page: 1, PerPage: 10, Offset: 0}},
		{"second page", 2, 10, Params{Page: 2, PerPage: 10, Offset: 10}},
		{"negative page", -4, 5, Params{Page: 1, PerPage: 5, Offset: 0}},
		{"capped page size", 3, 500, Params{Page: 3, PerPage: 100, Offset: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.page, tt.size))
		})
	}
}

func TestFromRequest_Limit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reviews?page=3&limit=25", nil)
	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, 50, p.Offset)
}

func TestFromRequest_PerPageFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reviews?per_page=7", nil)
	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 7, p.PerPage)
}

func TestFromRequest_GarbageFallsBackToDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reviews?page=abc&limit=xyz", nil)
	p := FromRequest(req)

	assert.Equal(t, DefaultParams(), p)
}

func TestNew_HugePageKeepsOffsetNonNegative(t *testing.T) {
	for _, size := range []int{1, 10, MaxPerPage} {
		p := New(math.MaxInt, size)

		assert.GreaterOrEqual(t, p.Offset, 0, "page size %d", size)
		assert.GreaterOrEqual(t, p.Offset+p.PerPage, p.Offset, "page size %d", size)
		assert.Equal(t, (p.Page-1)*p.PerPage, p.Offset)
	}
}

func TestFromRequest_HugePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews?page=9223372036854775807&limit=10", nil)
	p := FromRequest(req)

	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, math.MaxInt/10, p.Page)
	assert.GreaterOrEqual(t, p.Offset, 0)
}
