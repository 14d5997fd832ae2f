package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		page, size        int
		wantFrom, wantLim int
	}{
		{name: "first page", page: 1, size: 20, wantFrom: 0, wantLim: 20},
		{name: "third page", page: 3, size: 5, wantFrom: 10, wantLim: 5},
		{name: "page below one", page: 0, size: 5, wantFrom: 0, wantLim: 5},
		{name: "size defaulted", page: 2, size: 0, wantFrom: 10, wantLim: DefaultPageSize},
		{name: "size capped", page: 1, size: 1000, wantFrom: 0, wantLim: DefaultPageSize},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLim, lim)
		})
	}
}

func TestMeta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PageMeta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, Meta(2, 10, 21))
	assert.Equal(t, PageMeta{Page: 1, Limit: 10, Total: 0, TotalPages: 0}, Meta(-1, 0, 0))
}
