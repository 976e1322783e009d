package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		total       int
		left, right int
	}{
		{"middle of second block", 15, 23, 11, 20},
		{"single short block", 1, 3, 1, 3},
		{"last partial block", 21, 23, 21, 23},
		{"block boundary", 10, 30, 1, 10},
		{"first of third block", 21, 30, 21, 30},
		{"no pages", 1, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPageInfo(tt.current, tt.total)
			assert.Equal(t, tt.left, got.LeftPageNumber)
			assert.Equal(t, tt.right, got.RightPageNumber)
			assert.Equal(t, tt.current, got.CurrentPageNumber)
			assert.Equal(t, tt.total, got.TotalPages)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 3, totalPages(23, 10))
	assert.Equal(t, 0, totalPages(5, 0))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}
