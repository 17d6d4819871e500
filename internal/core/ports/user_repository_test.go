package ports

import (
	"math"
	"testing"
)

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name string
		page PageRequest
		want int64
	}{
		{"first page", PageRequest{Page: 0, Size: 10}, 0},
		{"third page", PageRequest{Page: 2, Size: 10}, 20},
		{"negative page", PageRequest{Page: -1, Size: 10}, 0},
		{"zero size", PageRequest{Page: 3, Size: 0}, 0},
		{"largest exact", PageRequest{Page: math.MaxInt64 / 10, Size: 10}, math.MaxInt64 / 10 * 10},
		{"overflow saturates", PageRequest{Page: math.MaxInt64/10 + 1, Size: 10}, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Offset(); got != tt.want {
				t.Fatalf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}
