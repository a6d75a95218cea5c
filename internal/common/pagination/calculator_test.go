package pagination_test

import (
	"testing"

	"reviewhub/internal/common/pagination"
)

func TestCalculateOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{name: "first page", page: 1, pageSize: 20, want: 0},
		{name: "second page", page: 2, pageSize: 20, want: 20},
		{name: "third page", page: 3, pageSize: 20, want: 40},
		{name: "page 10 with size 50", page: 10, pageSize: 50, want: 450},
		{name: "page 1 with size 1", page: 1, pageSize: 1, want: 0},
		{name: "large page number", page: 1000, pageSize: 20, want: 19980},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pagination.CalculateOffset(tt.page, tt.pageSize)
			if got != tt.want {
				t.Errorf("CalculateOffset(%d, %d) = %d, want %d", tt.page, tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestClampPageSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		max  int
		want int
	}{
		{name: "below max", size: 10, max: 100, want: 10},
		{name: "at max", size: 100, max: 100, want: 100},
		{name: "above max", size: 10000, max: 100, want: 100},
		{name: "no max configured", size: 500, max: 0, want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pagination.ClampPageSize(tt.size, tt.max)
			if got != tt.want {
				t.Errorf("ClampPageSize(%d, %d) = %d, want %d", tt.size, tt.max, got, tt.want)
			}
		})
	}
}

func BenchmarkCalculateOffset(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pagination.CalculateOffset(100, 20)
	}
}
