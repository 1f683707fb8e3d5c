package settlement

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(parts []int64) int64 {
	var total int64
	for _, p := range parts {
		total += p
	}
	return total
}

func TestSplitEqually(t *testing.T) {
	tests := []struct {
		total int64
		n     int
		want  []int64
	}{
		{300, 3, []int64{100, 100, 100}},
		{100, 3, []int64{34, 33, 33}},
		{2, 3, []int64{1, 1, 0}},
		{0, 2, []int64{0, 0}},
		{7, 1, []int64{7}},
		{5, 0, []int64{}},
		{5, -1, []int64{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitEqually(tt.total, tt.n), "SplitEqually(%d, %d)", tt.total, tt.n)
	}
}

func TestSplitEqually_RoundTrip(t *testing.T) {
	for total := int64(0); total <= 1000; total += 37 {
		for n := 1; n <= 12; n++ {
			parts := SplitEqually(total, n)
			require.Len(t, parts, n)
			assert.Equal(t, total, sum(parts), "total %d over %d", total, n)
			assert.LessOrEqual(t, slices.Max(parts)-slices.Min(parts), int64(1))
			for _, p := range parts {
				assert.GreaterOrEqual(t, p, int64(0))
			}
		}
	}
}

func TestSplitByWeights(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		weights []int64
		want    []int64
		wantErr error
	}{
		{name: "proportional", total: 300, weights: []int64{2, 1}, want: []int64{200, 100}},
		{name: "remainder to largest fraction", total: 100, weights: []int64{1, 1, 1}, want: []int64{34, 33, 33}},
		{name: "uneven", total: 10, weights: []int64{1, 2, 3}, want: []int64{2, 3, 5}},
		{name: "zero weight gets nothing", total: 90, weights: []int64{0, 1, 2}, want: []int64{0, 30, 60}},
		{name: "zero total zero weights", total: 0, weights: []int64{0, 0}, want: []int64{0, 0}},
		{name: "all zero weights", total: 10, weights: []int64{0, 0}, wantErr: ErrZeroWeight},
		{name: "negative weight", total: 10, weights: []int64{-1, 2}, wantErr: ErrNegativeAmount},
		{name: "negative total", total: -10, weights: []int64{1}, wantErr: ErrNegativeAmount},
		{name: "no weights", total: 10, weights: nil, wantErr: ErrNoParticipants},
		{name: "large weights", total: 5_000_000_000, weights: []int64{3_000_000_000, 1}, want: []int64{4_999_999_998, 2}},
		{name: "huge weight", total: 100, weights: []int64{4_000_000_000_000_000_000, 1}, want: []int64{100, 0}},
		{name: "weights overflow", total: 100, weights: []int64{math.MaxInt64, 1}, wantErr: ErrWeightTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitByWeights(tt.total, tt.weights)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.total, sum(got))
		})
	}
}

func TestValidateExact(t *testing.T) {
	assert.NoError(t, ValidateExact(300, []int64{100, 200}))
	assert.ErrorIs(t, ValidateExact(300, []int64{100, 100}), ErrSplitMismatch)
	assert.ErrorIs(t, ValidateExact(300, []int64{math.MaxInt64, math.MaxInt64, 2}), ErrSplitMismatch)
	assert.ErrorIs(t, ValidateExact(0, []int64{100, -100}), ErrNegativeAmount)
	assert.ErrorIs(t, ValidateExact(0, nil), ErrNoParticipants)
}

func TestSplitItemized(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		total        int64
		participants []string
		wantErr      error
		want         map[string][3]int64 // subtotal, tax, total
	}{
		{
			name: "two people with tax",
			items: []Item{
				{Description: "Pizza", Amount: 2000, AssignedTo: []string{"Alice", "Bob"}},
				{Description: "Salad", Amount: 1000, AssignedTo: []string{"Alice"}},
			},
			total:        3300,
			participants: []string{"Alice", "Bob"},
			want: map[string][3]int64{
				"Alice": {2000, 200, 2200},
				"Bob":   {1000, 100, 1100},
			},
		},
		{
			name:         "no items splits total equally",
			total:        1000,
			participants: []string{"Alice", "Bob", "Charlie"},
			want: map[string][3]int64{
				"Alice":   {334, 0, 334},
				"Bob":     {333, 0, 333},
				"Charlie": {333, 0, 333},
			},
		},
		{
			name:         "unassigned item is shared by everyone",
			items:        []Item{{Description: "Shared Pizza", Amount: 3000}},
			total:        3300,
			participants: []string{"Alice", "Bob", "Charlie"},
			want: map[string][3]int64{
				"Alice":   {1000, 100, 1100},
				"Bob":     {1000, 100, 1100},
				"Charlie": {1000, 100, 1100},
			},
		},
		{
			name:         "uneven tax keeps the total",
			items:        []Item{{Description: "Fries", Amount: 100, AssignedTo: []string{"Alice", "Bob", "Charlie"}}},
			total:        110,
			participants: []string{"Alice", "Bob", "Charlie"},
			want: map[string][3]int64{
				"Alice":   {34, 4, 38},
				"Bob":     {33, 3, 36},
				"Charlie": {33, 3, 36},
			},
		},
		{
			name:         "no participants",
			total:        100,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "assignee outside participants",
			items:        []Item{{Description: "Beer", Amount: 500, AssignedTo: []string{"Mallory"}}},
			total:        500,
			participants: []string{"Alice"},
			wantErr:      ErrUnknownParticipant,
		},
		{
			name:         "total below items",
			items:        []Item{{Description: "Steak", Amount: 5000}},
			total:        4000,
			participants: []string{"Alice"},
			wantErr:      ErrTotalBelowItems,
		},
		{
			name:         "large amounts",
			items:        []Item{{Description: "Villa", Amount: 4_000_000_000, AssignedTo: []string{"Alice"}}},
			total:        7_000_000_000,
			participants: []string{"Alice", "Bob"},
			want: map[string][3]int64{
				"Alice": {4_000_000_000, 3_000_000_000, 7_000_000_000},
				"Bob":   {0, 0, 0},
			},
		},
		{
			name: "items overflowing the total",
			items: []Item{
				{Description: "Boat", Amount: math.MaxInt64},
				{Description: "Plane", Amount: math.MaxInt64},
			},
			total:        math.MaxInt64,
			participants: []string{"Alice"},
			wantErr:      ErrTotalBelowItems,
		},
		{
			name:         "tax with zero-value items",
			items:        []Item{{Description: "Water", Amount: 0}},
			total:        100,
			participants: []string{"Alice"},
			wantErr:      ErrZeroWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := SplitItemized(tt.items, tt.total, tt.participants)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var total int64
			for person, want := range tt.want {
				split := splits[person]
				require.NotNil(t, split, "missing split for %s", person)
				assert.Equal(t, want, [3]int64{split.Subtotal, split.Tax, split.Total}, person)
				total += split.Total
			}
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestSplitItemized_ItemBreakdown(t *testing.T) {
	splits, err := SplitItemized([]Item{
		{Description: "Pizza", Amount: 2000, AssignedTo: []string{"Alice"}},
		{Description: "Salad", Amount: 1000, AssignedTo: []string{"Bob"}},
	}, 3300, []string{"Alice", "Bob"})
	require.NoError(t, err)

	assert.Equal(t, []PersonItem{{Description: "Pizza", Amount: 2000}}, splits["Alice"].Items)
	assert.Equal(t, []PersonItem{{Description: "Salad", Amount: 1000}}, splits["Bob"].Items)
}
