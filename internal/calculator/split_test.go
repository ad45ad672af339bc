package calculator

import (
	"math"
	"testing"
)

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		filled  int
		want    []float64
		wantErr bool
	}{
		{
			name:   "two members split evenly",
			total:  100.0,
			filled: 2,
			want:   []float64{50.0, 50.0},
		},
		{
			name:   "single member owes everything",
			total:  100.0,
			filled: 1,
			want:   []float64{100.0},
		},
		{
			name:   "first member absorbs the rounding remainder",
			total:  100.0,
			filled: 3,
			want:   []float64{33.34, 33.33, 33.33},
		},
		{
			name:   "uneven cents",
			total:  0.05,
			filled: 2,
			want:   []float64{0.03, 0.02},
		},
		{
			name:    "zero members should error",
			total:   100.0,
			filled:  0,
			wantErr: true,
		},
		{
			name:    "negative total should error",
			total:   -5.0,
			filled:  2,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit{}.Shares(tt.total, tt.filled, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Shares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			assertShares(t, got, tt.want)

			sum := 0.0
			for _, s := range got {
				sum += s
			}
			if math.Abs(sum-tt.total) > 0.001 {
				t.Errorf("shares sum to %v, want %v", sum, tt.total)
			}
		})
	}
}

func TestCapacitySplit(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		filled   int
		capacity int
		want     []float64
		wantErr  bool
	}{
		{
			name:     "fixed per-slot share regardless of headcount",
			total:    90.0,
			filled:   1,
			capacity: 3,
			want:     []float64{30.0},
		},
		{
			name:     "all slots filled",
			total:    90.0,
			filled:   3,
			capacity: 3,
			want:     []float64{30.0, 30.0, 30.0},
		},
		{
			name:     "capacity below filled count should error",
			total:    90.0,
			filled:   3,
			capacity: 2,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CapacitySplit{}.Shares(tt.total, tt.filled, tt.capacity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Shares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			assertShares(t, got, tt.want)
		})
	}
}

func TestForName(t *testing.T) {
	if ForName("capacity").Name() != "capacity" {
		t.Error(`ForName("capacity") did not return the capacity policy`)
	}
	if ForName("headcount").Name() != "headcount" {
		t.Error(`ForName("headcount") did not return the equal-split policy`)
	}
	if ForName("").Name() != "headcount" {
		t.Error("unknown policy name should fall back to equal split")
	}
}

func assertShares(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d shares, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.001 {
			t.Errorf("share[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
