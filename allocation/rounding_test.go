package allocation_test

import (
	"testing"

	"github.com/warp/allocation-engine/allocation"
)

func TestRoundHalfToEven_TieRoundsToEven(t *testing.T) {
	// GIVEN: Values whose scaled fractional part lands exactly on .5
	// THEN: The tie resolves to the nearest even digit, not always up

	cases := []struct {
		value  float64
		places int32
		want   float64
	}{
		{88.885, 2, 88.88},  // down to even
		{88.875, 2, 88.88},  // up to even
		{0.125, 2, 0.12},
		{0.135, 2, 0.14},
		{2.5, 0, 2},
		{3.5, 0, 4},
		{-88.885, 2, -88.88},
	}

	for _, c := range cases {
		got := allocation.RoundHalfToEven(c.value, c.places)
		if got != c.want {
			t.Errorf("RoundHalfToEven(%v, %d) = %v, want %v", c.value, c.places, got, c.want)
		}
	}
}

func TestRoundHalfToEven_NonTiesRoundToNearest(t *testing.T) {
	cases := []struct {
		value  float64
		places int32
		want   float64
	}{
		{79.9965, 2, 80.00},
		{106.662, 2, 106.66},
		{111.141, 2, 111.14},
		{148.188, 2, 148.19},
		{123.49, 2, 123.49},
		{0, 2, 0},
	}

	for _, c := range cases {
		got := allocation.RoundHalfToEven(c.value, c.places)
		if got != c.want {
			t.Errorf("RoundHalfToEven(%v, %d) = %v, want %v", c.value, c.places, got, c.want)
		}
	}
}
