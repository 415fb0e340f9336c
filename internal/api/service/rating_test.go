package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundScore(t *testing.T) {
	cases := []struct {
		name string
		mean float64
		want int
	}{
		{"single score", 3.0, 3},
		{"mean of 7 and 8 rounds up", 7.5, 8},
		{"mean of 1 and 2 rounds up", 1.5, 2},
		{"below half rounds down", 7.49, 7},
		{"above half rounds up", 7.51, 8},
		{"max score", 10.0, 10},
		{"mean of three scores", 8.333333, 8},
		{"tie at 8.5", 8.5, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundScore(tc.mean))
		})
	}
}
