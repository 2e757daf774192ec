package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAction(t *testing.T) {
	cases := map[string]string{
		"clock_in":  actionClockIn,
		"ClockIn":   actionClockIn,
		"clock-in":  actionClockIn,
		"clock_out": actionClockOut,
		"ClockOut":  actionClockOut,
		"CLOCK-OUT": actionClockOut,
		"dance":     "dance",
		"":          "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalizeAction(raw), raw)
	}
}
