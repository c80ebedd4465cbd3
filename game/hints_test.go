package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossedThresholds(t *testing.T) {
	tests := []struct {
		desc          string
		timeRemaining int
		drawTime      int
		expected      int
	}{
		{desc: "full clock", timeRemaining: 80, drawTime: 80, expected: 0},
		{desc: "just above 60%", timeRemaining: 49, drawTime: 80, expected: 0},
		{desc: "at 60%", timeRemaining: 48, drawTime: 80, expected: 1},
		{desc: "at 40%", timeRemaining: 32, drawTime: 80, expected: 2},
		{desc: "at 20%", timeRemaining: 16, drawTime: 80, expected: 3},
		{desc: "expired", timeRemaining: 0, drawTime: 80, expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, crossedThresholds(tt.timeRemaining, tt.drawTime))
		})
	}
}

func TestHintTargetCappedByLevel(t *testing.T) {
	// 4-letter word, level 2: at most floor(8/5) = 1 reveal no matter how
	// many thresholds are crossed.
	assert.Equal(t, 1, hintTarget(0, 80, 4, 2))
	assert.Equal(t, 0, hintTarget(0, 80, 4, 0))
	// Level 5 lets the thresholds drive the target.
	assert.Equal(t, 3, hintTarget(16, 80, 10, 5))
}
