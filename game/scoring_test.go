package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuesserPoints(t *testing.T) {
	tests := []struct {
		desc          string
		timeRemaining int
		drawTime      int
		playerCount   int
		guessOrder    int
		expected      int
	}{
		{
			desc:          "sole guesser of two players mid-turn",
			timeRemaining: 60,
			drawTime:      80,
			playerCount:   2,
			guessOrder:    1,
			expected:      125,
		},
		{
			desc:          "first of many guessers at full time",
			timeRemaining: 80,
			drawTime:      80,
			playerCount:   8,
			guessOrder:    1,
			expected:      210,
		},
		{
			desc:          "last guesser at the buzzer",
			timeRemaining: 0,
			drawTime:      80,
			playerCount:   4,
			guessOrder:    3,
			expected:      50,
		},
		{
			desc:          "time bonus floors",
			timeRemaining: 59,
			drawTime:      80,
			playerCount:   2,
			guessOrder:    1,
			expected:      123,
		},
		{
			desc:          "zero draw time falls back to base",
			timeRemaining: 10,
			drawTime:      0,
			playerCount:   2,
			guessOrder:    1,
			expected:      50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, guesserPoints(tt.timeRemaining, tt.drawTime, tt.playerCount, tt.guessOrder))
		})
	}
}

func TestDrawerPoints(t *testing.T) {
	assert.Equal(t, 21, drawerPoints(60, 80))
	assert.Equal(t, 25, drawerPoints(80, 80))
	assert.Equal(t, 10, drawerPoints(0, 80))
	assert.Equal(t, 10, drawerPoints(10, 0))
}

func TestAddPoints(t *testing.T) {
	assert.Equal(t, 150, addPoints(100, 50))
	assert.Equal(t, 10000, addPoints(9990, 125))
	assert.Equal(t, 0, addPoints(0, 0))
}
