package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, whole int64
		want        int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{15, 20, 75},
		{20, 20, 100},
		{25, 20, 100},
		{-1, 20, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentage(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}

func TestQuizReward(t *testing.T) {
	assert.Equal(t, 0, quizReward(1))
	assert.Equal(t, 37, quizReward(75))
	assert.Equal(t, 50, quizReward(100))
}
