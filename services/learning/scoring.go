package learning

import "math"

const (
	feedbackCorrect = "Benar"
	feedbackWrong   = "Salah"

	courseCompletionPoints = 100
	maxQuizRewardPoints    = 50
)

// percentage returns round(100*part/whole) clamped to [0, 100]; an empty whole is 0.
func percentage(part, whole int64) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(whole)))
	if p > 100 {
		return 100
	}
	return p
}

func quizReward(score int) int {
	return min(score/2, maxQuizRewardPoints)
}
