package flashcard

import (
	"math"

	"github.com/vytor/studyspace/internal/models"
)

const (
	maxEasyInterval   = 30
	maxMediumInterval = 15
	mediumGrowth      = 1.3
)

// NextInterval returns the number of days until the next review of a card.
// reviewCount counts the review being completed, so the first completion of
// a card is reviewCount 1. Harder ratings yield shorter intervals.
func NextInterval(rating models.DifficultyRating, previousIntervalDays, reviewCount int) int {
	if reviewCount == 1 {
		switch rating {
		case models.RatingDifficult:
			return 1
		case models.RatingMedium:
			return 3
		default:
			return 7
		}
	}

	switch rating {
	case models.RatingEasy:
		return min(previousIntervalDays*2, maxEasyInterval)
	case models.RatingMedium:
		return min(int(math.Ceil(float64(previousIntervalDays)*mediumGrowth)), maxMediumInterval)
	default:
		return 1
	}
}
