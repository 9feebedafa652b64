// Package scoring holds the point and star formulas for the spelling game.
// The curve is deliberate and saved scores depend on it, so the constants
// here must not drift.
package scoring

import "math"

// basePoints is the score for spelling a word unaided at level 1
const basePoints = 10.0

// LevelMultiplier returns the score multiplier for a level.
// Levels 1-3 are 1.0x, 1.5x and 2.0x; each level past 3 adds 0.5x.
func LevelMultiplier(level int) float64 {
	switch {
	case level <= 1:
		return 1.0
	case level == 2:
		return 1.5
	case level == 3:
		return 2.0
	default:
		return 2.0 + float64(level-3)*0.5
	}
}

// PointsForWord calculates the points earned for one word.
// When help was used only the letters typed before the reveal count,
// scaled by the word length. wordLength must be positive; levels start at 1.
func PointsForWord(level, wordLength, lettersTypedBeforeHelp int, helpUsed bool) int {
	earned := basePoints
	if helpUsed {
		earned = basePoints * float64(lettersTypedBeforeHelp) / float64(wordLength)
	}
	return int(math.Round(earned * LevelMultiplier(level)))
}

// StarsForLevel converts an earned score into a 0-3 star rating.
// Thresholds are inclusive: 90% of max is 3 stars, 70% is 2, 50% is 1.
func StarsForLevel(earnedScore, maxScore int) int {
	if maxScore == 0 {
		return 0
	}

	pct := float64(earnedScore) / float64(maxScore) * 100

	switch {
	case pct >= 90:
		return 3
	case pct >= 70:
		return 2
	case pct >= 50:
		return 1
	default:
		return 0
	}
}
