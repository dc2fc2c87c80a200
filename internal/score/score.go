// Package score implements the deterministic ETHMumbai fan score: the score
// formula, the rank tier table, and the referral bonus tiers.
package score

import "math"

// Score weights. Matched tweets count fully, mentions half, hashtags 0.3.
const (
	matchedWeight = 1.0
	mentionWeight = 0.5
	hashtagWeight = 0.3
)

// Score computes the fan score from raw activity counts. Fractional
// contributions are summed before flooring, so Score(5, 2, 3) = floor(6.9) = 6.
func Score(matched, mentions, hashtags int) int {
	return int(math.Floor(
		float64(matched)*matchedWeight +
			float64(mentions)*mentionWeight +
			float64(hashtags)*hashtagWeight,
	))
}
