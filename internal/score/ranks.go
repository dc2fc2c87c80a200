package score

import (
	"encoding/json"
	"math"
)

// Unbounded marks a tier with no upper score limit.
const Unbounded ScoreBound = math.MaxInt

// ScoreBound is an inclusive tier limit. The unbounded top limit
// serializes as null so clients see an open-ended range.
type ScoreBound int

func (b ScoreBound) MarshalJSON() ([]byte, error) {
	if b == Unbounded {
		return []byte("null"), nil
	}
	return json.Marshal(int(b))
}

// Rank is a score tier on the leaderboard.
type Rank struct {
	Name        string     `json:"name"`
	MinScore    int        `json:"minScore"`
	MaxScore    ScoreBound `json:"maxScore"`
	Emoji       string     `json:"emoji"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
}

// Ranks is ordered by descending MinScore and covers [0, ∞) without gaps.
var Ranks = []Rank{
	{
		Name:        "ETHMumbai Legend",
		MinScore:    50,
		MaxScore:    Unbounded,
		Emoji:       "👑",
		Color:       "#FFD700",
		Description: "The ultimate ETHMumbai evangelist! You live and breathe ETHMumbai!",
	},
	{
		Name:        "ETHMumbai OG",
		MinScore:    30,
		MaxScore:    49,
		Emoji:       "🔥",
		Color:       "#FF6B35",
		Description: "A true OG of the ETHMumbai community!",
	},
	{
		Name:        "ETHMumbai Enthusiast",
		MinScore:    15,
		MaxScore:    29,
		Emoji:       "⚡",
		Color:       "#8B5CF6",
		Description: "You're spreading the ETHMumbai vibes everywhere!",
	},
	{
		Name:        "ETHMumbai Fan",
		MinScore:    5,
		MaxScore:    14,
		Emoji:       "💜",
		Color:       "#EC4899",
		Description: "A dedicated fan of the ETHMumbai community!",
	},
	{
		Name:        "ETHMumbai Explorer",
		MinScore:    1,
		MaxScore:    4,
		Emoji:       "🌱",
		Color:       "#10B981",
		Description: "Just getting started with ETHMumbai - keep tweeting!",
	},
	{
		Name:        "ETHMumbai Newbie",
		MinScore:    0,
		MaxScore:    0,
		Emoji:       "👋",
		Color:       "#6B7280",
		Description: "Welcome! Start tweeting about ETHMumbai to climb the ranks!",
	},
}

// RankFor returns the tier whose [MinScore, MaxScore] contains score.
// Tiers are checked in descending MinScore order; the lowest tier is the
// fallback for anything that slips through.
func RankFor(score int) Rank {
	for _, r := range Ranks {
		if score >= r.MinScore && score <= int(r.MaxScore) {
			return r
		}
	}
	return Ranks[len(Ranks)-1]
}

// NextRank returns the tier immediately above the current one, or false if
// the score is already in the top tier.
func NextRank(score int) (Rank, bool) {
	current := RankFor(score)
	for i, r := range Ranks {
		if r.Name == current.Name {
			if i == 0 {
				return Rank{}, false
			}
			return Ranks[i-1], true
		}
	}
	return Rank{}, false
}

// PointsToNextRank returns how many points are missing to reach the next
// tier, or 0 at the top.
func PointsToNextRank(score int) int {
	next, ok := NextRank(score)
	if !ok {
		return 0
	}
	return next.MinScore - score
}
