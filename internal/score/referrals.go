package score

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ReferralTier grants bonus points once a user has recruited enough others.
type ReferralTier struct {
	Count int    `json:"count"` // referrals needed to unlock
	Bonus int    `json:"bonus"` // bonus points granted
	Badge string `json:"badge"`
	Title string `json:"title"`
}

// ReferralTiers is ordered by descending Count; the first tier satisfied wins.
var ReferralTiers = []ReferralTier{
	{Count: 10, Bonus: 15, Badge: "👑", Title: "Ambassador"},
	{Count: 5, Bonus: 8, Badge: "🔥", Title: "Evangelist"},
	{Count: 3, Bonus: 5, Badge: "📢", Title: "Promoter"},
	{Count: 1, Bonus: 1, Badge: "🌱", Title: "Connector"},
}

// ReferralBonus returns the bonus points earned for a referral count, 0 if
// no tier is reached yet.
func ReferralBonus(referralCount int) int {
	for _, tier := range ReferralTiers {
		if referralCount >= tier.Count {
			return tier.Bonus
		}
	}
	return 0
}

// ReferralTierFor returns the highest tier unlocked by a referral count.
func ReferralTierFor(referralCount int) (ReferralTier, bool) {
	for _, tier := range ReferralTiers {
		if referralCount >= tier.Count {
			return tier, true
		}
	}
	return ReferralTier{}, false
}

// NextReferralTier returns the next tier still locked, or false at the top.
func NextReferralTier(referralCount int) (ReferralTier, bool) {
	for i := len(ReferralTiers) - 1; i >= 0; i-- {
		if referralCount < ReferralTiers[i].Count {
			return ReferralTiers[i], true
		}
	}
	return ReferralTier{}, false
}

// ReferralsToNextTier returns how many referrals are missing until the next
// tier, or 0 at the top.
func ReferralsToNextTier(referralCount int) int {
	next, ok := NextReferralTier(referralCount)
	if !ok {
		return 0
	}
	return next.Count - referralCount
}

var referralCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidReferralCode reports whether code is structurally plausible
// (cuid-shaped: 20-30 alphanumeric characters). It does not verify that the
// code exists.
func ValidReferralCode(code string) bool {
	if len(code) < 20 || len(code) > 30 {
		return false
	}
	return referralCodePattern.MatchString(code)
}

// NewReferralCode generates a fresh 25-character lowercase referral code.
// The 'c' prefix plus 24 hex digits keeps the shape of the cuids the early
// records were created with.
func NewReferralCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "c" + hex[:24]
}
