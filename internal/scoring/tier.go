package scoring

// Tier is the coarse quality class derived from a score.
type Tier string

const (
	TierStandard Tier = "standard"
	TierVerified Tier = "verified"
	TierPremium  Tier = "premium"
)

// Rank orders tiers: standard < verified < premium. Unknown tiers rank below standard.
func (t Tier) Rank() int {
	switch t {
	case TierStandard:
		return 1
	case TierVerified:
		return 2
	case TierPremium:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// ParseTier accepts the canonical tier names.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	return t, t.Rank() > 0
}
