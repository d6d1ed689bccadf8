package domain

import "strings"

// Tier is the user's entitlement level.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ParseTier maps a raw tier name to a Tier, defaulting to the lowest tier.
func ParseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierStandard:
		return TierStandard
	case TierPremium:
		return TierPremium
	default:
		return TierFree
	}
}

// UsesRemoteProgress reports whether in-progress attempts may be read from or written
// to the remote store. The lowest tier keeps progress in the local cache only.
func (t Tier) UsesRemoteProgress() bool {
	return t == TierStandard || t == TierPremium
}

func (t Tier) rank() int {
	switch t {
	case TierPremium:
		return 2
	case TierStandard:
		return 1
	default:
		return 0
	}
}

// Allows reports whether t covers content that requires the given tier.
func (t Tier) Allows(required Tier) bool {
	return t.rank() >= required.rank()
}

// Identity is supplied by the external authentication layer.
type Identity struct {
	UserID string `json:"userId"`
	Tier   Tier   `json:"tier"`
}

// Anonymous reports whether no user is signed in (preview visitors).
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}
