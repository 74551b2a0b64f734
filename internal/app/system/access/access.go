// Package access maps a user's role and subscription tier to a closed set of
// feature capabilities.
//
// Every call site that needs to show or lock an LMS feature consumes the same
// Permissions record instead of re-deriving role logic with ad hoc boolean
// expressions. Compute is a pure function of its inputs, so it is
// unit-testable with synthetic fixtures and deterministic by construction.
package access

import "strings"

// Subscription tiers, lowest to highest. A user with no subscription record
// is "free", never an elevated tier.
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
	TierVIP     = "vip"
)

// tierRank orders tiers for comparison. Unknown tiers rank below free.
var tierRank = map[string]int{
	TierFree:    0,
	TierBasic:   1,
	TierPremium: 2,
	TierVIP:     3,
}

// Capability names the gated features. The set is closed: adding a feature
// means adding a field to Permissions and a row to requiredTier.
type Capability string

const (
	CapPrograms    Capability = "programs"
	CapLiveLessons Capability = "live_lessons"
	CapDownloads   Capability = "downloads"
	CapCommunity   Capability = "community"
	CapCoaching    Capability = "coaching"
)

// requiredTier is the minimum tier for each capability.
var requiredTier = map[Capability]string{
	CapPrograms:    TierBasic,
	CapLiveLessons: TierPremium,
	CapDownloads:   TierPremium,
	CapCommunity:   TierBasic,
	CapCoaching:    TierVIP,
}

// Permissions is the full permission record consumed by presentation code.
type Permissions struct {
	CanAccessPrograms    bool `json:"canAccessPrograms"`
	CanAccessLiveLessons bool `json:"canAccessLiveLessons"`
	CanAccessDownloads   bool `json:"canAccessDownloads"`
	CanAccessCommunity   bool `json:"canAccessCommunity"`
	CanAccessCoaching    bool `json:"canAccessCoaching"`

	// Tier echoes the effective tier the record was computed from, so
	// locked placeholders can name the user's current tier.
	Tier string `json:"tier"`
}

// Compute derives the permission record from a global role and subscription
// tier. Admins and super-admins hold every capability regardless of tier.
func Compute(role, tier string) Permissions {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "admin" || role == "super-admin" {
		return Permissions{
			CanAccessPrograms:    true,
			CanAccessLiveLessons: true,
			CanAccessDownloads:   true,
			CanAccessCommunity:   true,
			CanAccessCoaching:    true,
			Tier:                 TierVIP,
		}
	}

	tier = normalizeTier(tier)
	rank := tierRank[tier]

	return Permissions{
		CanAccessPrograms:    rank >= tierRank[requiredTier[CapPrograms]],
		CanAccessLiveLessons: rank >= tierRank[requiredTier[CapLiveLessons]],
		CanAccessDownloads:   rank >= tierRank[requiredTier[CapDownloads]],
		CanAccessCommunity:   rank >= tierRank[requiredTier[CapCommunity]],
		CanAccessCoaching:    rank >= tierRank[requiredTier[CapCoaching]],
		Tier:                 tier,
	}
}

// RequiredTier returns the tier needed for a capability, for upsell prompts
// naming the required tier. Unknown capabilities require the highest tier.
func RequiredTier(c Capability) string {
	if t, ok := requiredTier[c]; ok {
		return t
	}
	return TierVIP
}

// Allows reports whether the given tier grants the capability.
func Allows(tier string, c Capability) bool {
	return tierRank[normalizeTier(tier)] >= tierRank[RequiredTier(c)]
}

// Meets reports whether a user's tier satisfies a required tier, for content
// tagged with its own access level rather than a named capability.
func Meets(userTier, requiredTier string) bool {
	return tierRank[normalizeTier(userTier)] >= tierRank[normalizeTier(requiredTier)]
}

func normalizeTier(tier string) string {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if _, ok := tierRank[tier]; !ok {
		return TierFree
	}
	return tier
}
