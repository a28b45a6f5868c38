package enums

import "fmt"

// MemberTier is the loyalty tier of a member record.
type MemberTier string

const (
	MemberTierBronze   MemberTier = "Bronze"
	MemberTierSilver   MemberTier = "Silver"
	MemberTierGold     MemberTier = "Gold"
	MemberTierPlatinum MemberTier = "Platinum"
)

var validMemberTiers = []MemberTier{
	MemberTierBronze,
	MemberTierSilver,
	MemberTierGold,
	MemberTierPlatinum,
}

// String implements fmt.Stringer.
func (t MemberTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known MemberTier.
func (t MemberTier) IsValid() bool {
	for _, candidate := range validMemberTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMemberTier converts raw input into a MemberTier. Empty input yields Bronze.
func ParseMemberTier(value string) (MemberTier, error) {
	if value == "" {
		return MemberTierBronze, nil
	}
	for _, candidate := range validMemberTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member tier %q", value)
}
