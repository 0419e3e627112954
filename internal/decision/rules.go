package decision

import "eventgate/internal/domain"

// CanViewContent decides whether p may view c. It is total: a nil principal
// is treated as inactive and nil perk sets as empty.
//
// Rule priority (fail-fast):
//  1. Account must be active; inactivity dominates every other rule
//  2. Content with no required perks is open to any active principal
//  3. Any shared perk grants access
func CanViewContent(p *domain.Principal, c *domain.ContentItem) Decision {
	if p == nil || !p.IsActive {
		return Deny(ReasonAccountInactive)
	}

	if c == nil {
		return Allow()
	}
	required := domain.NewSet(c.RequiredPerks...)
	if len(required) == 0 {
		return Allow()
	}

	if required.Intersects(p.Perks) {
		return Allow()
	}
	return Deny(ReasonMissingPerk)
}

// CanEnterRole reports whether p holds exactly role. Roles are flat: an admin
// does not satisfy a staff requirement.
func CanEnterRole(p *domain.Principal, role domain.Role) bool {
	if p == nil || !p.IsActive {
		return false
	}
	return p.Role == role
}

// RoleDecision is CanEnterRole as a Decision, distinguishing inactivity from
// a role mismatch.
func RoleDecision(p *domain.Principal, role domain.Role) Decision {
	if p == nil || !p.IsActive {
		return Deny(ReasonAccountInactive)
	}
	if p.Role != role {
		return Deny(ReasonUnauthorized)
	}
	return Allow()
}
