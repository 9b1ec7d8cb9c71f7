package auth

import (
	"strings"

	"github.com/complyhub/compliance-service/internal/domain"
)

// Role is the closed set of roles the authorization engine reasons about.
// Stored role strings outside this set collapse to RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleDPO   Role = "dpo"
	RoleUser  Role = "user"
)

// NormalizeRole maps an identity onto the closed role set. Superusers are
// admins regardless of the stored role value; any other authenticated
// identity that is neither admin nor dpo is a generic user.
func NormalizeRole(identity *domain.Identity) Role {
	if identity == nil {
		return RoleUser
	}
	stored := strings.ToLower(strings.TrimSpace(identity.Role))
	switch {
	case identity.IsSuperuser || stored == string(RoleAdmin):
		return RoleAdmin
	case stored == string(RoleDPO):
		return RoleDPO
	default:
		return RoleUser
	}
}

// RoleFromClaim re-validates a role string carried in a token claim.
// Unknown values collapse to RoleUser rather than being trusted verbatim.
func RoleFromClaim(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDPO:
		return RoleDPO
	default:
		return RoleUser
	}
}
