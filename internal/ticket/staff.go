package ticket

import (
	"github.com/creatorhub/ticket-bot/internal/platform"
	"github.com/creatorhub/ticket-bot/internal/policy"
)

// IsStaff is the staff predicate: administrative capability,
// channel-management capability, or membership in a configured staff role.
func IsStaff(member platform.Member, staffRoleIDs []string) bool {
	if member.Permissions&(policy.PermAdministrator|policy.PermManageChannels) != 0 {
		return true
	}
	for _, have := range member.RoleIDs {
		for _, want := range staffRoleIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CanManageGuild gates the setup operation.
func CanManageGuild(member platform.Member) bool {
	return member.Permissions&(policy.PermAdministrator|policy.PermManageGuild) != 0
}
