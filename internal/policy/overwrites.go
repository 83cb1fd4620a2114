// Package policy computes the permission-overwrite set for ticket
// channels. It is pure: no I/O, deterministic for a given input, so it
// tests without a live connection.
package policy

// Permission bits as defined by the Discord API.
const (
	PermAdministrator  int64 = 1 << 3
	PermManageChannels int64 = 1 << 4
	PermManageGuild    int64 = 1 << 5
	PermViewChannel    int64 = 1 << 10
	PermSendMessages   int64 = 1 << 11
	PermManageMessages int64 = 1 << 13
	PermEmbedLinks     int64 = 1 << 14
	PermAttachFiles    int64 = 1 << 15
	PermReadHistory    int64 = 1 << 16
)

// Permission sets granted inside a ticket channel.
const (
	RequesterAllow = PermViewChannel | PermSendMessages | PermReadHistory | PermAttachFiles | PermEmbedLinks
	StaffAllow     = PermViewChannel | PermSendMessages | PermReadHistory | PermManageChannels | PermManageMessages
)

// PrincipalType distinguishes role and member overwrites.
type PrincipalType string

const (
	PrincipalRole   PrincipalType = "role"
	PrincipalMember PrincipalType = "member"
)

// Principal names the target of an overwrite.
type Principal struct {
	ID   string
	Type PrincipalType
}

// Overwrite pairs a principal with allowed and denied permission bits.
type Overwrite struct {
	Principal Principal
	Allow     int64
	Deny      int64
}

// Role is the minimal view of a guild role the policy needs.
type Role struct {
	ID          string
	Name        string
	Permissions int64
}

// CanManageChannels reports whether the role carries channel-management
// or administrative capability.
func (r Role) CanManageChannels() bool {
	return r.Permissions&(PermAdministrator|PermManageChannels) != 0
}

// ComputeOverwrites returns the overwrite set for a new ticket channel.
//
// The default principal (the everyone role, whose ID equals the guild
// ID) is denied view. The requester gets participant permissions, the
// bot gets elevated permissions so it can close the channel later, and
// staff roles get the same elevated set. When no staff roles are
// configured, every guild role that already manages channels is granted
// instead, so tickets stay visible to staff even when misconfigured.
func ComputeOverwrites(guildID, requesterID, botUserID string, staffRoleIDs []string, guildRoles []Role) []Overwrite {
	overwrites := []Overwrite{
		{
			Principal: Principal{ID: guildID, Type: PrincipalRole},
			Deny:      PermViewChannel,
		},
		{
			Principal: Principal{ID: requesterID, Type: PrincipalMember},
			Allow:     RequesterAllow,
		},
		{
			Principal: Principal{ID: botUserID, Type: PrincipalMember},
			Allow:     StaffAllow,
		},
	}

	if len(staffRoleIDs) > 0 {
		seen := map[string]bool{}
		for _, roleID := range staffRoleIDs {
			if roleID == "" || seen[roleID] {
				continue
			}
			seen[roleID] = true
			overwrites = append(overwrites, Overwrite{
				Principal: Principal{ID: roleID, Type: PrincipalRole},
				Allow:     StaffAllow,
			})
		}
		return overwrites
	}

	for _, role := range guildRoles {
		if role.ID == guildID || !role.CanManageChannels() {
			continue
		}
		overwrites = append(overwrites, Overwrite{
			Principal: Principal{ID: role.ID, Type: PrincipalRole},
			Allow:     StaffAllow,
		})
	}
	return overwrites
}

// ArchiveOverwrite is applied to a closed channel kept in place: the
// default principal loses view access and the channel becomes inert.
func ArchiveOverwrite(guildID string) Overwrite {
	return Overwrite{
		Principal: Principal{ID: guildID, Type: PrincipalRole},
		Deny:      PermViewChannel | PermSendMessages,
	}
}
