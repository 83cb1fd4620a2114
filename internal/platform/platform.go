// Package platform narrows the chat platform's API to the operations
// the bot needs, so the lifecycle core can be exercised with fakes.
package platform

import (
	"context"
	"errors"

	"github.com/creatorhub/ticket-bot/internal/policy"
)

// Sentinel errors adapters map platform responses onto. Everything else
// is treated as a generic operation failure.
var (
	ErrPermissionDenied = errors.New("platform: permission denied")
	ErrNotFound         = errors.New("platform: not found")
)

// ChannelType is the subset of channel kinds the bot distinguishes.
type ChannelType int

const (
	ChannelTypeText ChannelType = iota
	ChannelTypeCategory
	ChannelTypeOther
)

// Channel is the bot's view of a guild channel.
type Channel struct {
	ID       string
	Name     string
	ParentID string
	Type     ChannelType
}

// Role is the bot's view of a guild role.
type Role struct {
	ID          string
	Name        string
	Permissions int64
}

// Member is the bot's view of an acting guild member. Permissions is
// the member's resolved guild-level permission set.
type Member struct {
	ID          string
	DisplayName string
	RoleIDs     []string
	Permissions int64
}

// Button describes an interactive control attached to a message.
type Button struct {
	Label    string
	CustomID string
	Danger   bool
}

// ChannelCreate carries everything needed to create a ticket channel.
type ChannelCreate struct {
	Name       string
	ParentID   string
	Topic      string
	Overwrites []policy.Overwrite
}

// Platform is the slice of the hosting platform's channel-management
// API the lifecycle manager depends on.
type Platform interface {
	GuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	GuildRoles(ctx context.Context, guildID string) ([]Role, error)
	ChannelExists(ctx context.Context, channelID string) (bool, error)
	CreateChannel(ctx context.Context, guildID string, req ChannelCreate) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	SetChannelOverwrites(ctx context.Context, channelID string, overwrites []policy.Overwrite) error
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	SendMessageWithButton(ctx context.Context, channelID, content string, button Button) (string, error)
}
