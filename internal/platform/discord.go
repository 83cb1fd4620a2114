package platform

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/creatorhub/ticket-bot/internal/policy"
)

// Discord implements Platform on top of a discordgo session.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps an established session.
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) GuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	channels, err := d.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, convertChannel(ch))
	}
	return out, nil
}

func (d *Discord) GuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	roles, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]Role, 0, len(roles))
	for _, role := range roles {
		out = append(out, Role{ID: role.ID, Name: role.Name, Permissions: role.Permissions})
	}
	return out, nil
}

func (d *Discord) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	_, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	mapped := mapError(err)
	if errors.Is(mapped, ErrNotFound) {
		return false, nil
	}
	return false, mapped
}

func (d *Discord) CreateChannel(ctx context.Context, guildID string, req ChannelCreate) (*Channel, error) {
	data := discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: convertOverwrites(req.Overwrites),
	}
	ch, err := d.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	converted := convertChannel(ch)
	return &converted, nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (d *Discord) SetChannelOverwrites(ctx context.Context, channelID string, overwrites []policy.Overwrite) error {
	for _, ow := range overwrites {
		err := d.session.ChannelPermissionSet(channelID, ow.Principal.ID,
			convertPrincipalType(ow.Principal.Type), ow.Allow, ow.Deny, discordgo.WithContext(ctx))
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return msg.ID, nil
}

func (d *Discord) SendMessageWithButton(ctx context.Context, channelID, content string, button Button) (string, error) {
	style := discordgo.PrimaryButton
	if button.Danger {
		style = discordgo.DangerButton
	}
	msg, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    button.Label,
						Style:    style,
						CustomID: button.CustomID,
					},
				},
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return msg.ID, nil
}

func convertChannel(ch *discordgo.Channel) Channel {
	out := Channel{ID: ch.ID, Name: ch.Name, ParentID: ch.ParentID, Type: ChannelTypeOther}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText:
		out.Type = ChannelTypeText
	case discordgo.ChannelTypeGuildCategory:
		out.Type = ChannelTypeCategory
	}
	return out
}

func convertOverwrites(overwrites []policy.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for _, ow := range overwrites {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.Principal.ID,
			Type:  convertPrincipalType(ow.Principal.Type),
			Allow: ow.Allow,
			Deny:  ow.Deny,
		})
	}
	return out
}

func convertPrincipalType(t policy.PrincipalType) discordgo.PermissionOverwriteType {
	if t == policy.PrincipalMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

// mapError folds discordgo REST errors into the sentinel taxonomy.
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return ErrPermissionDenied
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownMessage:
			return ErrNotFound
		}
	}
	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return ErrPermissionDenied
		case http.StatusNotFound:
			return ErrNotFound
		}
	}
	return err
}
