// Package ticket implements the ticket lifecycle: opening a private
// per-requester channel, deduplicating concurrent opens, staff-gated
// closing, and durable tracking that survives restarts.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/domain"
	"github.com/creatorhub/ticket-bot/internal/events"
	"github.com/creatorhub/ticket-bot/internal/platform"
	"github.com/creatorhub/ticket-bot/internal/policy"
	"github.com/creatorhub/ticket-bot/internal/repository"
	"github.com/creatorhub/ticket-bot/internal/state"
	"github.com/creatorhub/ticket-bot/pkg/util"
)

// Custom IDs of the interactive controls the manager attaches to messages.
const (
	CustomIDOpenTicket  = "open-ticket"
	CustomIDCloseTicket = "close-ticket"
)

// Config controls lifecycle behavior.
type Config struct {
	BotUserID        string
	CategoryID       string
	CategoryName     string
	PanelChannelID   string
	PanelChannelName string
	PanelMessage     string
	IntroMessage     string
	StaffRoleIDs     []string
	DeleteDelay      time.Duration
	AutoDelete       bool
}

// Dependencies bundles collaborators for the manager. History and
// Dispatcher are optional.
type Dependencies struct {
	Store      state.Store
	Platform   platform.Platform
	History    repository.TicketHistoryRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// Manager orchestrates open/close transitions. A single mutex guards
// every load-check-mutate-save sequence so concurrent opens from one
// requester cannot both pass the dedup check.
type Manager struct {
	mu         sync.Mutex
	cfg        Config
	store      state.Store
	platform   platform.Platform
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager constructs the manager.
func NewManager(cfg Config, deps Dependencies) *Manager {
	return &Manager{
		cfg:        cfg,
		store:      deps.Store,
		platform:   deps.Platform,
		history:    deps.History,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		stopCh:     make(chan struct{}),
	}
}

// CloseResult reports what Close did.
type CloseResult struct {
	RequesterID string
	Tracked     bool
	Deleting    bool
}

// SetupResult reports where the panel landed.
type SetupResult struct {
	ChannelID string
	MessageID string
}

// Open creates a private ticket channel for the requester, enforcing
// at most one open ticket per requester. A tracked channel that no
// longer exists on the platform counts as stale and is cleared.
func (m *Manager) Open(ctx context.Context, guildID string, requester domain.Requester) (*domain.Ticket, error) {
	categoryID, err := m.resolveCategory(ctx, guildID)
	if err != nil {
		return nil, err
	}

	// Role listing is only needed for the permissive fallback.
	var guildRoles []policy.Role
	if len(m.cfg.StaffRoleIDs) == 0 {
		roles, err := m.platform.GuildRoles(ctx, guildID)
		if err != nil {
			return nil, util.NewPlatformFailure("list roles", err)
		}
		guildRoles = make([]policy.Role, 0, len(roles))
		for _, role := range roles {
			guildRoles = append(guildRoles, policy.Role{ID: role.ID, Name: role.Name, Permissions: role.Permissions})
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.store.Load(ctx)
	if existing := st.OpenTicketsByRequester[requester.ID]; existing != "" {
		exists, err := m.platform.ChannelExists(ctx, existing)
		if err != nil {
			return nil, util.NewPlatformFailure("check existing ticket", err)
		}
		if exists {
			return nil, util.NewAlreadyOpen(existing)
		}
		delete(st.OpenTicketsByRequester, requester.ID)
		m.save(ctx, st)
		m.logger.Info("cleared stale ticket entry",
			zap.String("requester_id", requester.ID),
			zap.String("channel_id", existing))
	}

	overwrites := policy.ComputeOverwrites(guildID, requester.ID, m.cfg.BotUserID, m.cfg.StaffRoleIDs, guildRoles)
	name := DeriveChannelName(requester)

	ch, err := m.platform.CreateChannel(ctx, guildID, platform.ChannelCreate{
		Name:       name,
		ParentID:   categoryID,
		Topic:      "Support ticket for " + requester.DisplayName,
		Overwrites: overwrites,
	})
	if err != nil {
		if errors.Is(err, platform.ErrPermissionDenied) {
			return nil, util.NewMissingPermissions(err)
		}
		return nil, util.NewPlatformFailure("create ticket channel", err)
	}

	st.OpenTicketsByRequester[requester.ID] = ch.ID
	m.save(ctx, st)

	tkt := &domain.Ticket{
		ReferenceKey: newReferenceKey(),
		ChannelID:    ch.ID,
		ChannelName:  ch.Name,
		RequesterID:  requester.ID,
		Status:       domain.TicketStatusOpen,
		CreatedAt:    time.Now(),
	}

	intro := fmt.Sprintf("Hey <@%s>!\n\n%s\n\nReference: %s", requester.ID, m.cfg.IntroMessage, tkt.ReferenceKey)
	if _, err := m.platform.SendMessageWithButton(ctx, ch.ID, intro, platform.Button{
		Label:    "Close Ticket",
		CustomID: CustomIDCloseTicket,
		Danger:   true,
	}); err != nil {
		// ticket stays open without its intro message
		m.logger.Warn("failed to post ticket intro",
			zap.String("channel_id", ch.ID), zap.Error(err))
	}

	m.recordHistory(ctx, domain.TicketHistory{
		ReferenceKey: tkt.ReferenceKey,
		GuildID:      guildID,
		RequesterID:  requester.ID,
		ChannelID:    ch.ID,
		Action:       domain.HistoryActionOpened,
		ActorID:      requester.ID,
	})
	m.publishEvent(ctx, events.Event{
		Type:    events.EventTicketOpened,
		GuildID: guildID,
		Payload: events.TicketOpenedPayload{
			ReferenceKey:  tkt.ReferenceKey,
			RequesterID:   requester.ID,
			RequesterName: requester.DisplayName,
			ChannelID:     ch.ID,
			ChannelName:   ch.Name,
		},
	})

	m.logger.Info("ticket opened",
		zap.String("requester_id", requester.ID),
		zap.String("channel_id", ch.ID),
		zap.String("channel_name", ch.Name))
	return tkt, nil
}

// Close removes the channel's tracking entry and, per configuration,
// deletes the channel after a grace delay or archives it in place. The
// staff predicate runs before any mutation. Closing an untracked
// channel is tolerated: the control only exists in ticket channels, so
// the close effect still applies.
func (m *Manager) Close(ctx context.Context, guildID string, actor platform.Member, channelID string) (*CloseResult, error) {
	if !IsStaff(actor, m.cfg.StaffRoleIDs) {
		return nil, util.NewNotAuthorized("Only staff members can close tickets.")
	}

	m.mu.Lock()
	st := m.store.Load(ctx)
	requesterID := ""
	for rid, cid := range st.OpenTicketsByRequester {
		if cid == channelID {
			requesterID = rid
			break
		}
	}
	tracked := requesterID != ""
	if tracked {
		delete(st.OpenTicketsByRequester, requesterID)
		m.save(ctx, st)
	}
	m.mu.Unlock()

	m.recordHistory(ctx, domain.TicketHistory{
		GuildID:     guildID,
		RequesterID: requesterID,
		ChannelID:   channelID,
		Action:      domain.HistoryActionClosed,
		ActorID:     actor.ID,
	})
	m.publishEvent(ctx, events.Event{
		Type:    events.EventTicketClosed,
		GuildID: guildID,
		Payload: events.TicketClosedPayload{
			RequesterID: requesterID,
			ChannelID:   channelID,
			ClosedByID:  actor.ID,
			ClosedBy:    actor.DisplayName,
			AutoDelete:  m.cfg.AutoDelete,
		},
	})

	notice := fmt.Sprintf("Ticket closed by %s. This channel is now archived.", actor.DisplayName)
	if m.cfg.AutoDelete {
		notice = fmt.Sprintf("Ticket closed by %s. This channel will be removed shortly.", actor.DisplayName)
	}
	if _, err := m.platform.SendMessage(ctx, channelID, notice); err != nil {
		m.logger.Warn("failed to post close notice",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	if m.cfg.AutoDelete {
		m.scheduleDelete(channelID)
	} else if err := m.platform.SetChannelOverwrites(ctx, channelID,
		[]policy.Overwrite{policy.ArchiveOverwrite(guildID)}); err != nil {
		m.logger.Warn("failed to archive closed channel",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	m.logger.Info("ticket closed",
		zap.String("channel_id", channelID),
		zap.String("requester_id", requesterID),
		zap.String("closed_by", actor.ID),
		zap.Bool("tracked", tracked))
	return &CloseResult{RequesterID: requesterID, Tracked: tracked, Deleting: m.cfg.AutoDelete}, nil
}

// Setup posts the panel message with the open control into the
// configured instructions channel and records its identifier,
// overwriting any previous panel.
func (m *Manager) Setup(ctx context.Context, guildID string, actor platform.Member) (*SetupResult, error) {
	if !CanManageGuild(actor) {
		return nil, util.NewNotAuthorized("Only members who manage this server can deploy the panel.")
	}

	channelID, err := m.resolvePanelChannel(ctx, guildID)
	if err != nil {
		return nil, err
	}

	messageID, err := m.platform.SendMessageWithButton(ctx, channelID, m.cfg.PanelMessage, platform.Button{
		Label:    "Open Ticket",
		CustomID: CustomIDOpenTicket,
	})
	if err != nil {
		if errors.Is(err, platform.ErrPermissionDenied) {
			return nil, util.NewMissingPermissions(err)
		}
		return nil, util.NewPlatformFailure("post panel message", err)
	}

	m.mu.Lock()
	st := m.store.Load(ctx)
	st.PanelMessageID = messageID
	m.save(ctx, st)
	m.mu.Unlock()

	m.publishEvent(ctx, events.Event{
		Type:    events.EventPanelDeployed,
		GuildID: guildID,
		Payload: events.PanelDeployedPayload{
			ChannelID: channelID,
			MessageID: messageID,
			ActorID:   actor.ID,
		},
	})

	m.logger.Info("panel deployed",
		zap.String("channel_id", channelID),
		zap.String("message_id", messageID))
	return &SetupResult{ChannelID: channelID, MessageID: messageID}, nil
}

// Snapshot returns the current persisted state for the ops surface.
func (m *Manager) Snapshot(ctx context.Context) domain.PersistedState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load(ctx)
}

// Stop cancels pending delayed deletions and waits for them to settle.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

// resolveCategory finds the ticket category by configured ID, then by
// name. Two-step by design: explicit configuration wins, the name
// lookup covers recreated categories.
func (m *Manager) resolveCategory(ctx context.Context, guildID string) (string, error) {
	channels, err := m.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return "", util.NewPlatformFailure("list channels", err)
	}
	if m.cfg.CategoryID != "" {
		for _, ch := range channels {
			if ch.Type == platform.ChannelTypeCategory && ch.ID == m.cfg.CategoryID {
				return ch.ID, nil
			}
		}
	}
	if m.cfg.CategoryName != "" {
		for _, ch := range channels {
			if ch.Type == platform.ChannelTypeCategory && strings.EqualFold(ch.Name, m.cfg.CategoryName) {
				return ch.ID, nil
			}
		}
	}
	return "", util.NewCategoryNotFound(firstNonEmpty(m.cfg.CategoryID, m.cfg.CategoryName))
}

func (m *Manager) resolvePanelChannel(ctx context.Context, guildID string) (string, error) {
	channels, err := m.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return "", util.NewPlatformFailure("list channels", err)
	}
	if m.cfg.PanelChannelID != "" {
		for _, ch := range channels {
			if ch.Type == platform.ChannelTypeText && ch.ID == m.cfg.PanelChannelID {
				return ch.ID, nil
			}
		}
	}
	if m.cfg.PanelChannelName != "" {
		for _, ch := range channels {
			if ch.Type == platform.ChannelTypeText && strings.EqualFold(ch.Name, m.cfg.PanelChannelName) {
				return ch.ID, nil
			}
		}
	}
	return "", util.NewChannelNotFound(firstNonEmpty(m.cfg.PanelChannelID, m.cfg.PanelChannelName))
}

// save persists the state, logging and swallowing failures: an
// in-memory mutation that fails to persist still counts as applied.
func (m *Manager) save(ctx context.Context, st domain.PersistedState) {
	if err := m.store.Save(ctx, st); err != nil {
		m.logger.Error("failed to persist state", zap.Error(err))
	}
}

func (m *Manager) scheduleDelete(channelID string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		timer := time.NewTimer(m.cfg.DeleteDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-m.stopCh:
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := m.platform.DeleteChannel(ctx, channelID)
		if err != nil && !errors.Is(err, platform.ErrNotFound) {
			m.logger.Warn("failed to delete closed ticket channel",
				zap.String("channel_id", channelID), zap.Error(err))
		}
	}()
}

func (m *Manager) recordHistory(ctx context.Context, entry domain.TicketHistory) {
	if m.history == nil {
		return
	}
	if err := m.history.Create(ctx, &entry); err != nil {
		m.logger.Warn("failed to record ticket history", zap.Error(err))
	}
}

func (m *Manager) publishEvent(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}

func newReferenceKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
