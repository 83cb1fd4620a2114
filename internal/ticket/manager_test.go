package ticket

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/domain"
	"github.com/creatorhub/ticket-bot/internal/platform"
	"github.com/creatorhub/ticket-bot/internal/policy"
	"github.com/creatorhub/ticket-bot/internal/state"
	"github.com/creatorhub/ticket-bot/pkg/util"
)

const (
	testGuildID  = "guild-1"
	testBotID    = "bot-1"
	testCategory = "cat-1"
)

// fakePlatform records every call so tests can assert on side effects.
type fakePlatform struct {
	mu            sync.Mutex
	channels      map[string]platform.Channel
	roles         []platform.Role
	createErr     error
	created       []platform.ChannelCreate
	deleted       []string
	messages      map[string][]string
	buttons       map[string][]platform.Button
	overwritesSet map[string][]policy.Overwrite
	nextID        int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: map[string]platform.Channel{
			testCategory: {ID: testCategory, Name: "Creator Tickets", Type: platform.ChannelTypeCategory},
			"panel-chan": {ID: "panel-chan", Name: "lets-get-started", Type: platform.ChannelTypeText},
		},
		messages:      map[string][]string{},
		buttons:       map[string][]platform.Button{},
		overwritesSet: map[string][]policy.Overwrite{},
	}
}

func (f *fakePlatform) GuildChannels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.Channel, 0, len(f.channels))
	for _, ch := range f.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (f *fakePlatform) GuildRoles(ctx context.Context, guildID string) ([]platform.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Role{}, f.roles...), nil
}

func (f *fakePlatform) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.channels[channelID]
	return ok, nil
}

func (f *fakePlatform) CreateChannel(ctx context.Context, guildID string, req platform.ChannelCreate) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	ch := platform.Channel{
		ID:       fmt.Sprintf("chan-%d", f.nextID),
		Name:     req.Name,
		ParentID: req.ParentID,
		Type:     platform.ChannelTypeText,
	}
	f.channels[ch.ID] = ch
	f.created = append(f.created, req)
	return &ch, nil
}

func (f *fakePlatform) DeleteChannel(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) SetChannelOverwrites(ctx context.Context, channelID string, overwrites []policy.Overwrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwritesSet[channelID] = overwrites
	return nil
}

func (f *fakePlatform) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages[channelID] = append(f.messages[channelID], content)
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakePlatform) SendMessageWithButton(ctx context.Context, channelID, content string, button platform.Button) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages[channelID] = append(f.messages[channelID], content)
	f.buttons[channelID] = append(f.buttons[channelID], button)
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakePlatform) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakePlatform) wasDeleted(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.deleted {
		if id == channelID {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T, fake *fakePlatform, mutate func(*Config)) (*Manager, state.Store) {
	t.Helper()
	store := state.NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	cfg := Config{
		BotUserID:        testBotID,
		CategoryID:       testCategory,
		CategoryName:     "Creator Tickets",
		PanelChannelName: "lets-get-started",
		PanelMessage:     "press the button",
		IntroMessage:     "welcome to your ticket",
		StaffRoleIDs:     []string{"staff-role"},
		DeleteDelay:      10 * time.Millisecond,
		AutoDelete:       true,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m := NewManager(cfg, Dependencies{
		Store:    store,
		Platform: fake,
		Logger:   zap.NewNop(),
	})
	t.Cleanup(m.Stop)
	return m, store
}

func staffMember() platform.Member {
	return platform.Member{ID: "staff-1", DisplayName: "Sam", RoleIDs: []string{"staff-role"}}
}

func requesterAlice() domain.Requester {
	return domain.Requester{ID: "111122223333", DisplayName: "Alice"}
}

func TestOpenCreatesTrackedChannel(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	tkt, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, tkt.Status)
	assert.Equal(t, "pay-alice-3333", tkt.ChannelName)

	require.Len(t, fake.created, 1)
	req := fake.created[0]
	assert.Equal(t, testCategory, req.ParentID)

	everyoneDenied := false
	requesterGranted := false
	for _, ow := range req.Overwrites {
		if ow.Principal.ID == testGuildID && ow.Deny&policy.PermViewChannel != 0 {
			everyoneDenied = true
		}
		if ow.Principal.ID == requesterAlice().ID && ow.Allow == policy.RequesterAllow {
			requesterGranted = true
		}
	}
	assert.True(t, everyoneDenied, "default principal must lose view access")
	assert.True(t, requesterGranted)

	st := store.Load(ctx)
	assert.Equal(t, tkt.ChannelID, st.OpenTicketsByRequester[requesterAlice().ID])

	require.Len(t, fake.buttons[tkt.ChannelID], 1)
	assert.Equal(t, CustomIDCloseTicket, fake.buttons[tkt.ChannelID][0].CustomID)
}

func TestOpenRejectsSecondTicket(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, _ := newTestManager(t, fake, nil)

	first, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)

	_, err = m.Open(ctx, testGuildID, requesterAlice())
	require.Error(t, err)
	de := util.ToDomainError(err)
	assert.Equal(t, util.CodeAlreadyOpen, de.Code)
	assert.Equal(t, first.ChannelID, de.Details["channel_id"])
	assert.Equal(t, 1, fake.createdCount())
}

func TestOpenHealsStaleEntry(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	require.NoError(t, store.Save(ctx, domain.PersistedState{
		OpenTicketsByRequester: map[string]string{requesterAlice().ID: "vanished-chan"},
	}))

	tkt, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)
	assert.NotEqual(t, "vanished-chan", tkt.ChannelID)

	st := store.Load(ctx)
	assert.Equal(t, tkt.ChannelID, st.OpenTicketsByRequester[requesterAlice().ID])
}

func TestOpenCategoryNotFound(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	delete(fake.channels, testCategory)
	m, store := newTestManager(t, fake, func(cfg *Config) {
		cfg.CategoryID = "missing"
		cfg.CategoryName = "Nope"
	})

	_, err := m.Open(ctx, testGuildID, requesterAlice())
	require.Error(t, err)
	assert.Equal(t, util.CodeCategoryNotFound, util.ToDomainError(err).Code)
	assert.Zero(t, fake.createdCount())
	assert.Empty(t, store.Load(ctx).OpenTicketsByRequester)
}

func TestOpenPermissionDeniedLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	fake.createErr = platform.ErrPermissionDenied
	m, store := newTestManager(t, fake, nil)

	_, err := m.Open(ctx, testGuildID, requesterAlice())
	require.Error(t, err)
	assert.Equal(t, util.CodeMissingPermissions, util.ToDomainError(err).Code)
	assert.Empty(t, store.Load(ctx).OpenTicketsByRequester)
}

func TestOpenFallsBackToManagingRoles(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	fake.roles = []platform.Role{
		{ID: "admins", Permissions: policy.PermAdministrator},
		{ID: "members", Permissions: policy.PermSendMessages},
	}
	m, _ := newTestManager(t, fake, func(cfg *Config) {
		cfg.StaffRoleIDs = nil
	})

	_, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)

	require.Len(t, fake.created, 1)
	adminGranted := false
	for _, ow := range fake.created[0].Overwrites {
		assert.NotEqual(t, "members", ow.Principal.ID)
		if ow.Principal.ID == "admins" && ow.Allow == policy.StaffAllow {
			adminGranted = true
		}
	}
	assert.True(t, adminGranted)
}

func TestConcurrentOpensCreateOneTicket(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = m.Open(ctx, testGuildID, requesterAlice())
		}(n)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, util.CodeAlreadyOpen, util.ToDomainError(err).Code)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, fake.createdCount())
	assert.Len(t, store.Load(ctx).OpenTicketsByRequester, 1)
}

func TestCloseRequiresStaff(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	tkt, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)

	intruder := platform.Member{ID: "rando", DisplayName: "Rando"}
	_, err = m.Close(ctx, testGuildID, intruder, tkt.ChannelID)
	require.Error(t, err)
	assert.Equal(t, util.CodeNotAuthorized, util.ToDomainError(err).Code)

	st := store.Load(ctx)
	assert.Equal(t, tkt.ChannelID, st.OpenTicketsByRequester[requesterAlice().ID])
	assert.False(t, fake.wasDeleted(tkt.ChannelID))
}

func TestCloseRemovesEntryAndDeletesChannel(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	tkt, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)

	result, err := m.Close(ctx, testGuildID, staffMember(), tkt.ChannelID)
	require.NoError(t, err)
	assert.True(t, result.Tracked)
	assert.Equal(t, requesterAlice().ID, result.RequesterID)
	assert.Empty(t, store.Load(ctx).OpenTicketsByRequester)

	require.Eventually(t, func() bool {
		return fake.wasDeleted(tkt.ChannelID)
	}, time.Second, 5*time.Millisecond, "channel should be deleted after the grace delay")
}

func TestCloseUntrackedChannelIsHarmless(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, _ := newTestManager(t, fake, nil)

	result, err := m.Close(ctx, testGuildID, staffMember(), "panel-chan")
	require.NoError(t, err)
	assert.False(t, result.Tracked)
	assert.Empty(t, result.RequesterID)
}

func TestCloseArchivesWhenAutoDeleteDisabled(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, func(cfg *Config) {
		cfg.AutoDelete = false
	})

	tkt, err := m.Open(ctx, testGuildID, requesterAlice())
	require.NoError(t, err)

	result, err := m.Close(ctx, testGuildID, staffMember(), tkt.ChannelID)
	require.NoError(t, err)
	assert.False(t, result.Deleting)
	assert.Empty(t, store.Load(ctx).OpenTicketsByRequester)

	require.Len(t, fake.overwritesSet[tkt.ChannelID], 1)
	archived := fake.overwritesSet[tkt.ChannelID][0]
	assert.NotZero(t, archived.Deny&policy.PermViewChannel)
	assert.False(t, fake.wasDeleted(tkt.ChannelID))
}

func TestSetupRecordsPanelMessage(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	admin := platform.Member{ID: "admin-1", DisplayName: "Ada", Permissions: policy.PermManageGuild}
	result, err := m.Setup(ctx, testGuildID, admin)
	require.NoError(t, err)
	assert.Equal(t, "panel-chan", result.ChannelID)
	assert.Equal(t, result.MessageID, store.Load(ctx).PanelMessageID)

	require.Len(t, fake.buttons["panel-chan"], 1)
	assert.Equal(t, CustomIDOpenTicket, fake.buttons["panel-chan"][0].CustomID)
}

func TestSetupRequiresGuildManagement(t *testing.T) {
	ctx := context.Background()
	fake := newFakePlatform()
	m, store := newTestManager(t, fake, nil)

	_, err := m.Setup(ctx, testGuildID, staffMember())
	require.Error(t, err)
	assert.Equal(t, util.CodeNotAuthorized, util.ToDomainError(err).Code)
	assert.Empty(t, store.Load(ctx).PanelMessageID)
}

func TestStaffPredicate(t *testing.T) {
	tests := []struct {
		name   string
		member platform.Member
		roles  []string
		want   bool
	}{
		{"administrator", platform.Member{Permissions: policy.PermAdministrator}, nil, true},
		{"channel manager", platform.Member{Permissions: policy.PermManageChannels}, nil, true},
		{"configured role", platform.Member{RoleIDs: []string{"staff-role"}}, []string{"staff-role"}, true},
		{"plain member", platform.Member{RoleIDs: []string{"members"}}, []string{"staff-role"}, false},
		{"no roles configured", platform.Member{RoleIDs: []string{"anything"}}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStaff(tt.member, tt.roles))
		})
	}
}
