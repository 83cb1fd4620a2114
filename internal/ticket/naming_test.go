package ticket

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

var legalChannelName = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestDeriveChannelName(t *testing.T) {
	tests := []struct {
		name      string
		requester domain.Requester
		want      string
	}{
		{
			name:      "simple name",
			requester: domain.Requester{ID: "123456781234", DisplayName: "alice"},
			want:      "pay-alice-1234",
		},
		{
			name:      "uppercase and spaces",
			requester: domain.Requester{ID: "999888777666", DisplayName: "Alice The Creator"},
			want:      "pay-alice-the-creator-7666",
		},
		{
			name:      "symbols stripped",
			requester: domain.Requester{ID: "42", DisplayName: "al!ce#2024"},
			want:      "pay-alce2024-0042",
		},
		{
			name:      "empty display name",
			requester: domain.Requester{ID: "5551234", DisplayName: ""},
			want:      "pay-ticket-1234",
		},
		{
			name:      "fully non-alphanumeric",
			requester: domain.Requester{ID: "777000", DisplayName: "✨🌈✨"},
			want:      "pay-ticket-7000",
		},
		{
			name:      "underscores become hyphens",
			requester: domain.Requester{ID: "10", DisplayName: "cool_creator_99"},
			want:      "pay-cool-creator-99-0010",
		},
		{
			name:      "non-numeric id",
			requester: domain.Requester{ID: "abc", DisplayName: "bob"},
			want:      "pay-bob-0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveChannelName(tt.requester)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, legalChannelName, got)
		})
	}
}

func TestDeriveChannelNameDeterministic(t *testing.T) {
	r := domain.Requester{ID: "314159265358", DisplayName: "Some Member"}
	first := DeriveChannelName(r)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DeriveChannelName(r))
	}
}

func TestDeriveChannelNameBoundsLength(t *testing.T) {
	r := domain.Requester{
		ID:          "123456789012345678",
		DisplayName: "an-extremely-long-display-name-that-keeps-going-and-going",
	}
	got := DeriveChannelName(r)
	assert.LessOrEqual(t, len(got), len(channelNamePrefix)+baseNameMaxLen+1+suffixDigits)
	assert.Regexp(t, legalChannelName, got)
}
