package domain

// PersistedState is the durable aggregate owned by the state store:
// the panel message identifier plus the requester to open-channel map.
// IDs are platform snowflakes carried as strings; the empty string means
// the panel has not been deployed yet.
type PersistedState struct {
	PanelMessageID         string            `json:"panel_message_id"`
	OpenTicketsByRequester map[string]string `json:"open_tickets_by_requester"`
}

// EmptyState returns a zero-valued state with an initialized map.
func EmptyState() PersistedState {
	return PersistedState{OpenTicketsByRequester: map[string]string{}}
}

// Normalize repairs a state decoded from partially-shaped data.
func (s *PersistedState) Normalize() {
	if s.OpenTicketsByRequester == nil {
		s.OpenTicketsByRequester = map[string]string{}
	}
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s PersistedState) Clone() PersistedState {
	out := PersistedState{
		PanelMessageID:         s.PanelMessageID,
		OpenTicketsByRequester: make(map[string]string, len(s.OpenTicketsByRequester)),
	}
	for requesterID, channelID := range s.OpenTicketsByRequester {
		out.OpenTicketsByRequester[requesterID] = channelID
	}
	return out
}
