package ticket

import (
	"strings"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

const (
	channelNamePrefix = "pay-"
	baseNameMaxLen    = 20
	suffixDigits      = 4
	fallbackBaseName  = "ticket"
)

// DeriveChannelName derives a platform-legal channel name from a
// requester: lowercased alphanumeric-hyphen base from the display name,
// bounded in length, with a short numeric suffix from the requester ID
// to keep similarly-named requesters apart. Deterministic.
func DeriveChannelName(r domain.Requester) string {
	base := sanitizeBase(r.DisplayName)
	if base == "" {
		base = fallbackBaseName
	}
	return channelNamePrefix + base + "-" + idSuffix(r.ID)
}

func sanitizeBase(displayName string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(displayName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= baseNameMaxLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// idSuffix takes the last few digits of the requester's numeric ID,
// padding when the ID carries fewer.
func idSuffix(id string) string {
	digits := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		if id[i] >= '0' && id[i] <= '9' {
			digits = append(digits, id[i])
		}
	}
	if len(digits) > suffixDigits {
		digits = digits[len(digits)-suffixDigits:]
	}
	for len(digits) < suffixDigits {
		digits = append([]byte{'0'}, digits...)
	}
	return string(digits)
}
