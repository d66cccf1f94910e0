package domain

import (
	"strconv"
	"time"
)

// Message is an immutable ledger entry. Equality is by ID only.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PairKey returns the canonical conversation key for a private exchange
// between two usernames: the names joined in lexicographic order, so both
// directions map to the same ledger. The first name is length-prefixed so
// the split point stays unambiguous whatever characters a username holds.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return strconv.Itoa(len(a)) + ":" + a + ":" + b
}
