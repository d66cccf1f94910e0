package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
)

func TestMessages_PrivateCanonicalKey(t *testing.T) {
	store := domain.NewStore()
	svc := NewMessageService(store, zerolog.Nop())

	svc.AppendPrivate("id-a", "bob", "alice", "hi")
	svc.AppendPrivate("id-b", "alice", "bob", "hello")

	// Both directions land in the same conversation, in insertion order.
	msgs := svc.ListPrivate("alice", "bob")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[1].Content != "hello" {
		t.Fatalf("messages out of order: %q, %q", msgs[0].Content, msgs[1].Content)
	}
	if got := svc.ListPrivate("bob", "alice"); len(got) != 2 {
		t.Fatalf("reversed lookup must see the same conversation")
	}
}

func TestMessages_ConversationIsolation(t *testing.T) {
	store := domain.NewStore()
	svc := NewMessageService(store, zerolog.Nop())

	// Separator-looking characters in usernames must not let one pair's
	// conversation leak into another's.
	svc.AppendPrivate("id-a", "abc", "de|fgh", "secret")

	if got := svc.ListPrivate("abc|de", "fgh"); len(got) != 0 {
		t.Fatalf("unrelated pair must see no messages, got %d", len(got))
	}
	if got := svc.ListPrivate("abc", "de|fgh"); len(got) != 1 {
		t.Fatalf("the sending pair must see its message, got %d", len(got))
	}
}

func TestMessages_AbsentConversationIsEmpty(t *testing.T) {
	svc := NewMessageService(domain.NewStore(), zerolog.Nop())
	if got := svc.ListPrivate("x", "y"); len(got) != 0 {
		t.Fatalf("absent private conversation must be empty")
	}
	if got := svc.ListGroup("nope"); len(got) != 0 {
		t.Fatalf("absent group conversation must be empty")
	}
}

func TestMessages_GroupAppendAndDelete(t *testing.T) {
	svc := NewMessageService(domain.NewStore(), zerolog.Nop())

	m1 := svc.AppendGroup("sender", "g1", "first")
	m2 := svc.AppendGroup("sender", "g1", "second")
	if m1.ID == m2.ID {
		t.Fatalf("message identifiers must be unique")
	}

	if err := svc.DeleteGroupMessage("g1", m1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left := svc.ListGroup("g1")
	if len(left) != 1 || left[0].ID != m2.ID {
		t.Fatalf("only the targeted message must be removed")
	}
	if err := svc.DeleteGroupMessage("g1", m1.ID); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("second delete: expected ErrMessageNotFound, got %v", err)
	}
}
