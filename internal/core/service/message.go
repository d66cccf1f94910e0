package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
)

// MessageService keeps the append-only conversation ledgers.
type MessageService struct {
	store *domain.Store
	log   zerolog.Logger
}

func NewMessageService(store *domain.Store, log zerolog.Logger) *MessageService {
	return &MessageService{store: store, log: log}
}

func newMessage(senderID, content string) *domain.Message {
	return &domain.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// AppendPrivate records a private message under the canonical pair key for
// the two usernames.
func (s *MessageService) AppendPrivate(senderID, fromUsername, toUsername, content string) *domain.Message {
	key := domain.PairKey(fromUsername, toUsername)
	m := newMessage(senderID, content)
	s.store.PrivateMessages[key] = append(s.store.PrivateMessages[key], m)
	return m
}

// AppendGroup records a message on the group's ledger.
func (s *MessageService) AppendGroup(senderID, groupID, content string) *domain.Message {
	m := newMessage(senderID, content)
	s.store.GroupMessages[groupID] = append(s.store.GroupMessages[groupID], m)
	return m
}

// ListPrivate returns the insertion-ordered private conversation between a
// and b. An absent conversation is an empty sequence, never an error.
func (s *MessageService) ListPrivate(a, b string) []*domain.Message {
	return s.store.PrivateMessages[domain.PairKey(a, b)]
}

// ListGroup returns the group's insertion-ordered ledger.
func (s *MessageService) ListGroup(groupID string) []*domain.Message {
	return s.store.GroupMessages[groupID]
}

// DeleteGroupMessage removes the message with messageID from the group's
// ledger. Private messages have no delete operation.
func (s *MessageService) DeleteGroupMessage(groupID, messageID string) error {
	msgs := s.store.GroupMessages[groupID]
	for i, m := range msgs {
		if m.ID == messageID {
			s.store.GroupMessages[groupID] = append(msgs[:i:i], msgs[i+1:]...)
			return nil
		}
	}
	return domain.ErrMessageNotFound
}
