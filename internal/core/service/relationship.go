package service

import (
	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
)

// RelationshipService manages friendship edges and the pending-request
// handshake between them. It never creates relationship entries for
// unregistered usernames.
type RelationshipService struct {
	store *domain.Store
	log   zerolog.Logger
}

func NewRelationshipService(store *domain.Store, log zerolog.Logger) *RelationshipService {
	return &RelationshipService{store: store, log: log}
}

func (s *RelationshipService) known(username string) bool {
	_, ok := s.store.Users[username]
	return ok
}

// SendRequest records a pending request from -> to. It refuses duplicates in
// either direction and requests between users who are already friends.
func (s *RelationshipService) SendRequest(from, to string) error {
	if !s.known(from) || !s.known(to) {
		return domain.ErrUnknownUser
	}
	if from == to {
		return domain.ErrSelfRequest
	}
	if s.store.Friends[from].Has(to) {
		return domain.ErrAlreadyFriends
	}
	if s.store.Outgoing[from].Has(to) || s.store.Outgoing[to].Has(from) {
		return domain.ErrRequestPending
	}

	s.store.Outgoing[from].Add(to)
	s.store.Incoming[to].Add(from)
	s.log.Debug().Str("from", from).Str("to", to).Msg("friend request sent")
	return nil
}

// AcceptRequest turns a pending incoming request into a symmetric
// friendship. Both inverse views of the pending edge are cleared first.
func (s *RelationshipService) AcceptRequest(who, from string) error {
	if !s.known(who) || !s.known(from) {
		return domain.ErrUnknownUser
	}
	if !s.store.Incoming[who].Has(from) {
		return domain.ErrNoPendingRequest
	}

	s.store.Incoming[who].Remove(from)
	s.store.Outgoing[from].Remove(who)
	s.store.Friends[who].Add(from)
	s.store.Friends[from].Add(who)
	s.log.Info().Str("who", who).Str("from", from).Msg("friend request accepted")
	return nil
}

// RejectRequest drops a pending incoming request without creating a
// friendship.
func (s *RelationshipService) RejectRequest(who, from string) error {
	if !s.known(who) || !s.known(from) {
		return domain.ErrUnknownUser
	}
	if !s.store.Incoming[who].Has(from) {
		return domain.ErrNoPendingRequest
	}
	s.store.Incoming[who].Remove(from)
	s.store.Outgoing[from].Remove(who)
	return nil
}

// CancelOutgoing withdraws a request initiated by from. It succeeds if
// either side of the edge was present; a one-sided edge is an invariant
// violation worth flagging, so it gets repaired and logged.
func (s *RelationshipService) CancelOutgoing(from, to string) error {
	if !s.known(from) || !s.known(to) {
		return domain.ErrUnknownUser
	}
	hadOutgoing := s.store.Outgoing[from].Has(to)
	hadIncoming := s.store.Incoming[to].Has(from)
	if !hadOutgoing && !hadIncoming {
		return domain.ErrNoPendingRequest
	}
	if hadOutgoing != hadIncoming {
		s.log.Warn().Str("from", from).Str("to", to).
			Bool("outgoing", hadOutgoing).Bool("incoming", hadIncoming).
			Msg("repairing one-sided pending edge")
	}
	s.store.Outgoing[from].Remove(to)
	s.store.Incoming[to].Remove(from)
	return nil
}

// AreFriends reports whether a symmetric friendship edge exists.
func (s *RelationshipService) AreFriends(a, b string) bool {
	return s.store.Friends[a].Has(b)
}

// RemoveFriend deletes the edge in both directions; it succeeds if either
// side held it.
func (s *RelationshipService) RemoveFriend(a, b string) error {
	if !s.known(a) || !s.known(b) {
		return domain.ErrUnknownUser
	}
	had := s.store.Friends[a].Has(b) || s.store.Friends[b].Has(a)
	if !had {
		return domain.ErrNotFriends
	}
	s.store.Friends[a].Remove(b)
	s.store.Friends[b].Remove(a)
	return nil
}

// Friends lists username's friends in lexicographic order.
func (s *RelationshipService) Friends(username string) ([]string, error) {
	if !s.known(username) {
		return nil, domain.ErrUnknownUser
	}
	return s.store.Friends[username].Values(), nil
}

// IncomingRequests lists usernames awaiting username's answer.
func (s *RelationshipService) IncomingRequests(username string) ([]string, error) {
	if !s.known(username) {
		return nil, domain.ErrUnknownUser
	}
	return s.store.Incoming[username].Values(), nil
}

// OutgoingRequests lists usernames username has asked and not yet heard from.
func (s *RelationshipService) OutgoingRequests(username string) ([]string, error) {
	if !s.known(username) {
		return nil, domain.ErrUnknownUser
	}
	return s.store.Outgoing[username].Values(), nil
}
