package domain

import "sort"

// StringSet is a set of usernames.
type StringSet map[string]struct{}

func (s StringSet) Add(v string)      { s[v] = struct{}{} }
func (s StringSet) Remove(v string)   { delete(s, v) }
func (s StringSet) Has(v string) bool { _, ok := s[v]; return ok }

// Values returns the members in lexicographic order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Store is the aggregate root: every user, relationship, group, and message
// in the system. It is created empty on first run, loaded wholesale from a
// snapshot on later runs, and replaced wholesale when the snapshot file
// changes underneath the process.
//
// Friends, Incoming, and Outgoing are keyed by username and hold inverse
// views of the same edges: Outgoing[a].Has(b) iff Incoming[b].Has(a).
type Store struct {
	Users   map[string]*User  // username -> user
	UserIDs map[string]string // user ID -> username

	Friends  map[string]StringSet
	Incoming map[string]StringSet
	Outgoing map[string]StringSet

	Groups map[string]*Group // group ID -> group

	PrivateMessages map[string][]*Message // PairKey -> ordered messages
	GroupMessages   map[string][]*Message // group ID -> ordered messages
}

// NewStore returns an empty aggregate.
func NewStore() *Store {
	return &Store{
		Users:           make(map[string]*User),
		UserIDs:         make(map[string]string),
		Friends:         make(map[string]StringSet),
		Incoming:        make(map[string]StringSet),
		Outgoing:        make(map[string]StringSet),
		Groups:          make(map[string]*Group),
		PrivateMessages: make(map[string][]*Message),
		GroupMessages:   make(map[string][]*Message),
	}
}

// ReplaceWith swaps the aggregate's entire contents for other's. The Store
// pointer itself stays valid, so every component holding it observes the new
// state. Used by the reload-on-change guard; this is a full replace, never a
// merge.
func (s *Store) ReplaceWith(other *Store) {
	s.Users = other.Users
	s.UserIDs = other.UserIDs
	s.Friends = other.Friends
	s.Incoming = other.Incoming
	s.Outgoing = other.Outgoing
	s.Groups = other.Groups
	s.PrivateMessages = other.PrivateMessages
	s.GroupMessages = other.GroupMessages
}
