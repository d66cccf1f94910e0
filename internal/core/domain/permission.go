package domain

import "sort"

// Permission identifies a single capability a group role may grant.
type Permission string

const (
	// PermissionAll is the universal wildcard: a role holding it passes
	// every permission check.
	PermissionAll Permission = "*"

	PermissionSendMessage    Permission = "GROUP_SEND_MESSAGE"
	PermissionDeleteMessages Permission = "GROUP_DELETE_MESSAGES"
	PermissionDeleteGroup    Permission = "GROUP_DELETE_GROUP"
	PermissionAddMember      Permission = "GROUP_ADD_MEMBER"
	PermissionRemoveMember   Permission = "GROUP_REMOVE_MEMBER"
)

// PermissionSet is the bundle of capabilities attached to a role.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Contains reports whether the set grants p, either exactly or through the
// universal wildcard.
func (s PermissionSet) Contains(p Permission) bool {
	if _, ok := s[PermissionAll]; ok {
		return true
	}
	_, ok := s[p]
	return ok
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// List returns the permissions in lexicographic order.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
