package domain

import (
	"sort"
	"time"
)

// Built-in role names. Every group carries all three from creation and none
// of them can be removed (no remove-role operation exists).
const (
	RoleAdmin       = "Admin"
	RoleParticipant = "Participant"
	RoleReader      = "Reader"
)

// DefaultRoles returns the permission table a freshly created group starts
// with: Admin holds the wildcard, Participant may send messages, Reader
// holds nothing.
func DefaultRoles() map[string]PermissionSet {
	return map[string]PermissionSet{
		RoleAdmin:       NewPermissionSet(PermissionAll),
		RoleParticipant: NewPermissionSet(PermissionSendMessage),
		RoleReader:      NewPermissionSet(),
	}
}

// Group is a named collection of members, each holding exactly one role from
// the group's role catalog.
type Group struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Roles     map[string]PermissionSet `json:"roles"`
	Members   map[string]string        `json:"members"` // user ID -> role name
	CreatedAt time.Time                `json:"created_at"`
}

// MemberRole returns the role held by userID, if any.
func (g *Group) MemberRole(userID string) (string, bool) {
	role, ok := g.Members[userID]
	return role, ok
}

// HasPermission reports whether userID's role grants p. Non-members never
// hold any permission.
func (g *Group) HasPermission(userID string, p Permission) bool {
	role, ok := g.Members[userID]
	if !ok {
		return false
	}
	perms, ok := g.Roles[role]
	if !ok {
		return false
	}
	return perms.Contains(p)
}

// IsAdmin reports whether userID holds the built-in Admin role. The check is
// by role name: a custom role granted the wildcard permission does not count.
func (g *Group) IsAdmin(userID string) bool {
	return g.Members[userID] == RoleAdmin
}

// RoleNames returns the role catalog in lexicographic order.
func (g *Group) RoleNames() []string {
	out := make([]string, 0, len(g.Roles))
	for name := range g.Roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
