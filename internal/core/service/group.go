package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
)

// GroupService owns group membership, the role catalog, and per-role
// permission sets. It is deliberately permission-agnostic: deciding who may
// call these operations is the facade's job.
type GroupService struct {
	store *domain.Store
	log   zerolog.Logger
}

func NewGroupService(store *domain.Store, log zerolog.Logger) *GroupService {
	return &GroupService{store: store, log: log}
}

// Create allocates a group seeded with the built-in roles and their default
// permission sets. The creator joins as Admin when the username resolves to
// a known user.
func (s *GroupService) Create(name, creatorUsername string) string {
	g := &domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Roles:     domain.DefaultRoles(),
		Members:   make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}
	if creator, ok := s.store.Users[creatorUsername]; ok {
		g.Members[creator.ID] = domain.RoleAdmin
	}
	s.store.Groups[g.ID] = g
	s.log.Info().Str("group_id", g.ID).Str("name", name).Str("creator", creatorUsername).Msg("group created")
	return g.ID
}

// AddRole inserts a role into the catalog with an empty permission set. A
// role that already exists keeps its permissions untouched.
func (s *GroupService) AddRole(groupID, roleName string) error {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return domain.ErrUnknownGroup
	}
	if _, exists := g.Roles[roleName]; !exists {
		g.Roles[roleName] = domain.NewPermissionSet()
	}
	return nil
}

// SetRolePermissions replaces a role's permission set with a defensive copy
// of perms. The role must already exist in the catalog.
func (s *GroupService) SetRolePermissions(groupID, roleName string, perms domain.PermissionSet) error {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return domain.ErrUnknownGroup
	}
	if _, exists := g.Roles[roleName]; !exists {
		return domain.ErrUnknownRole
	}
	g.Roles[roleName] = perms.Clone()
	return nil
}

// AddMember inserts or overwrites the membership entry. The role must exist
// in the catalog.
func (s *GroupService) AddMember(groupID, userID, roleName string) error {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return domain.ErrUnknownGroup
	}
	if _, exists := g.Roles[roleName]; !exists {
		return domain.ErrUnknownRole
	}
	g.Members[userID] = roleName
	return nil
}

// SetMemberRole overwrites an existing or absent membership entry with
// roleName, which must exist in the catalog.
func (s *GroupService) SetMemberRole(groupID, userID, roleName string) error {
	return s.AddMember(groupID, userID, roleName)
}

// RemoveMember drops the membership entry; absent members are a no-op.
func (s *GroupService) RemoveMember(groupID, userID string) error {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return domain.ErrUnknownGroup
	}
	delete(g.Members, userID)
	return nil
}

// Rename updates the group's display name. The identifier never changes.
func (s *GroupService) Rename(groupID, name string) error {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return domain.ErrUnknownGroup
	}
	g.Name = name
	return nil
}

// HasPermission reports whether userID's role in the group grants p. An
// unknown group or absent membership is simply false.
func (s *GroupService) HasPermission(groupID, userID string, p domain.Permission) bool {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return false
	}
	return g.HasPermission(userID, p)
}

// IsAdmin reports whether userID holds the built-in Admin role.
func (s *GroupService) IsAdmin(groupID, userID string) bool {
	g, ok := s.store.Groups[groupID]
	if !ok {
		return false
	}
	return g.IsAdmin(userID)
}

// Delete removes the group together with its entire message history.
func (s *GroupService) Delete(groupID string) error {
	if _, ok := s.store.Groups[groupID]; !ok {
		return domain.ErrUnknownGroup
	}
	delete(s.store.Groups, groupID)
	delete(s.store.GroupMessages, groupID)
	s.log.Info().Str("group_id", groupID).Msg("group deleted")
	return nil
}

// Get returns the group record.
func (s *GroupService) Get(groupID string) (*domain.Group, bool) {
	g, ok := s.store.Groups[groupID]
	return g, ok
}
