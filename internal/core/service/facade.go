package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
	"github.com/quorumchat/quorum/internal/core/ports"
	"github.com/quorumchat/quorum/internal/metrics"
)

// Facade is the single entry point for every read and mutation. Each call
// follows the same shape:
//
//  1. Reload the aggregate if the snapshot file changed externally.
//  2. Structurally validate input.
//  3. Resolve the acting username; unknown actors are denied.
//  4. Check the operation's required permission (group operations), the
//     friendship edge (private messages), or Admin (role management).
//  5. Mutate.
//  6. Persist the whole aggregate; a failed save comes back as
//     domain.ErrSnapshotSave without rolling back the mutation.
//
// Every deny-class failure — bad input, missing permission, unknown
// user/group/role — surfaces as the single sentinel domain.ErrDenied so a
// caller cannot probe which check rejected it.
type Facade struct {
	store     *domain.Store
	identity  *IdentityService
	relations *RelationshipService
	groups    *GroupService
	messages  *MessageService
	snapshots ports.SnapshotGateway
	path      string
	watermark time.Time
	validate  *validator.Validate
	log       zerolog.Logger
}

// FacadeOptions carries the wiring the facade cannot derive itself.
type FacadeOptions struct {
	SnapshotPath string
	JWTSecret    string
	SessionTTL   time.Duration
}

// NewFacade builds the facade and its engines around one shared aggregate.
// The first operation loads the snapshot if one already exists on disk.
func NewFacade(store *domain.Store, snapshots ports.SnapshotGateway, hasher ports.PasswordHasher, opts FacadeOptions, log zerolog.Logger) *Facade {
	return &Facade{
		store:     store,
		identity:  NewIdentityService(store, hasher, opts.JWTSecret, opts.SessionTTL, log),
		relations: NewRelationshipService(store, log),
		groups:    NewGroupService(store, log),
		messages:  NewMessageService(store, log),
		snapshots: snapshots,
		path:      opts.SnapshotPath,
		validate:  validator.New(),
		log:       log,
	}
}

// refresh replaces the in-memory aggregate when the snapshot file's
// modification time has advanced past the watermark. Full replace, never a
// merge: unsaved in-memory changes since the last load are discarded. This
// is the documented last-writer-wins hazard of the snapshot protocol.
func (f *Facade) refresh() {
	mt, err := f.snapshots.ModTime(f.path)
	if err != nil {
		return
	}
	if !mt.After(f.watermark) {
		return
	}
	loaded, err := f.snapshots.Load(f.path)
	if err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("snapshot changed but reload failed, keeping in-memory state")
		return
	}
	f.store.ReplaceWith(loaded)
	f.watermark = mt
	metrics.SnapshotReloadsTotal.Inc()
	f.log.Info().Time("mod_time", mt).Msg("snapshot reloaded after external change")
}

func (f *Facade) persist() error {
	if err := f.snapshots.Save(f.store, f.path); err != nil {
		metrics.SnapshotSavesTotal.WithLabelValues("error").Inc()
		f.log.Error().Err(err).Str("path", f.path).Msg("snapshot save failed")
		return domain.ErrSnapshotSave
	}
	metrics.SnapshotSavesTotal.WithLabelValues("ok").Inc()
	if mt, err := f.snapshots.ModTime(f.path); err == nil {
		f.watermark = mt
	}
	return nil
}

// run wraps a mutation: reload guard, the mutation itself, then persistence.
func (f *Facade) run(op string, fn func() error) error {
	f.refresh()
	if err := fn(); err != nil {
		metrics.OperationsTotal.WithLabelValues(op, "denied").Inc()
		f.log.Debug().Str("op", op).Err(err).Msg("operation denied")
		return domain.ErrDenied
	}
	if err := f.persist(); err != nil {
		metrics.OperationsTotal.WithLabelValues(op, "save_failed").Inc()
		return err
	}
	metrics.OperationsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

// ── Identity ──

// Register creates a new user account.
func (f *Facade) Register(in ports.RegisterInput) error {
	return f.run("register", func() error {
		if err := f.validate.Struct(in); err != nil {
			return err
		}
		_, err := f.identity.Register(in.Username, in.Password)
		return err
	})
}

// Authenticate checks credentials and returns a session token. Read-only:
// nothing is persisted.
func (f *Facade) Authenticate(username, password string) (string, error) {
	f.refresh()
	token, err := f.identity.Authenticate(username, password)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("authenticate", "denied").Inc()
		return "", domain.ErrDenied
	}
	metrics.OperationsTotal.WithLabelValues("authenticate", "ok").Inc()
	return token, nil
}

// VerifySession resolves a session token to its username.
func (f *Facade) VerifySession(token string) (string, error) {
	f.refresh()
	username, err := f.identity.VerifySession(token)
	if err != nil {
		return "", domain.ErrDenied
	}
	return username, nil
}

// ResolveUser looks up a user record by username.
func (f *Facade) ResolveUser(username string) (*domain.User, bool) {
	f.refresh()
	return f.identity.ResolveUser(username)
}

// ResolveUsername maps a user ID back to its username.
func (f *Facade) ResolveUsername(userID string) (string, bool) {
	f.refresh()
	return f.identity.ResolveUsername(userID)
}

// ── Relationships ──

// SendFriendRequest records a pending request from -> to.
func (f *Facade) SendFriendRequest(from, to string) error {
	return f.run("send_friend_request", func() error {
		return f.relations.SendRequest(from, to)
	})
}

// AcceptFriendRequest confirms a pending request from -> who.
func (f *Facade) AcceptFriendRequest(who, from string) error {
	return f.run("accept_friend_request", func() error {
		return f.relations.AcceptRequest(who, from)
	})
}

// RejectFriendRequest drops a pending request from -> who.
func (f *Facade) RejectFriendRequest(who, from string) error {
	return f.run("reject_friend_request", func() error {
		return f.relations.RejectRequest(who, from)
	})
}

// CancelFriendRequest withdraws a pending request from -> to.
func (f *Facade) CancelFriendRequest(from, to string) error {
	return f.run("cancel_friend_request", func() error {
		return f.relations.CancelOutgoing(from, to)
	})
}

// RemoveFriend deletes the friendship edge in both directions.
func (f *Facade) RemoveFriend(a, b string) error {
	return f.run("remove_friend", func() error {
		return f.relations.RemoveFriend(a, b)
	})
}

// Friends lists username's friends. Callers list only their own edges, so no
// permission check applies.
func (f *Facade) Friends(username string) ([]string, error) {
	f.refresh()
	out, err := f.relations.Friends(username)
	if err != nil {
		return nil, domain.ErrDenied
	}
	return out, nil
}

// IncomingRequests lists pending requests awaiting username's answer.
func (f *Facade) IncomingRequests(username string) ([]string, error) {
	f.refresh()
	out, err := f.relations.IncomingRequests(username)
	if err != nil {
		return nil, domain.ErrDenied
	}
	return out, nil
}

// OutgoingRequests lists pending requests username has sent.
func (f *Facade) OutgoingRequests(username string) ([]string, error) {
	f.refresh()
	out, err := f.relations.OutgoingRequests(username)
	if err != nil {
		return nil, domain.ErrDenied
	}
	return out, nil
}

// ── Groups ──

// CreateGroup creates a group with the actor as its Admin and returns the
// new group's ID.
func (f *Facade) CreateGroup(in ports.CreateGroupInput) (string, error) {
	var groupID string
	err := f.run("create_group", func() error {
		if err := f.validate.Struct(in); err != nil {
			return err
		}
		if _, ok := f.identity.ResolveUser(in.Actor); !ok {
			return domain.ErrUnknownUser
		}
		groupID = f.groups.Create(in.Name, in.Actor)
		return nil
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// RenameGroup changes a group's display name. Admin only.
func (f *Facade) RenameGroup(in ports.RenameGroupInput) error {
	return f.run("rename_group", func() error {
		if err := f.validate.Struct(in); err != nil {
			return err
		}
		actor, ok := f.identity.ResolveUser(in.Actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.IsAdmin(in.GroupID, actor.ID) {
			return domain.ErrDenied
		}
		return f.groups.Rename(in.GroupID, in.Name)
	})
}

// AddGroupRole adds a role to the group's catalog. Admin only.
func (f *Facade) AddGroupRole(actor, groupID, roleName string) error {
	return f.run("add_group_role", func() error {
		if roleName == "" {
			return domain.ErrUnknownRole
		}
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.IsAdmin(groupID, a.ID) {
			return domain.ErrDenied
		}
		return f.groups.AddRole(groupID, roleName)
	})
}

// SetGroupRolePermissions replaces a role's permission set. Admin only.
func (f *Facade) SetGroupRolePermissions(actor, groupID, roleName string, perms domain.PermissionSet) error {
	return f.run("set_role_permissions", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.IsAdmin(groupID, a.ID) {
			return domain.ErrDenied
		}
		return f.groups.SetRolePermissions(groupID, roleName, perms)
	})
}

// AddGroupMember adds username to the group with the given role.
func (f *Facade) AddGroupMember(actor, groupID, username, roleName string) error {
	return f.run("add_group_member", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.HasPermission(groupID, a.ID, domain.PermissionAddMember) {
			return domain.ErrDenied
		}
		target, ok := f.identity.ResolveUser(username)
		if !ok {
			return domain.ErrUnknownUser
		}
		return f.groups.AddMember(groupID, target.ID, roleName)
	})
}

// SetGroupMemberRole changes an existing member's role. Admin only.
func (f *Facade) SetGroupMemberRole(actor, groupID, username, roleName string) error {
	return f.run("set_member_role", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.IsAdmin(groupID, a.ID) {
			return domain.ErrDenied
		}
		target, ok := f.identity.ResolveUser(username)
		if !ok {
			return domain.ErrUnknownUser
		}
		return f.groups.SetMemberRole(groupID, target.ID, roleName)
	})
}

// RemoveGroupMember removes username from the group.
func (f *Facade) RemoveGroupMember(actor, groupID, username string) error {
	return f.run("remove_group_member", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.HasPermission(groupID, a.ID, domain.PermissionRemoveMember) {
			return domain.ErrDenied
		}
		target, ok := f.identity.ResolveUser(username)
		if !ok {
			return domain.ErrUnknownUser
		}
		return f.groups.RemoveMember(groupID, target.ID)
	})
}

// DeleteGroup removes the group and its whole message history.
func (f *Facade) DeleteGroup(actor, groupID string) error {
	return f.run("delete_group", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.HasPermission(groupID, a.ID, domain.PermissionDeleteGroup) {
			return domain.ErrDenied
		}
		return f.groups.Delete(groupID)
	})
}

// GroupMembers lists the group's members with their roles. Membership reads
// need no permission.
func (f *Facade) GroupMembers(groupID string) ([]ports.GroupMemberView, error) {
	f.refresh()
	g, ok := f.groups.Get(groupID)
	if !ok {
		return nil, domain.ErrDenied
	}
	out := make([]ports.GroupMemberView, 0, len(g.Members))
	for userID, role := range g.Members {
		username, ok := f.identity.ResolveUsername(userID)
		if !ok {
			continue
		}
		out = append(out, ports.GroupMemberView{Username: username, Role: role})
	}
	return out, nil
}

// GroupRoles lists the group's role catalog with each role's permissions.
func (f *Facade) GroupRoles(groupID string) ([]ports.RoleView, error) {
	f.refresh()
	g, ok := f.groups.Get(groupID)
	if !ok {
		return nil, domain.ErrDenied
	}
	out := make([]ports.RoleView, 0, len(g.Roles))
	for _, name := range g.RoleNames() {
		out = append(out, ports.RoleView{Name: name, Permissions: g.Roles[name].List()})
	}
	return out, nil
}

// ── Messages ──

// SendPrivateMessage appends a private message. Friendship is the
// authorization: non-friends are denied and nothing is appended.
func (f *Facade) SendPrivateMessage(in ports.PrivateMessageInput) error {
	return f.run("send_private_message", func() error {
		if err := f.validate.Struct(in); err != nil {
			return err
		}
		sender, ok := f.identity.ResolveUser(in.From)
		if !ok {
			return domain.ErrUnknownUser
		}
		if _, ok := f.identity.ResolveUser(in.To); !ok {
			return domain.ErrUnknownUser
		}
		if !f.relations.AreFriends(in.From, in.To) {
			return domain.ErrNotFriends
		}
		f.messages.AppendPrivate(sender.ID, in.From, in.To, in.Content)
		return nil
	})
}

// SendGroupMessage appends a message to the group ledger, gated on the
// send-message permission.
func (f *Facade) SendGroupMessage(in ports.GroupMessageInput) error {
	return f.run("send_group_message", func() error {
		if err := f.validate.Struct(in); err != nil {
			return err
		}
		sender, ok := f.identity.ResolveUser(in.From)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.HasPermission(in.GroupID, sender.ID, domain.PermissionSendMessage) {
			return domain.ErrDenied
		}
		f.messages.AppendGroup(sender.ID, in.GroupID, in.Content)
		return nil
	})
}

// DeleteGroupMessage removes one message from a group ledger, gated on the
// delete-messages permission.
func (f *Facade) DeleteGroupMessage(actor, groupID, messageID string) error {
	return f.run("delete_group_message", func() error {
		a, ok := f.identity.ResolveUser(actor)
		if !ok {
			return domain.ErrUnknownUser
		}
		if !f.groups.HasPermission(groupID, a.ID, domain.PermissionDeleteMessages) {
			return domain.ErrDenied
		}
		return f.messages.DeleteGroupMessage(groupID, messageID)
	})
}

// PrivateMessages returns the conversation between a and b in insertion
// order. Absent conversations are empty, never an error.
func (f *Facade) PrivateMessages(a, b string) []*domain.Message {
	f.refresh()
	return f.messages.ListPrivate(a, b)
}

// GroupMessages returns the group's ledger in insertion order.
func (f *Facade) GroupMessages(groupID string) []*domain.Message {
	f.refresh()
	return f.messages.ListGroup(groupID)
}
