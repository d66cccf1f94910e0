// Package snapshot persists the aggregate store as a single BSON file.
//
// The file is the only durable artifact of the system: Save serializes the
// whole aggregate, Load rebuilds it wholesale, and ModTime feeds the
// staleness watermark the facade uses to detect external writers.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/quorumchat/quorum/internal/core/domain"
)

// Gateway implements ports.SnapshotGateway on the local filesystem.
type Gateway struct {
	log zerolog.Logger
}

func NewGateway(log zerolog.Logger) *Gateway {
	return &Gateway{log: log}
}

// BSON documents mirroring the aggregate. Sets and maps become sorted
// slices so the on-disk form is deterministic.

type userDoc struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
	CreatedAtNs  int64  `bson:"created_at_ns"`
}

type relationDoc struct {
	Username string   `bson:"username"`
	Friends  []string `bson:"friends"`
	Incoming []string `bson:"incoming"`
	Outgoing []string `bson:"outgoing"`
}

type roleDoc struct {
	Name        string   `bson:"name"`
	Permissions []string `bson:"permissions"`
}

type memberDoc struct {
	UserID string `bson:"user_id"`
	Role   string `bson:"role"`
}

type groupDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Roles       []roleDoc   `bson:"roles"`
	Members     []memberDoc `bson:"members"`
	CreatedAtNs int64       `bson:"created_at_ns"`
}

type messageDoc struct {
	ID          string `bson:"_id"`
	SenderID    string `bson:"sender_id"`
	Content     string `bson:"content"`
	CreatedAtNs int64  `bson:"created_at_ns"`
}

type conversationDoc struct {
	Key      string       `bson:"key"`
	Messages []messageDoc `bson:"messages"`
}

type snapshotDoc struct {
	Users     []userDoc         `bson:"users"`
	Relations []relationDoc     `bson:"relations"`
	Groups    []groupDoc        `bson:"groups"`
	Private   []conversationDoc `bson:"private_conversations"`
	GroupMsgs []conversationDoc `bson:"group_conversations"`
}

// Save writes the aggregate atomically: marshal, write to a temp file in the
// same directory, then rename over the target.
func (g *Gateway) Save(store *domain.Store, path string) error {
	raw, err := bson.Marshal(encode(store))
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	g.log.Debug().Str("path", path).Int("bytes", len(raw)).Msg("snapshot saved")
	return nil
}

// Load rebuilds an aggregate from the file. It returns
// domain.ErrSnapshotMissing when the file does not exist and never yields a
// partially populated store.
func (g *Gateway) Load(path string) (*domain.Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotMissing
		}
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	var doc snapshotDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return decode(&doc), nil
}

// ModTime reports the snapshot file's modification time.
func (g *Gateway) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, domain.ErrSnapshotMissing
		}
		return time.Time{}, fmt.Errorf("snapshot: stat: %w", err)
	}
	return info.ModTime(), nil
}

func encode(store *domain.Store) *snapshotDoc {
	doc := &snapshotDoc{}

	for _, username := range sortedKeys(store.Users) {
		u := store.Users[username]
		doc.Users = append(doc.Users, userDoc{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			CreatedAtNs:  u.CreatedAt.UnixNano(),
		})
		doc.Relations = append(doc.Relations, relationDoc{
			Username: username,
			Friends:  store.Friends[username].Values(),
			Incoming: store.Incoming[username].Values(),
			Outgoing: store.Outgoing[username].Values(),
		})
	}

	for _, id := range sortedKeys(store.Groups) {
		gr := store.Groups[id]
		gd := groupDoc{ID: gr.ID, Name: gr.Name, CreatedAtNs: gr.CreatedAt.UnixNano()}
		for _, role := range gr.RoleNames() {
			perms := gr.Roles[role].List()
			rd := roleDoc{Name: role, Permissions: make([]string, 0, len(perms))}
			for _, p := range perms {
				rd.Permissions = append(rd.Permissions, string(p))
			}
			gd.Roles = append(gd.Roles, rd)
		}
		for _, userID := range sortedKeys(gr.Members) {
			gd.Members = append(gd.Members, memberDoc{UserID: userID, Role: gr.Members[userID]})
		}
		doc.Groups = append(doc.Groups, gd)
	}

	doc.Private = encodeConversations(store.PrivateMessages)
	doc.GroupMsgs = encodeConversations(store.GroupMessages)
	return doc
}

func encodeConversations(ledger map[string][]*domain.Message) []conversationDoc {
	out := make([]conversationDoc, 0, len(ledger))
	for _, key := range sortedKeys(ledger) {
		cd := conversationDoc{Key: key}
		for _, m := range ledger[key] {
			cd.Messages = append(cd.Messages, messageDoc{
				ID:          m.ID,
				SenderID:    m.SenderID,
				Content:     m.Content,
				CreatedAtNs: m.CreatedAt.UnixNano(),
			})
		}
		out = append(out, cd)
	}
	return out
}

func decode(doc *snapshotDoc) *domain.Store {
	store := domain.NewStore()

	for _, ud := range doc.Users {
		store.Users[ud.Username] = &domain.User{
			ID:           ud.ID,
			Username:     ud.Username,
			PasswordHash: ud.PasswordHash,
			CreatedAt:    nsToTime(ud.CreatedAtNs),
		}
		store.UserIDs[ud.ID] = ud.Username
		store.Friends[ud.Username] = make(domain.StringSet)
		store.Incoming[ud.Username] = make(domain.StringSet)
		store.Outgoing[ud.Username] = make(domain.StringSet)
	}

	for _, rd := range doc.Relations {
		fillSet(store.Friends, rd.Username, rd.Friends)
		fillSet(store.Incoming, rd.Username, rd.Incoming)
		fillSet(store.Outgoing, rd.Username, rd.Outgoing)
	}

	for _, gd := range doc.Groups {
		gr := &domain.Group{
			ID:        gd.ID,
			Name:      gd.Name,
			Roles:     make(map[string]domain.PermissionSet, len(gd.Roles)),
			Members:   make(map[string]string, len(gd.Members)),
			CreatedAt: nsToTime(gd.CreatedAtNs),
		}
		for _, rd := range gd.Roles {
			set := domain.NewPermissionSet()
			for _, p := range rd.Permissions {
				set[domain.Permission(p)] = struct{}{}
			}
			gr.Roles[rd.Name] = set
		}
		for _, md := range gd.Members {
			gr.Members[md.UserID] = md.Role
		}
		store.Groups[gd.ID] = gr
	}

	decodeConversations(store.PrivateMessages, doc.Private)
	decodeConversations(store.GroupMessages, doc.GroupMsgs)
	return store
}

func decodeConversations(ledger map[string][]*domain.Message, docs []conversationDoc) {
	for _, cd := range docs {
		msgs := make([]*domain.Message, 0, len(cd.Messages))
		for _, md := range cd.Messages {
			msgs = append(msgs, &domain.Message{
				ID:        md.ID,
				SenderID:  md.SenderID,
				Content:   md.Content,
				CreatedAt: nsToTime(md.CreatedAtNs),
			})
		}
		ledger[cd.Key] = msgs
	}
}

func fillSet(index map[string]domain.StringSet, username string, values []string) {
	set, ok := index[username]
	if !ok {
		set = make(domain.StringSet)
		index[username] = set
	}
	for _, v := range values {
		set.Add(v)
	}
}

func nsToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
