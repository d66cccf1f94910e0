package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
)

func fixtureStore() *domain.Store {
	store := domain.NewStore()

	t0 := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

	store.Users["alice"] = &domain.User{ID: "u-alice", Username: "alice", PasswordHash: "h1", CreatedAt: t0}
	store.Users["bob"] = &domain.User{ID: "u-bob", Username: "bob", PasswordHash: "h2", CreatedAt: t0.Add(time.Minute)}
	store.Users["carol"] = &domain.User{ID: "u-carol", Username: "carol", PasswordHash: "h3", CreatedAt: t0.Add(2 * time.Minute)}
	for _, u := range []string{"alice", "bob", "carol"} {
		store.UserIDs["u-"+u] = u
		store.Friends[u] = make(domain.StringSet)
		store.Incoming[u] = make(domain.StringSet)
		store.Outgoing[u] = make(domain.StringSet)
	}

	store.Friends["alice"].Add("bob")
	store.Friends["bob"].Add("alice")
	store.Outgoing["carol"].Add("alice")
	store.Incoming["alice"].Add("carol")

	group := &domain.Group{
		ID:   "g-team",
		Name: "Team",
		Roles: map[string]domain.PermissionSet{
			domain.RoleAdmin:       domain.NewPermissionSet(domain.PermissionAll),
			domain.RoleParticipant: domain.NewPermissionSet(domain.PermissionSendMessage),
			domain.RoleReader:      domain.NewPermissionSet(),
			"Mod":                  domain.NewPermissionSet(domain.PermissionSendMessage, domain.PermissionDeleteMessages),
		},
		Members:   map[string]string{"u-alice": domain.RoleAdmin, "u-bob": "Mod"},
		CreatedAt: t0,
	}
	store.Groups[group.ID] = group

	store.PrivateMessages[domain.PairKey("alice", "bob")] = []*domain.Message{
		{ID: "m1", SenderID: "u-alice", Content: "hi", CreatedAt: t0},
		{ID: "m2", SenderID: "u-bob", Content: "hello", CreatedAt: t0.Add(time.Second)},
	}
	store.GroupMessages["g-team"] = []*domain.Message{
		{ID: "m3", SenderID: "u-alice", Content: "welcome", CreatedAt: t0},
	}
	return store
}

func TestGateway_RoundTrip(t *testing.T) {
	gw := NewGateway(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "store.snapshot")
	orig := fixtureStore()

	if err := gw.Save(orig, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := gw.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for username, want := range orig.Users {
		got, ok := loaded.Users[username]
		if !ok {
			t.Fatalf("user %s lost in round trip", username)
		}
		if got.ID != want.ID || got.PasswordHash != want.PasswordHash || !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("user %s mismatch: got %+v want %+v", username, got, want)
		}
	}
	if !reflect.DeepEqual(loaded.UserIDs, orig.UserIDs) {
		t.Fatalf("user ID index mismatch")
	}

	for _, username := range []string{"alice", "bob", "carol"} {
		if !reflect.DeepEqual(loaded.Friends[username].Values(), orig.Friends[username].Values()) {
			t.Fatalf("friends of %s mismatch", username)
		}
		if !reflect.DeepEqual(loaded.Incoming[username].Values(), orig.Incoming[username].Values()) {
			t.Fatalf("incoming of %s mismatch", username)
		}
		if !reflect.DeepEqual(loaded.Outgoing[username].Values(), orig.Outgoing[username].Values()) {
			t.Fatalf("outgoing of %s mismatch", username)
		}
	}

	g := loaded.Groups["g-team"]
	if g == nil || g.Name != "Team" {
		t.Fatalf("group lost or renamed: %+v", g)
	}
	if !reflect.DeepEqual(g.Members, orig.Groups["g-team"].Members) {
		t.Fatalf("membership mismatch: %v", g.Members)
	}
	for role, wantPerms := range orig.Groups["g-team"].Roles {
		gotPerms, ok := g.Roles[role]
		if !ok {
			t.Fatalf("role %s lost in round trip", role)
		}
		if !reflect.DeepEqual(gotPerms.List(), wantPerms.List()) {
			t.Fatalf("permissions of %s mismatch: got %v want %v", role, gotPerms.List(), wantPerms.List())
		}
	}

	key := domain.PairKey("alice", "bob")
	gotMsgs := loaded.PrivateMessages[key]
	wantMsgs := orig.PrivateMessages[key]
	if len(gotMsgs) != len(wantMsgs) {
		t.Fatalf("private ledger length mismatch: %d vs %d", len(gotMsgs), len(wantMsgs))
	}
	for i := range wantMsgs {
		if gotMsgs[i].ID != wantMsgs[i].ID || gotMsgs[i].Content != wantMsgs[i].Content ||
			gotMsgs[i].SenderID != wantMsgs[i].SenderID || !gotMsgs[i].CreatedAt.Equal(wantMsgs[i].CreatedAt) {
			t.Fatalf("private message %d mismatch: got %+v want %+v", i, gotMsgs[i], wantMsgs[i])
		}
	}
	if len(loaded.GroupMessages["g-team"]) != 1 || loaded.GroupMessages["g-team"][0].ID != "m3" {
		t.Fatalf("group ledger mismatch: %+v", loaded.GroupMessages["g-team"])
	}
}

func TestGateway_EmptyStoreRoundTrip(t *testing.T) {
	gw := NewGateway(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "store.snapshot")

	if err := gw.Save(domain.NewStore(), path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := gw.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Users) != 0 || len(loaded.Groups) != 0 {
		t.Fatalf("empty store must load empty")
	}
}

func TestGateway_LoadMissing(t *testing.T) {
	gw := NewGateway(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "nope.snapshot")

	if _, err := gw.Load(path); !errors.Is(err, domain.ErrSnapshotMissing) {
		t.Fatalf("expected ErrSnapshotMissing, got %v", err)
	}
	if _, err := gw.ModTime(path); !errors.Is(err, domain.ErrSnapshotMissing) {
		t.Fatalf("ModTime of missing file: expected ErrSnapshotMissing, got %v", err)
	}
}

func TestGateway_LoadCorrupt(t *testing.T) {
	gw := NewGateway(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "bad.snapshot")
	if err := os.WriteFile(path, []byte("definitely not bson"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := gw.Load(path); err == nil {
		t.Fatalf("corrupt snapshot must fail to load")
	}
}

func TestGateway_SaveIsAtomicOverwrite(t *testing.T) {
	gw := NewGateway(zerolog.Nop())
	dir := t.TempDir()
	path := filepath.Join(dir, "store.snapshot")

	if err := gw.Save(fixtureStore(), path); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := gw.Save(domain.NewStore(), path); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err := gw.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Users) != 0 {
		t.Fatalf("second save must fully replace the first")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files must not be left behind, found %d entries", len(entries))
	}

	if _, err := gw.ModTime(path); err != nil {
		t.Fatalf("ModTime after save: %v", err)
	}
}
