package domain

import "errors"

// Facade-level sentinels. ErrDenied deliberately covers validation,
// authorization, and referential failures alike so a caller cannot tell
// which check rejected the request.
var (
	ErrDenied       = errors.New("operation denied")
	ErrSnapshotSave = errors.New("snapshot save failed")
)

// Engine-level sentinels. The facade masks all of these except
// ErrSnapshotSave before they reach a caller.
var (
	ErrUserExists         = errors.New("username already taken")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrSelfRequest      = errors.New("cannot befriend yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrRequestPending   = errors.New("friend request already pending")
	ErrNoPendingRequest = errors.New("no pending friend request")
	ErrNotFriends       = errors.New("users are not friends")

	ErrUnknownGroup = errors.New("unknown group")
	ErrUnknownRole  = errors.New("unknown role")

	ErrMessageNotFound = errors.New("message not found")

	ErrSnapshotMissing = errors.New("snapshot file does not exist")
)
