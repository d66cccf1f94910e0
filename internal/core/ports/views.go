package ports

import "github.com/quorumchat/quorum/internal/core/domain"

// GroupMemberView is a membership entry resolved back to a username.
type GroupMemberView struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// RoleView is one role of a group's catalog with its granted permissions.
type RoleView struct {
	Name        string              `json:"name"`
	Permissions []domain.Permission `json:"permissions"`
}
