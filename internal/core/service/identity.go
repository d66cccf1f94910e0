package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quorumchat/quorum/internal/core/domain"
	"github.com/quorumchat/quorum/internal/core/ports"
)

// IdentityService owns user records and credentials.
type IdentityService struct {
	store      *domain.Store
	hasher     ports.PasswordHasher
	jwtSecret  string
	sessionTTL time.Duration
	log        zerolog.Logger
}

func NewIdentityService(store *domain.Store, hasher ports.PasswordHasher, jwtSecret string, sessionTTL time.Duration, log zerolog.Logger) *IdentityService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &IdentityService{
		store:      store,
		hasher:     hasher,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Register creates a user and initializes their empty relationship views.
func (s *IdentityService) Register(username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, exists := s.store.Users[username]; exists {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.store.Users[username] = user
	s.store.UserIDs[user.ID] = username
	s.store.Friends[username] = make(domain.StringSet)
	s.store.Incoming[username] = make(domain.StringSet)
	s.store.Outgoing[username] = make(domain.StringSet)

	s.log.Info().Str("username", username).Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate checks credentials and, on success, issues a signed session
// token. A verifier failure of any kind reads as bad credentials.
func (s *IdentityService) Authenticate(username, password string) (string, error) {
	user, ok := s.store.Users[username]
	if !ok {
		return "", domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// VerifySession resolves a session token back to its username.
func (s *IdentityService) VerifySession(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidCredentials
	}
	username, _ := claims["sub"].(string)
	if _, ok := s.store.Users[username]; !ok {
		return "", domain.ErrInvalidCredentials
	}
	return username, nil
}

// ResolveUsername maps a user ID back to its username.
func (s *IdentityService) ResolveUsername(userID string) (string, bool) {
	username, ok := s.store.UserIDs[userID]
	return username, ok
}

// ResolveUser looks a user up by username.
func (s *IdentityService) ResolveUser(username string) (*domain.User, bool) {
	user, ok := s.store.Users[username]
	return user, ok
}

func (s *IdentityService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.Username,
		"uid": user.ID,
		"exp": time.Now().Add(s.sessionTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
