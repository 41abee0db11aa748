package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// ErrUserNotFound is returned when no profile exists for an identity.
var ErrUserNotFound = errors.New("user not found")

// Store keys for the user surface.
const (
	usernamesSetKey   = "usernames"
	registeredSetKey  = "users:registered"
	recordField       = "record"
	usernameMinLength = 3
	usernameMaxLength = 20
)

// Availability messages returned verbatim to the client.
const (
	reasonReserved   = "This username is reserved"
	reasonUnderscore = "Cannot start or end with underscore"
	reasonLength     = "Must be 3-20 characters"
	reasonCharset    = "Only letters, numbers and underscores allowed"
	reasonTaken      = "This username is taken"
)

// reservedUsernames can never be claimed regardless of store state.
var reservedUsernames = map[string]bool{
	"admin":     true,
	"root":      true,
	"moderator": true,
	"mod":       true,
	"support":   true,
	"system":    true,
	"api":       true,
	"stockpulse": true,
}

// Service handles profile records and username availability. The username
// index is a store set; record writes and index updates are separate
// operations, so a crash between them can leave an indexed name without a
// record. Reads tolerate that.
type Service struct {
	store  interfaces.KeyedStore
	logger *common.Logger
}

// NewService creates a user service.
func NewService(store interfaces.KeyedStore, logger *common.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func userKey(identity string) string {
	return "user:" + identity
}

// CheckUsername reports whether a candidate username can be claimed.
// Validation order: reserved list, shape rules, then the taken index.
func (s *Service) CheckUsername(ctx context.Context, username string) (*models.UsernameCheck, error) {
	candidate := strings.TrimSpace(username)
	lowered := strings.ToLower(candidate)

	if reservedUsernames[lowered] {
		return &models.UsernameCheck{Available: false, Reason: reasonReserved}, nil
	}
	if strings.HasPrefix(candidate, "_") || strings.HasSuffix(candidate, "_") {
		return &models.UsernameCheck{Available: false, Reason: reasonUnderscore}, nil
	}
	if len(candidate) < usernameMinLength || len(candidate) > usernameMaxLength {
		return &models.UsernameCheck{Available: false, Reason: reasonLength}, nil
	}
	if !validUsernameCharset(candidate) {
		return &models.UsernameCheck{Available: false, Reason: reasonCharset}, nil
	}

	taken, err := s.store.SIsMember(ctx, usernamesSetKey, lowered)
	if err != nil {
		return nil, fmt.Errorf("failed to check username index: %w", err)
	}
	if taken {
		return &models.UsernameCheck{Available: false, Reason: reasonTaken}, nil
	}

	return &models.UsernameCheck{Available: true}, nil
}

// GetUser loads the profile record for an identity.
func (s *Service) GetUser(ctx context.Context, identity string) (*models.UserRecord, error) {
	raw, err := s.store.HGet(ctx, userKey(identity), recordField)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", identity, err)
	}

	var user models.UserRecord
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("corrupt user record for %s: %w", identity, err)
	}
	return &user, nil
}

// SaveUser persists the record and keeps the username and registration
// indexes current. The two writes are not atomic.
func (s *Service) SaveUser(ctx context.Context, user *models.UserRecord) error {
	if user.UserID == "" {
		return errors.New("user id is required")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := s.store.HSet(ctx, userKey(user.UserID), recordField, raw); err != nil {
		return fmt.Errorf("failed to store user %s: %w", user.UserID, err)
	}

	if err := s.store.SAdd(ctx, registeredSetKey, user.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("Failed to update registration index")
	}
	if user.Username != "" {
		if err := s.store.SAdd(ctx, usernamesSetKey, strings.ToLower(user.Username)); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("Failed to update username index")
		}
	}
	return nil
}

func validUsernameCharset(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// Ensure Service implements UserService
var _ interfaces.UserService = (*Service)(nil)
