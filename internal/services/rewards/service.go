package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
	"github.com/bobmcallan/stockpulse/internal/services/users"
)

// ErrAlreadyClaimed rejects a second claim on the same calendar day.
var ErrAlreadyClaimed = errors.New("daily points already claimed today")

// dailyPoints is the base award per successful claim.
const dailyPoints = 10

// Service hands out daily login points with a consecutive-day streak.
type Service struct {
	users  interfaces.UserService
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewService creates a rewards service.
func NewService(userSvc interfaces.UserService, logger *common.Logger) *Service {
	return &Service{
		users:  userSvc,
		logger: logger,
		now:    time.Now,
	}
}

// ClaimDaily awards today's points for an identity. A claim on a day that
// was already claimed is rejected without any state change. A claim the
// day after the last one extends the streak; any longer gap resets it to 1.
func (s *Service) ClaimDaily(ctx context.Context, identity string) (*models.DailyClaim, error) {
	user, err := s.users.GetUser(ctx, identity)
	if errors.Is(err, users.ErrUserNotFound) {
		user = &models.UserRecord{UserID: identity}
	} else if err != nil {
		return nil, err
	}

	today := s.now().UTC().Format("2006-01-02")
	yesterday := s.now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	if user.LastClaimDate == today {
		return nil, ErrAlreadyClaimed
	}

	if user.LastClaimDate == yesterday {
		user.Streak++
	} else {
		user.Streak = 1
	}
	user.Points += dailyPoints
	user.LastClaimDate = today

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist claim for %s: %w", identity, err)
	}

	s.logger.Info().Str("identity", identity).Int("streak", user.Streak).Int("points", user.Points).Msg("Daily points claimed")
	return &models.DailyClaim{
		Awarded: dailyPoints,
		Points:  user.Points,
		Streak:  user.Streak,
	}, nil
}

// Ensure Service implements RewardsService
var _ interfaces.RewardsService = (*Service)(nil)
