package swipes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
)

var ErrSwipeLimit = apperr.QuotaExceeded("free swipe limit reached")

type UserStore interface {
	Get(ctx context.Context, id string) (model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	ConsumeSwipe(ctx context.Context, id string) (bool, error)
	RefundSwipe(ctx context.Context, id string) error
	IncrementSwipeCounters(ctx context.Context, id string, action enums.SwipeAction) error
	IncrementMatches(ctx context.Context, ids ...string) error
}

type SwipeStore interface {
	Upsert(ctx context.Context, swiperID, targetID string, action enums.SwipeAction, now time.Time) (model.Swipe, error)
	HasPositive(ctx context.Context, swiperID, targetID string) (bool, error)
}

type MatchStore interface {
	Upsert(ctx context.Context, userA, userB string, now time.Time) (model.Match, bool, error)
}

type Notifier interface {
	MatchCreated(ctx context.Context, match model.Match, actorID string)
	Liked(ctx context.Context, actorID, targetID string, action enums.SwipeAction)
}

type Dependencies struct {
	Users    UserStore
	Swipes   SwipeStore
	Matches  MatchStore
	Notifier Notifier
	Logger   *zap.Logger
}

type Result struct {
	SwipeID string
	IsMatch bool
	MatchID string
}

type Service struct {
	users    UserStore
	swipes   SwipeStore
	matches  MatchStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    deps.Users,
		swipes:   deps.Swipes,
		matches:  deps.Matches,
		notifier: deps.Notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordSwipe stores the swiper's latest decision about target. For free
// plans a like or superlike spends one swipe before anything is written; a
// failed write gives it back. Reciprocal positive swipes produce a match,
// which is created once per pair no matter how many times it is detected.
func (s *Service) RecordSwipe(ctx context.Context, swiperID, targetID, rawAction string) (Result, error) {
	swiperID = strings.TrimSpace(swiperID)
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return Result{}, apperr.InvalidArgument("target id is required")
	}
	if !validID(swiperID) || !validID(targetID) {
		return Result{}, apperr.InvalidArgument("invalid user id")
	}
	if swiperID == targetID {
		return Result{}, apperr.InvalidArgument("cannot swipe on yourself")
	}
	action, ok := enums.ParseSwipeAction(rawAction)
	if !ok {
		return Result{}, apperr.InvalidArgument("unsupported swipe action")
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return Result{}, apperr.Internal("failed to check target", err)
	}
	if !exists {
		return Result{}, apperr.NotFound("target user not found")
	}

	swiper, err := s.users.Get(ctx, swiperID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Result{}, apperr.NotFound("user not found")
		}
		return Result{}, apperr.Internal("failed to load swiper", err)
	}

	consumed := false
	if rules.SwipeGated(swiper.PlanType, action) {
		ok, err := s.users.ConsumeSwipe(ctx, swiperID)
		if err != nil {
			return Result{}, apperr.Internal("failed to consume swipe", err)
		}
		if !ok {
			return Result{}, ErrSwipeLimit
		}
		consumed = true
	}

	now := s.now().UTC()
	swipe, err := s.swipes.Upsert(ctx, swiperID, targetID, action, now)
	if err != nil {
		if consumed {
			if refundErr := s.users.RefundSwipe(ctx, swiperID); refundErr != nil {
				s.logger.Error("refund swipe failed", zap.String("user_id", swiperID), zap.Error(refundErr))
			}
		}
		if errors.Is(err, pgrepo.ErrSwipeUserNotFound) {
			return Result{}, apperr.NotFound("target user not found")
		}
		return Result{}, apperr.Internal("failed to record swipe", err)
	}

	if err := s.users.IncrementSwipeCounters(ctx, swiperID, action); err != nil {
		s.logger.Warn("increment swipe counters failed", zap.String("user_id", swiperID), zap.Error(err))
	}

	result := Result{SwipeID: swipe.ID}
	if !action.Positive() {
		return result, nil
	}

	reciprocal, err := s.swipes.HasPositive(ctx, targetID, swiperID)
	if err != nil {
		return Result{}, apperr.Internal("failed to check reciprocity", err)
	}
	if !reciprocal {
		s.notifyLiked(ctx, swiperID, targetID, action)
		return result, nil
	}

	match, created, err := s.matches.Upsert(ctx, swiperID, targetID, now)
	if err != nil {
		return Result{}, apperr.Internal("failed to create match", err)
	}
	result.IsMatch = true
	result.MatchID = match.ID

	if created {
		if err := s.users.IncrementMatches(ctx, match.User1ID, match.User2ID); err != nil {
			s.logger.Warn("increment match counters failed", zap.String("match_id", match.ID), zap.Error(err))
		}
		if s.notifier != nil {
			s.notifier.MatchCreated(ctx, match, swiperID)
		}
	}
	return result, nil
}

func (s *Service) notifyLiked(ctx context.Context, swiperID, targetID string, action enums.SwipeAction) {
	if s.notifier == nil {
		return
	}
	s.notifier.Liked(ctx, swiperID, targetID, action)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
