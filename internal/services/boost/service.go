package boost

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
)

const (
	maxDurationMinutes  = 24 * 60
	maxActivateAttempts = 2
)

var (
	ErrUnknownPackage = apperr.InvalidArgument("unknown boost package")
	ErrNoCredits      = apperr.InvalidArgument("no boost credits available")
	ErrAlreadyActive  = apperr.InvalidArgument("boost is already active")
	ErrNotActive      = apperr.InvalidArgument("no active boost")

	ErrActivateConflict = apperr.InvalidArgument("boost state changed, try again")
)

type Store interface {
	Get(ctx context.Context, userID string) (model.BoostState, error)
	PurchaseAndActivate(ctx context.Context, userID, transactionID string, credits int, window pgrepo.BoostWindow) (model.BoostState, error)
	Activate(ctx context.Context, userID string, window pgrepo.BoostWindow) (model.BoostState, bool, error)
	Deactivate(ctx context.Context, userID string) (model.BoostState, bool, error)
	ClearExpired(ctx context.Context, userIDs []string, now time.Time) (int64, error)
}

type Config struct {
	DefaultDuration time.Duration
	Packages        []model.BoostPackage
}

type Window struct {
	IsActive         bool       `json:"isActive"`
	StartTime        *time.Time `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
	RemainingMinutes int        `json:"remainingMinutes"`
	DurationMinutes  int        `json:"durationMinutes"`
}

type Status struct {
	Credits        int    `json:"boostCredits"`
	PurchasedTotal int    `json:"totalBoostsPurchased"`
	UsedTotal      int    `json:"totalBoostsUsed"`
	Boost          Window `json:"boost"`
}

type PurchaseResult struct {
	BoostActivated   bool               `json:"boostActivated"`
	TotalCredits     int                `json:"totalCredits"`
	PurchasedCredits int                `json:"purchasedCredits"`
	AlreadyProcessed bool               `json:"alreadyProcessed"`
	TransactionID    string             `json:"transactionId"`
	Package          model.BoostPackage `json:"package"`
	Boost            Window             `json:"boost"`
}

type Service struct {
	store    Store
	cfg      Config
	packages map[string]model.BoostPackage
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = rules.DefaultBoostDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	packages := make(map[string]model.BoostPackage, len(cfg.Packages))
	for _, p := range cfg.Packages {
		packages[strings.ToLower(p.Code)] = p
	}
	return &Service{
		store:    store,
		cfg:      cfg,
		packages: packages,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Packages() []model.BoostPackage {
	out := make([]model.BoostPackage, len(s.cfg.Packages))
	copy(out, s.cfg.Packages)
	return out
}

// Status reports the current boost state. A window observed expired is
// cleared before it is reported.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return s.status(state, s.now().UTC()), nil
}

// Purchase credits a package and starts a fresh window right away, ending
// any window already running. Replaying a transaction id changes nothing
// and reports AlreadyProcessed.
func (s *Service) Purchase(ctx context.Context, userID, packageCode, transactionID string, durationMinutes int) (PurchaseResult, error) {
	pkg, ok := s.packages[strings.ToLower(strings.TrimSpace(packageCode))]
	if !ok {
		return PurchaseResult{}, ErrUnknownPackage
	}
	if err := validateDuration(durationMinutes); err != nil {
		return PurchaseResult{}, err
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	current, err := s.load(ctx, userID)
	if err != nil {
		return PurchaseResult{}, err
	}

	now := s.now().UTC()
	window := s.window(now, durationMinutes, current.DurationMinutes)
	state, err := s.store.PurchaseAndActivate(ctx, userID, transactionID, pkg.Credits, window)
	switch {
	case errors.Is(err, pgrepo.ErrBoostTransactionSeen):
		view := s.status(state, now)
		return PurchaseResult{
			TotalCredits:     view.Credits,
			AlreadyProcessed: true,
			TransactionID:    transactionID,
			Package:          pkg,
			Boost:            view.Boost,
		}, nil
	case errors.Is(err, pgrepo.ErrUserNotFound):
		return PurchaseResult{}, apperr.NotFound("user not found")
	case err != nil:
		return PurchaseResult{}, apperr.Internal("failed to purchase boost", err)
	}

	s.logger.Info("boost purchased",
		zap.String("user_id", userID),
		zap.String("package", pkg.Code),
		zap.String("transaction_id", transactionID),
	)
	view := s.status(state, now)
	return PurchaseResult{
		BoostActivated:   true,
		TotalCredits:     view.Credits,
		PurchasedCredits: pkg.Credits,
		TransactionID:    transactionID,
		Package:          pkg,
		Boost:            view.Boost,
	}, nil
}

// Activate starts a window from stored credits.
func (s *Service) Activate(ctx context.Context, userID string, durationMinutes int) (Status, error) {
	if err := validateDuration(durationMinutes); err != nil {
		return Status{}, err
	}
	state, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	now := s.now().UTC()
	if err := s.checkActivatable(state, now); err != nil {
		return Status{}, err
	}

	for attempt := 0; ; attempt++ {
		updated, ok, err := s.store.Activate(ctx, userID, s.window(now, durationMinutes, state.DurationMinutes))
		if err != nil {
			return Status{}, apperr.Internal("failed to activate boost", err)
		}
		if ok {
			return s.status(updated, now), nil
		}

		// Lost a race with another activation or purchase; report what won.
		state, err = s.store.Get(ctx, userID)
		if err != nil {
			return Status{}, apperr.Internal("failed to reload boost", err)
		}
		if err := s.checkActivatable(state, now); err != nil {
			return Status{}, err
		}
		if attempt >= maxActivateAttempts-1 {
			return Status{}, ErrActivateConflict
		}
	}
}

// Deactivate ends the running window. Credits are untouched.
func (s *Service) Deactivate(ctx context.Context, userID string) (Status, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if !state.IsActive {
		return Status{}, ErrNotActive
	}

	updated, ok, err := s.store.Deactivate(ctx, userID)
	if err != nil {
		return Status{}, apperr.Internal("failed to deactivate boost", err)
	}
	if !ok {
		return Status{}, ErrNotActive
	}
	return s.status(updated, s.now().UTC()), nil
}

// load reads the state and applies lazy expiry. A failed clear is logged
// and the state is still reported idle.
func (s *Service) load(ctx context.Context, userID string) (model.BoostState, error) {
	if strings.TrimSpace(userID) == "" {
		return model.BoostState{}, apperr.InvalidArgument("user id is required")
	}
	state, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.BoostState{}, apperr.NotFound("user not found")
		}
		return model.BoostState{}, apperr.Internal("failed to load boost", err)
	}

	now := s.now().UTC()
	if state.ExpiredAt(now) {
		if _, err := s.store.ClearExpired(ctx, []string{userID}, now); err != nil {
			s.logger.Warn("clear expired boost failed", zap.String("user_id", userID), zap.Error(err))
		}
		state.IsActive = false
		state.StartTime = nil
		state.EndTime = nil
	}
	return state, nil
}

// checkActivatable rejects an empty balance before a running window, so a
// user who spent the last credit sees "no credits" even while boosted.
func (s *Service) checkActivatable(state model.BoostState, now time.Time) error {
	if state.Credits < 1 {
		return ErrNoCredits
	}
	if state.ActiveAt(now) {
		return ErrAlreadyActive.WithDetails(map[string]int{
			"remainingMinutes": rules.RemainingMinutes(*state.EndTime, now),
		})
	}
	return nil
}

func (s *Service) window(now time.Time, requested, stored int) pgrepo.BoostWindow {
	d := rules.ResolveBoostDuration(requested, stored)
	if requested <= 0 && stored <= 0 {
		d = s.cfg.DefaultDuration
	}
	return pgrepo.BoostWindow{
		Start:           now,
		End:             now.Add(d),
		DurationMinutes: int(d / time.Minute),
	}
}

func (s *Service) status(state model.BoostState, now time.Time) Status {
	w := Window{DurationMinutes: state.DurationMinutes}
	if w.DurationMinutes <= 0 {
		w.DurationMinutes = int(s.cfg.DefaultDuration / time.Minute)
	}
	if state.ActiveAt(now) {
		w.IsActive = true
		w.StartTime = state.StartTime
		w.EndTime = state.EndTime
		w.RemainingMinutes = rules.RemainingMinutes(*state.EndTime, now)
	}
	return Status{
		Credits:        state.Credits,
		PurchasedTotal: state.PurchasedTotal,
		UsedTotal:      state.UsedTotal,
		Boost:          w,
	}
}

func validateDuration(minutes int) error {
	if minutes < 0 || minutes > maxDurationMinutes {
		return apperr.InvalidArgument("duration must be between 0 and 1440 minutes")
	}
	return nil
}
