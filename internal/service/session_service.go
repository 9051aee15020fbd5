package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worktime/internal/enrich"
	"worktime/internal/geo"
	"worktime/internal/model"
	"worktime/internal/repository"
)

// SessionOptions tunes the check-out proximity gate
type SessionOptions struct {
	MaxMeters float64
	// EnforceProximity makes CheckOut reject locations outside MaxMeters.
	// When false the gate is only reported by PreviewCheckout.
	EnforceProximity bool
	Now              func() time.Time
}

// SessionService drives the IDLE -> ACTIVE -> IDLE lifecycle of work logs
type SessionService interface {
	CheckIn(ctx context.Context, username string, req model.CheckInRequest) (*model.WorkLog, error)
	CheckOut(ctx context.Context, user model.User, logID string, req model.CheckOutRequest) (*model.WorkLog, error)
	ActiveJob(ctx context.Context, username string) (*model.WorkLog, error)
	GetLogs(ctx context.Context, user model.User, limit int) ([]model.WorkLog, error)
	PreviewCheckout(ctx context.Context, username string, loc model.Location) (*model.CheckoutPreview, error)
}

type sessionService struct {
	// mu serializes the read-modify-write of the log collection
	mu       sync.Mutex
	repo     repository.WorkLogRepository
	enricher enrich.Enricher
	opts     SessionOptions
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(repo repository.WorkLogRepository, enricher enrich.Enricher, opts SessionOptions, logger *zap.Logger) SessionService {
	if opts.MaxMeters <= 0 {
		opts.MaxMeters = geo.DefaultMaxMeters
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if enricher == nil {
		enricher = enrich.Noop{}
	}
	return &sessionService{repo: repo, enricher: enricher, opts: opts, logger: logger}
}

func validateLocation(loc *model.Location) error {
	if loc == nil {
		return ErrMissingLocation
	}
	if !loc.Valid() {
		return ErrInvalidLocation
	}
	return nil
}

func (s *sessionService) CheckIn(ctx context.Context, username string, req model.CheckInRequest) (*model.WorkLog, error) {
	jobName := strings.TrimSpace(req.JobName)
	if jobName == "" {
		return nil, ErrMissingJobName
	}
	if err := validateLocation(req.Location); err != nil {
		return nil, err
	}

	// Fail fast before spending an enrichment call
	active, err := s.ActiveJob(ctx, username)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyActive
	}

	place := s.placeName(ctx, *req.Location)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock, another request may have opened a job meanwhile
	active, err = s.activeJob(ctx, username)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyActive
	}

	log := &model.WorkLog{
		ID:              uuid.NewString(),
		Username:        username,
		JobName:         jobName,
		CheckInTime:     s.opts.Now(),
		CheckInLocation: *req.Location,
		CheckInPlace:    place,
		Status:          model.StatusCheckedIn,
	}
	if err := s.repo.Append(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}
	s.logger.Info("checked in",
		zap.String("username", username),
		zap.String("log_id", log.ID),
		zap.String("job", jobName))
	return log, nil
}

// checkOutAllowed validates the transition of log by user to loc
func (s *sessionService) checkOutAllowed(log *model.WorkLog, user model.User, loc model.Location) error {
	if log == nil {
		return ErrLogNotFound
	}
	if !user.IsAdmin() && log.Username != user.Username {
		return ErrForbidden
	}
	if log.Status != model.StatusCheckedIn {
		return ErrInvalidState
	}
	if s.opts.EnforceProximity && !geo.IsCheckoutAllowed(log.CheckInLocation, loc, s.opts.MaxMeters) {
		return ErrOutOfRange
	}
	return nil
}

func (s *sessionService) CheckOut(ctx context.Context, user model.User, logID string, req model.CheckOutRequest) (*model.WorkLog, error) {
	if err := validateLocation(req.Location); err != nil {
		return nil, err
	}
	loc := *req.Location

	// Validate first so that enrichment is only spent on a permitted transition
	log, err := s.repo.FindByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to find work log for check-out: %w", err)
	}
	if err := s.checkOutAllowed(log, user, loc); err != nil {
		return nil, err
	}

	summary := req.AISummary
	if summary != nil && strings.TrimSpace(*summary) == "" {
		summary = nil
	}
	if summary == nil {
		summary = s.summarize(ctx, log.JobName, s.opts.Now().Sub(log.CheckInTime))
	}
	place := s.placeName(ctx, loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err = s.repo.FindByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to find work log for check-out: %w", err)
	}
	if err := s.checkOutAllowed(log, user, loc); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	if now.Before(log.CheckInTime) {
		// Clock went backwards; keep checkInTime <= checkOutTime
		now = log.CheckInTime
	}
	log.Status = model.StatusCheckedOut
	log.CheckOutTime = &now
	log.CheckOutLocation = &loc
	log.CheckOutPlace = place
	log.AISummary = summary

	if err := s.repo.Replace(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to save check-out: %w", err)
	}
	s.logger.Info("checked out",
		zap.String("username", log.Username),
		zap.String("log_id", log.ID),
		zap.Duration("worked", log.Duration()))
	return log, nil
}

func (s *sessionService) ActiveJob(ctx context.Context, username string) (*model.WorkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeJob(ctx, username)
}

// activeJob returns the first open log of username. Callers hold s.mu.
func (s *sessionService) activeJob(ctx context.Context, username string) (*model.WorkLog, error) {
	logs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}

	var found *model.WorkLog
	open := 0
	for i := range logs {
		if logs[i].Username == username && logs[i].Status == model.StatusCheckedIn {
			if found == nil {
				found = &logs[i]
			}
			open++
		}
	}
	if open > 1 {
		// Integrity problem in the stored data: report it, don't repair it
		s.logger.Error("multiple active jobs for user",
			zap.String("username", username),
			zap.Int("open_logs", open),
			zap.String("using_log_id", found.ID))
	}
	return found, nil
}

// GetLogs returns the user's logs (every log for admins), newest first.
// limit <= 0 means no limit.
func (s *sessionService) GetLogs(ctx context.Context, user model.User, limit int) ([]model.WorkLog, error) {
	logs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}

	visible := make([]model.WorkLog, 0, len(logs))
	for _, l := range logs {
		if user.IsAdmin() || l.Username == user.Username {
			visible = append(visible, l)
		}
	}
	sortNewestFirst(visible)

	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

func (s *sessionService) PreviewCheckout(ctx context.Context, username string, loc model.Location) (*model.CheckoutPreview, error) {
	if err := validateLocation(&loc); err != nil {
		return nil, err
	}
	active, err := s.ActiveJob(ctx, username)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrLogNotFound
	}

	distance := geo.DistanceMeters(active.CheckInLocation, loc)
	return &model.CheckoutPreview{
		Log:            active,
		DistanceMeters: distance,
		MaxMeters:      s.opts.MaxMeters,
		Allowed:        distance <= s.opts.MaxMeters,
	}, nil
}

func (s *sessionService) placeName(ctx context.Context, loc model.Location) *string {
	name, err := s.enricher.PlaceName(ctx, loc)
	if err != nil {
		s.logger.Warn("place name lookup failed", zap.Error(err))
		return nil
	}
	if name == "" {
		return nil
	}
	return &name
}

func (s *sessionService) summarize(ctx context.Context, jobName string, worked time.Duration) *string {
	summary, err := s.enricher.Summarize(ctx, jobName, worked)
	if err != nil {
		s.logger.Warn("work summary generation failed", zap.String("job", jobName), zap.Error(err))
		return nil
	}
	if summary == "" {
		return nil
	}
	return &summary
}

func sortNewestFirst(logs []model.WorkLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CheckInTime.After(logs[j].CheckInTime)
	})
}
