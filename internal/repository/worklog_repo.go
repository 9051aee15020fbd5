package repository

import (
	"context"
	"fmt"

	"worktime/internal/model"
	"worktime/internal/store"
)

// WorkLogRepository owns the append-only log collection. Every call reads
// (and for mutations rewrites) the whole collection.
type WorkLogRepository interface {
	// FindAll returns a snapshot in insertion order
	FindAll(ctx context.Context) ([]model.WorkLog, error)
	// FindByID returns nil, nil when the id is unknown
	FindByID(ctx context.Context, id string) (*model.WorkLog, error)
	Append(ctx context.Context, log *model.WorkLog) error
	// Replace overwrites the log with the same id, keeping its position
	Replace(ctx context.Context, log *model.WorkLog) error
}

type workLogRepository struct {
	kv store.KV
}

// NewWorkLogRepository creates a new WorkLogRepository
func NewWorkLogRepository(kv store.KV) WorkLogRepository {
	return &workLogRepository{kv: kv}
}

func (r *workLogRepository) FindAll(ctx context.Context) ([]model.WorkLog, error) {
	var logs []model.WorkLog
	if _, err := loadJSON(ctx, r.kv, KeyLogs, &logs); err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}
	return logs, nil
}

func (r *workLogRepository) FindByID(ctx context.Context, id string) (*model.WorkLog, error) {
	logs, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].ID == id {
			return &logs[i], nil
		}
	}
	return nil, nil
}

func (r *workLogRepository) Append(ctx context.Context, log *model.WorkLog) error {
	logs, err := r.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, l := range logs {
		if l.ID == log.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, log.ID)
		}
	}
	logs = append(logs, *log)
	if err := saveJSON(ctx, r.kv, KeyLogs, logs); err != nil {
		return fmt.Errorf("failed to append work log: %w", err)
	}
	return nil
}

func (r *workLogRepository) Replace(ctx context.Context, log *model.WorkLog) error {
	logs, err := r.FindAll(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range logs {
		if logs[i].ID == log.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: work log %s", ErrNotFound, log.ID)
	}
	logs[idx] = *log
	if err := saveJSON(ctx, r.kv, KeyLogs, logs); err != nil {
		return fmt.Errorf("failed to update work log: %w", err)
	}
	return nil
}
