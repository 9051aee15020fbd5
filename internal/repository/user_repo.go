package repository

import (
	"context"
	"fmt"

	"worktime/internal/model"
	"worktime/internal/store"
)

// UserRepository is the single-slot store of the user bound to this device
type UserRepository interface {
	// Current returns nil, nil when nobody is bound
	Current(ctx context.Context) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

type userRepository struct {
	kv store.KV
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(kv store.KV) UserRepository {
	return &userRepository{kv: kv}
}

func (r *userRepository) Current(ctx context.Context) (*model.User, error) {
	var user model.User
	ok, err := loadJSON(ctx, r.kv, KeyUser, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to load bound user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	if err := saveJSON(ctx, r.kv, KeyUser, user); err != nil {
		return fmt.Errorf("failed to save bound user: %w", err)
	}
	return nil
}
