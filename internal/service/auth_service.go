package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"worktime/internal/model"
	"worktime/internal/repository"
	"worktime/internal/utils"
)

// AdminPolicy is the set of usernames that are always administrators.
// Matching is case-insensitive.
type AdminPolicy struct {
	names map[string]string // lower-cased -> configured spelling
}

// NewAdminPolicy builds a policy from configured usernames
func NewAdminPolicy(usernames []string) AdminPolicy {
	p := AdminPolicy{names: make(map[string]string, len(usernames))}
	for _, n := range usernames {
		n = strings.TrimSpace(n)
		if n != "" {
			p.names[strings.ToLower(n)] = n
		}
	}
	return p
}

// Match returns the configured spelling of an administrator name
func (p AdminPolicy) Match(username string) (string, bool) {
	name, ok := p.names[strings.ToLower(strings.TrimSpace(username))]
	return name, ok
}

// AuthService resolves a username on this device into a User
type AuthService interface {
	Register(ctx context.Context, username string) (*model.User, string, error)
	Login(ctx context.Context, username string) (*model.User, string, error)
	DeviceID(ctx context.Context) (string, error)
}

type authService struct {
	users   repository.UserRepository
	devices repository.DeviceRepository
	admins  AdminPolicy
	jwtUtil *utils.JWTUtil
	logger  *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, devices repository.DeviceRepository, admins AdminPolicy, jwtUtil *utils.JWTUtil, logger *zap.Logger) AuthService {
	return &authService{
		users:   users,
		devices: devices,
		admins:  admins,
		jwtUtil: jwtUtil,
		logger:  logger,
	}
}

func (s *authService) DeviceID(ctx context.Context) (string, error) {
	return s.devices.Fingerprint(ctx)
}

// Register binds username to this device, replacing any previous binding
func (s *authService) Register(ctx context.Context, username string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", ErrMissingUsername
	}

	deviceID, err := s.devices.Fingerprint(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve device: %w", err)
	}

	role := model.RoleUser
	if _, ok := s.admins.Match(username); ok {
		role = model.RoleAdmin
	}

	user := &model.User{Username: username, DeviceID: deviceID, Role: role}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to bind user to device: %w", err)
	}
	s.logger.Info("user registered on device", zap.String("username", username), zap.String("role", role))

	return s.withToken(user)
}

// Login checks username against the device binding. Administrators skip the
// binding entirely and do not replace it.
func (s *authService) Login(ctx context.Context, username string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", ErrMissingUsername
	}

	deviceID, err := s.devices.Fingerprint(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve device: %w", err)
	}

	if name, ok := s.admins.Match(username); ok {
		return s.withToken(&model.User{Username: name, DeviceID: deviceID, Role: model.RoleAdmin})
	}

	user, err := s.users.Current(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load bound user: %w", err)
	}
	if user == nil {
		return nil, "", ErrNotRegistered
	}
	if user.Username != username {
		return nil, "", ErrUsernameMismatch
	}
	if user.DeviceID != deviceID {
		return nil, "", ErrDeviceMismatch
	}

	// Records written before roles existed default to USER
	if user.Role == "" {
		user.Role = model.RoleUser
		if err := s.users.Save(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to migrate user role: %w", err)
		}
		s.logger.Info("migrated missing role", zap.String("username", username))
	}

	return s.withToken(user)
}

func (s *authService) withToken(user *model.User) (*model.User, string, error) {
	token, err := s.jwtUtil.GenerateToken(user.Username, user.Role, user.DeviceID)
	if err != nil {
		return user, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}
