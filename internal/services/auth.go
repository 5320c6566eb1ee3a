package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserIsAlreadyRegistered = errors.New("user is already registered")
	ErrUserIsNotExist          = errors.New("user does not exist")
	ErrPasswordIsIncorrect     = errors.New("password is incorrect")
	ErrInvalidCredentials      = errors.New("login and password are required")
	ErrInvalidRole             = errors.New("unknown role")
	ErrRoleChangeForbidden     = errors.New("only suppliers appoint roles")
)

type AuthService struct {
	storage authStorage
}

type authStorage interface {
	CreateUser(ctx context.Context, user *database.UserDB) error

	FindUser(ctx context.Context, login string) (*database.UserDB, error)

	FindUserByID(ctx context.Context, id string) (*database.UserDB, error)

	UpdateUserRole(ctx context.Context, id string, role models.Role) error
}

func NewAuthService(storage authStorage) *AuthService {
	return &AuthService{storage: storage}
}

// Register stores a new customer. Drivers and suppliers are appointed later
// with AssignRole or GrantRole.
func (auth *AuthService) Register(ctx context.Context, user models.UnknownUser) error {
	if err := validateUser(user); err != nil {
		return err
	}

	hash, err := hashPassword(*user.Password)
	if err != nil {
		return err
	}

	record := &database.UserDB{
		User: models.User{
			Login: *user.Login,
			Hash:  hash,
			Role:  models.RoleCustomer,
		},
	}
	if user.FullName != nil {
		record.FullName = *user.FullName
	}

	if err := auth.storage.CreateUser(ctx, record); err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			return ErrUserIsAlreadyRegistered
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (auth *AuthService) Login(ctx context.Context, user models.UnknownUser) error {
	if err := validateUser(user); err != nil {
		return err
	}

	u, err := auth.storage.FindUser(ctx, *user.Login)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if u == nil {
		return ErrUserIsNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(*user.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordIsIncorrect
		}
		return fmt.Errorf("failed to compare passwords: %w", err)
	}

	return nil
}

func (auth *AuthService) GetUser(ctx context.Context, login string) (*models.User, error) {
	user, err := auth.storage.FindUser(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		return nil, ErrUserIsNotExist
	}

	return &user.User, nil
}

func (auth *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := auth.storage.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		return nil, ErrUserIsNotExist
	}

	return &user.User, nil
}

// AssignRole changes the role of another user on behalf of a supplier.
func (auth *AuthService) AssignRole(ctx context.Context, actor models.Actor, userID string, role models.Role) (*models.User, error) {
	if actor.Role != models.RoleSupplier || actor.ID == userID {
		return nil, ErrRoleChangeForbidden
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	if err := auth.updateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	logger.Log.Info("role assigned", zap.String("userID", userID), zap.String("role", string(role)), zap.String("by", actor.ID))
	return auth.GetUserByID(ctx, userID)
}

// GrantRole appoints the user registered as login. It seeds the first
// suppliers at startup, before any supplier can call AssignRole.
func (auth *AuthService) GrantRole(ctx context.Context, login string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	user, err := auth.storage.FindUser(ctx, login)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return ErrUserIsNotExist
	}
	if user.Role == role {
		return nil
	}

	return auth.updateRole(ctx, user.ID, role)
}

func (auth *AuthService) updateRole(ctx context.Context, userID string, role models.Role) error {
	if err := auth.storage.UpdateUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return ErrUserIsNotExist
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func validateUser(user models.UnknownUser) error {
	if user.Login == nil || *user.Login == "" {
		return ErrInvalidCredentials
	}
	if user.Password == nil || *user.Password == "" {
		return ErrInvalidCredentials
	}
	return nil
}
