package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"go.uber.org/zap"
)

var ErrPasswordIsTooShort = errors.New("password must be at least 6 characters")

const minPasswordLength = 6

// PasswordService runs password recovery: a reset request mails a link with
// a one hour recovery token, and the token authorizes one new password. The
// token carries a stamp of the current hash, so any password change retires it.
type PasswordService struct {
	storage    passwordStorage
	tokens     recoveryTokens
	dispatcher dispatcher
	appURL     string
}

type passwordStorage interface {
	FindUser(ctx context.Context, login string) (*database.UserDB, error)

	FindUserByID(ctx context.Context, id string) (*database.UserDB, error)

	UpdateUserHash(ctx context.Context, id, hash string) error
}

type recoveryTokens interface {
	GenerateRecoveryToken(userID, stamp string) (string, error)

	ValidateRecoveryToken(token string) (userID, stamp string, err error)
}

func NewPasswordService(storage passwordStorage, tokens recoveryTokens, dispatcher dispatcher, appURL string) *PasswordService {
	return &PasswordService{
		storage:    storage,
		tokens:     tokens,
		dispatcher: dispatcher,
		appURL:     appURL,
	}
}

// RequestReset mails a recovery link to email. Unknown addresses succeed
// silently so the endpoint does not reveal who is registered.
func (ps *PasswordService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrInvalidCredentials
	}

	user, err := ps.storage.FindUser(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Log.Info("password reset for unknown login")
		return nil
	}

	token, err := ps.tokens.GenerateRecoveryToken(user.ID, hashStamp(user.Hash))
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/update-password?token=%s", ps.appURL, url.QueryEscape(token))
	ps.dispatcher.SendEmail(Email{
		To:      user.Login,
		Subject: "Reset your password",
		Text:    "Follow this link within one hour to choose a new password: " + link,
		HTML:    fmt.Sprintf(`<p>Follow <a href="%s">this link</a> within one hour to choose a new password.</p>`, link),
	})

	logger.Log.Info("password reset requested", zap.String("userID", user.ID))
	return nil
}

func (ps *PasswordService) UpdatePassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordIsTooShort
	}

	userID, stamp, err := ps.tokens.ValidateRecoveryToken(token)
	if err != nil {
		return err
	}

	user, err := ps.storage.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserIsNotExist
	}
	if subtle.ConstantTimeCompare([]byte(stamp), []byte(hashStamp(user.Hash))) != 1 {
		return fmt.Errorf("%w: recovery link was already used", ErrTokenIsInvalid)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := ps.storage.UpdateUserHash(ctx, userID, hash); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return ErrUserIsNotExist
		}
		return err
	}

	logger.Log.Info("password updated", zap.String("userID", userID))
	return nil
}

// hashStamp is a short digest of a bcrypt hash. bcrypt salts every hash, so
// the stamp changes with each new password even if the password repeats.
func hashStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
