package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

var (
	ErrAddressNotFound   = errors.New("address not found")
	ErrInvalidAddress    = errors.New("address text is required")
	ErrSavedCardNotFound = errors.New("saved card not found")
	ErrInvalidCard       = errors.New("card needs a gateway token and a masked number")
)

// maxVisibleCardDigits allows the first six and last four digits of a PAN.
const maxVisibleCardDigits = 10

type ProfileService struct {
	storage profileStorage
}

type profileStorage interface {
	FindProfile(ctx context.Context, userID string) (*database.ProfileDB, error)

	UpsertProfile(ctx context.Context, userID string, update models.ProfileUpdate) error

	FindAddresses(ctx context.Context, userID string) ([]models.Address, error)

	CreateAddress(ctx context.Context, address *models.Address) error

	DeleteAddress(ctx context.Context, userID string, id int64) error

	FindSavedCards(ctx context.Context, userID string) ([]models.SavedCard, error)

	CreateSavedCard(ctx context.Context, card *models.SavedCard) error

	DeleteSavedCard(ctx context.Context, userID string, id int64) error
}

func NewProfileService(storage profileStorage) *ProfileService {
	return &ProfileService{storage: storage}
}

// GetProfile returns an empty profile for users that never saved one.
func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := ps.storage.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &models.Profile{UserID: userID}, nil
	}
	return &profile.Profile, nil
}

// UpdateProfile changes only the fields present in update.
func (ps *ProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	if err := ps.storage.UpsertProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return ps.GetProfile(ctx, userID)
}

func (ps *ProfileService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	addresses, err := ps.storage.FindAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if addresses == nil {
		return []models.Address{}, nil
	}
	return addresses, nil
}

// CreateAddress saves address. The first address of a user becomes the
// default one.
func (ps *ProfileService) CreateAddress(ctx context.Context, address models.Address) (*models.Address, error) {
	address.Address = strings.TrimSpace(address.Address)
	if address.Address == "" {
		return nil, ErrInvalidAddress
	}

	if !address.IsDefault {
		existing, err := ps.storage.FindAddresses(ctx, address.UserID)
		if err != nil {
			return nil, err
		}
		address.IsDefault = len(existing) == 0
	}

	if err := ps.storage.CreateAddress(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (ps *ProfileService) DeleteAddress(ctx context.Context, userID string, addressID int64) error {
	if err := ps.storage.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, database.ErrAddressNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

func (ps *ProfileService) ListSavedCards(ctx context.Context, userID string) ([]models.SavedCard, error) {
	cards, err := ps.storage.FindSavedCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		return []models.SavedCard{}, nil
	}
	return cards, nil
}

// SaveCard stores a gateway card token. The returned card carries no token.
func (ps *ProfileService) SaveCard(ctx context.Context, card models.SavedCard) (*models.SavedCard, error) {
	if err := validateCard(&card); err != nil {
		return nil, err
	}

	if err := ps.storage.CreateSavedCard(ctx, &card); err != nil {
		return nil, err
	}

	card.Token = ""
	return &card, nil
}

func (ps *ProfileService) DeleteSavedCard(ctx context.Context, userID string, cardID int64) error {
	if err := ps.storage.DeleteSavedCard(ctx, userID, cardID); err != nil {
		if errors.Is(err, database.ErrSavedCardNotFound) {
			return ErrSavedCardNotFound
		}
		return fmt.Errorf("failed to delete saved card: %w", err)
	}
	return nil
}

// validateCard refuses anything that could be a full card number.
func validateCard(card *models.SavedCard) error {
	card.Token = strings.TrimSpace(card.Token)
	card.MaskedNumber = strings.TrimSpace(card.MaskedNumber)
	card.CardType = strings.ToLower(strings.TrimSpace(card.CardType))

	if card.Token == "" || card.MaskedNumber == "" {
		return ErrInvalidCard
	}

	digits := 0
	for _, r := range card.MaskedNumber {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits > maxVisibleCardDigits {
		return fmt.Errorf("%w: number is not masked", ErrInvalidCard)
	}
	return nil
}
