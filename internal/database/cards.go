package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

var ErrSavedCardNotFound = errors.New("saved card not found")

const (
	SelectSavedCardsQuery = `
		SELECT
			id,
			user_id::text,
			card_type,
			bank,
			masked_number,
			created_at
		FROM
			saved_cards
		WHERE
			user_id = $1
		ORDER BY
			id
	`
	// UpsertSavedCardQuery refreshes the card details when the gateway hands
	// out a token the user already saved.
	UpsertSavedCardQuery = `
		INSERT INTO
			saved_cards (user_id, card_type, bank, masked_number, token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, token) DO UPDATE SET
			card_type = excluded.card_type,
			bank = excluded.bank,
			masked_number = excluded.masked_number
		RETURNING id, created_at
	`
	DeleteSavedCardQuery = `
		DELETE FROM
			saved_cards
		WHERE
			id = $1 AND user_id = $2
	`
)

// FindSavedCards lists the cards of userID without their gateway tokens.
func (d *Database) FindSavedCards(ctx context.Context, userID string) ([]models.SavedCard, error) {
	rows, err := d.db.Query(ctx, SelectSavedCardsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved cards: %w", err)
	}
	defer rows.Close()

	result := []models.SavedCard{}
	for rows.Next() {
		var c models.SavedCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.CardType, &c.Bank, &c.MaskedNumber, &c.CreatedAt.Time); err != nil {
			return nil, fmt.Errorf("failed to scan saved card row: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved cards: %w", err)
	}

	return result, nil
}

func (d *Database) CreateSavedCard(ctx context.Context, card *models.SavedCard) error {
	err := d.db.QueryRow(ctx, UpsertSavedCardQuery,
		card.UserID, card.CardType, card.Bank, card.MaskedNumber, card.Token,
	).Scan(&card.ID, &card.CreatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

func (d *Database) DeleteSavedCard(ctx context.Context, userID string, id int64) error {
	tag, err := d.db.Exec(ctx, DeleteSavedCardQuery, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSavedCardNotFound
	}
	return nil
}
