package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/jackc/pgx/v5"
)

var ErrAddressNotFound = errors.New("address not found")

const (
	SelectProfileQuery = `
		SELECT
			user_id::text,
			full_name,
			phone,
			address,
			avatar_url,
			vehicle_number
		FROM
			profiles
		WHERE
			user_id = $1
	`
	// UpsertProfileQuery keeps the stored value of every NULL argument.
	UpsertProfileQuery = `
		INSERT INTO
			profiles (user_id, full_name, phone, address, avatar_url, vehicle_number)
		VALUES ($1, coalesce($2, ''), coalesce($3, ''), coalesce($4, ''), coalesce($5, ''), coalesce($6, ''))
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = coalesce($2, profiles.full_name),
			phone = coalesce($3, profiles.phone),
			address = coalesce($4, profiles.address),
			avatar_url = coalesce($5, profiles.avatar_url),
			vehicle_number = coalesce($6, profiles.vehicle_number)
	`
	SelectAddressesQuery = `
		SELECT
			id,
			user_id::text,
			label,
			recipient,
			phone,
			address,
			is_default
		FROM
			addresses
		WHERE
			user_id = $1
		ORDER BY
			is_default DESC, id
	`
	ClearDefaultAddressQuery = `
		UPDATE
			addresses
		SET
			is_default = FALSE
		WHERE
			user_id = $1 AND is_default
	`
	InsertAddressQuery = `
		INSERT INTO
			addresses (user_id, label, recipient, phone, address, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	DeleteAddressQuery = `
		DELETE FROM
			addresses
		WHERE
			id = $1 AND user_id = $2
	`
)

type ProfileDB struct {
	models.Profile
}

// FindProfile returns nil without error when the user has no profile row.
func (d *Database) FindProfile(ctx context.Context, userID string) (*ProfileDB, error) {
	p := &ProfileDB{}

	err := d.db.QueryRow(ctx, SelectProfileQuery, userID).
		Scan(&p.UserID, &p.FullName, &p.Phone, &p.Address, &p.AvatarURL, &p.VehicleNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return p, nil
}

func (d *Database) UpsertProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	_, err := d.db.Exec(ctx, UpsertProfileQuery,
		userID, update.FullName, update.Phone, update.Address, update.AvatarURL, update.VehicleNumber)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (d *Database) FindAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	rows, err := d.db.Query(ctx, SelectAddressesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	result := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Phone, &a.Address, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan address row: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}

	return result, nil
}

// CreateAddress stores address; a new default address demotes the previous one.
func (d *Database) CreateAddress(ctx context.Context, address *models.Address) error {
	err := d.inTx(ctx, func(tx pgx.Tx) error {
		if address.IsDefault {
			if _, err := tx.Exec(ctx, ClearDefaultAddressQuery, address.UserID); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, InsertAddressQuery,
			address.UserID, address.Label, address.Recipient, address.Phone, address.Address, address.IsDefault,
		).Scan(&address.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (d *Database) DeleteAddress(ctx context.Context, userID string, id int64) error {
	tag, err := d.db.Exec(ctx, DeleteAddressQuery, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}
