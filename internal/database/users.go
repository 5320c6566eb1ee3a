package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateUser = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
)

const (
	InsertUserQuery = `
		INSERT INTO
			users (login, hash, role)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`
	InsertEmptyProfileQuery = `
		INSERT INTO
			profiles (user_id, full_name)
		VALUES ($1, $2)
	`
	SelectUserQuery = `
		SELECT
			id::text,
			login,
			hash,
			role
		FROM
			users
		WHERE
			login = $1
	`
	SelectUserByIDQuery = `
		SELECT
			id::text,
			login,
			hash,
			role
		FROM
			users
		WHERE
			id = $1
	`
	UpdateUserRoleQuery = `
		UPDATE
			users
		SET
			role = $2
		WHERE
			id = $1
	`
	UpdateUserHashQuery = `
		UPDATE
			users
		SET
			hash = $2
		WHERE
			id = $1
	`
)

type UserDB struct {
	models.User
	FullName string
}

// CreateUser stores the user with an empty profile and sets user.ID.
func (d *Database) CreateUser(ctx context.Context, user *UserDB) error {
	err := d.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, InsertUserQuery, user.Login, user.Hash, user.Role).Scan(&user.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, InsertEmptyProfileQuery, user.ID, user.FullName)
		return err
	})
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUser returns nil without error when no user has this login.
func (d *Database) FindUser(ctx context.Context, login string) (*UserDB, error) {
	return d.findUser(ctx, SelectUserQuery, login)
}

func (d *Database) FindUserByID(ctx context.Context, id string) (*UserDB, error) {
	return d.findUser(ctx, SelectUserByIDQuery, id)
}

func (d *Database) UpdateUserHash(ctx context.Context, id, hash string) error {
	tag, err := d.db.Exec(ctx, UpdateUserHashQuery, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (d *Database) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	tag, err := d.db.Exec(ctx, UpdateUserRoleQuery, id, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (d *Database) findUser(ctx context.Context, query, arg string) (*UserDB, error) {
	user := &UserDB{}

	if err := d.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Login, &user.Hash, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
