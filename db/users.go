package db

import (
	"context"
	"fmt"
)

type User struct {
	ID int

	Username     string
	PasswordHash string
}

func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	var user User

	err := db.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash
	`, username, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, parseErr(fmt.Errorf("failed to create user: %w", err))
	}

	return &user, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User

	err := db.QueryRow(ctx, `
		SELECT
			id,
			username,
			password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, parseErr(fmt.Errorf("failed to get user by username: %w", err))
	}

	return &user, nil
}

func (db *DB) GetUserByID(ctx context.Context, id int) (*User, error) {
	var user User

	err := db.QueryRow(ctx, `
		SELECT
			id,
			username,
			password_hash
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, parseErr(fmt.Errorf("failed to get user by id: %w", err))
	}

	return &user, nil
}
