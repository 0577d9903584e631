package db

import (
	"context"
	"fmt"
	"time"
)

type Conversion struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`

	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) AddConversion(ctx context.Context, userID int, text, audioURL string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO conversions (user_id, text, audio_url)
		VALUES ($1, $2, $3)
	`, userID, text, audioURL)
	if err != nil {
		return parseErr(fmt.Errorf("failed to add conversion: %w", err))
	}

	return nil
}

// GetConversions returns the user's history, newest first.
func (db *DB) GetConversions(ctx context.Context, userID int) ([]Conversion, error) {
	rows, err := db.Query(ctx, `
		SELECT
			id,
			user_id,
			text,
			audio_url,
			created_at
		FROM conversions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, parseErr(fmt.Errorf("failed to get conversions: %w", err))
	}
	defer rows.Close()

	conversions := []Conversion{}

	for rows.Next() {
		var conversion Conversion

		if err := rows.Scan(
			&conversion.ID,
			&conversion.UserID,
			&conversion.Text,
			&conversion.AudioURL,
			&conversion.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}

		conversions = append(conversions, conversion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversions: %w", err)
	}

	return conversions, nil
}

func (db *DB) ClearConversions(ctx context.Context, userID int) error {
	_, err := db.Exec(ctx, `
		DELETE FROM conversions
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return parseErr(fmt.Errorf("failed to clear conversions: %w", err))
	}

	return nil
}
