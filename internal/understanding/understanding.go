package understanding

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/db"
)

// Understanding captures the user's raw strategic input plus the light
// structure extracted from it. It anchors every journey session.
type Understanding struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserInput    string    `json:"user_input"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Create(ctx context.Context, u *Understanding) (*Understanding, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO understandings (id, user_id, user_input, business_name, industry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.UserInput, u.BusinessName, u.Industry, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert understanding: %w", err)
	}
	return u, nil
}

// GetByID returns the understanding or (nil, nil) when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Understanding, error) {
	var u Understanding
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, user_input, business_name, industry, created_at, updated_at
		FROM understandings WHERE id = ?`, id).
		Scan(&u.ID, &u.UserID, &u.UserInput, &u.BusinessName, &u.Industry, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan understanding: %w", err)
	}
	return &u, nil
}
