package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrCoachNotFound     = errors.New("coach not found")
	ErrCoachUserConflict = errors.New("user already has a coach profile")
	ErrCoachClubNotFound = errors.New("coach club does not exist")
)

type CoachRepository interface {
	Create(ctx context.Context, exec SQLExecutor, coach *models.Coach) error
	GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Coach, error)
}

type postgresCoachRepository struct {
	db *sql.DB
}

func NewPostgresCoachRepository(db *sql.DB) CoachRepository {
	return &postgresCoachRepository{db: db}
}

func (r *postgresCoachRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Coach) error {
	query := `
		INSERT INTO coaches (user_id, club_id, bio)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query, c.UserID, c.ClubID, c.Bio).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrCoachUserConflict
			case pqForeignKeyViolation:
				return ErrCoachClubNotFound
			}
		}
		return fmt.Errorf("failed to create coach: %w", err)
	}
	return nil
}

func (r *postgresCoachRepository) GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Coach, error) {
	query := `SELECT id, user_id, club_id, bio, created_at FROM coaches WHERE user_id = $1`

	var c models.Coach
	err := executor(exec, r.db).QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.ClubID, &c.Bio, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach by user id %d: %w", userID, err)
	}
	return &c, nil
}
