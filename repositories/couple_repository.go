package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrCoupleNotFound        = errors.New("couple not found")
	ErrCoupleSamePlayer      = errors.New("a couple needs two different players")
	ErrCouplePlayerNotExists = errors.New("couple player does not exist")
)

type CoupleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, couple *models.Couple) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Couple, error)
	FindByPlayers(ctx context.Context, exec SQLExecutor, player1ID, player2ID int) (*models.Couple, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Couple, error)
}

type postgresCoupleRepository struct {
	db *sql.DB
}

func NewPostgresCoupleRepository(db *sql.DB) CoupleRepository {
	return &postgresCoupleRepository{db: db}
}

const coupleColumns = `id, player1_id, player2_id, created_at`

func (r *postgresCoupleRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Couple) error {
	query := `INSERT INTO couples (player1_id, player2_id) VALUES ($1, $2) RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query, c.Player1ID, c.Player2ID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch {
			case pqErr.Code == pqCheckViolation && pqErr.Constraint == "chk_couple_distinct_players":
				return ErrCoupleSamePlayer
			case pqErr.Code == pqForeignKeyViolation:
				return ErrCouplePlayerNotExists
			}
		}
		return fmt.Errorf("failed to create couple: %w", err)
	}
	return nil
}

func scanCouple(row rowScanner) (*models.Couple, error) {
	var c models.Couple
	if err := row.Scan(&c.ID, &c.Player1ID, &c.Player2ID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to scan couple: %w", err)
	}
	return &c, nil
}

func (r *postgresCoupleRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples WHERE id = $1`
	return scanCouple(executor(exec, r.db).QueryRowContext(ctx, query, id))
}

// FindByPlayers matches the pair in either order.
func (r *postgresCoupleRepository) FindByPlayers(ctx context.Context, exec SQLExecutor, player1ID, player2ID int) (*models.Couple, error) {
	query := `
		SELECT ` + coupleColumns + ` FROM couples
		WHERE (player1_id = $1 AND player2_id = $2) OR (player1_id = $2 AND player2_id = $1)
		ORDER BY id LIMIT 1`
	return scanCouple(executor(exec, r.db).QueryRowContext(ctx, query, player1ID, player2ID))
}

func (r *postgresCoupleRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Couple, error) {
	if len(ids) == 0 {
		return []*models.Couple{}, nil
	}
	query := `SELECT ` + coupleColumns + ` FROM couples WHERE id = ANY($1) ORDER BY id`
	rows, err := executor(exec, r.db).QueryContext(ctx, query, intsToInt64s(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list couples: %w", err)
	}
	defer rows.Close()

	couples := make([]*models.Couple, 0, len(ids))
	for rows.Next() {
		c, err := scanCouple(rows)
		if err != nil {
			return nil, err
		}
		couples = append(couples, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating couple rows: %w", err)
	}
	return couples, nil
}
