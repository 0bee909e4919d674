package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerUserConflict = errors.New("user already has a player profile")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error)
	List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Player, error)
	ListRanking(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Player, error)
	AddRankingPoints(ctx context.Context, exec SQLExecutor, playerID, points int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, user_id, first_name, last_name, category, ranking_points, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players (user_id, first_name, last_name, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ranking_points, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query, p.UserID, p.FirstName, p.LastName, p.Category).
		Scan(&p.ID, &p.RankingPoints, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "players_user_id_key" {
			return ErrPlayerUserConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Category, &p.RankingPoints, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return scanPlayer(executor(exec, r.db).QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE user_id = $1`
	return scanPlayer(executor(exec, r.db).QueryRowContext(ctx, query, userID))
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`
	return r.list(ctx, exec, query, intsToInt64s(ids))
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY last_name, first_name, id LIMIT $1 OFFSET $2`
	return r.list(ctx, exec, query, limit, offset)
}

func (r *postgresPlayerRepository) ListRanking(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY ranking_points DESC, id ASC LIMIT $1 OFFSET $2`
	return r.list(ctx, exec, query, limit, offset)
}

func (r *postgresPlayerRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := executor(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) AddRankingPoints(ctx context.Context, exec SQLExecutor, playerID, points int) error {
	query := `UPDATE players SET ranking_points = ranking_points + $1 WHERE id = $2`
	result, err := executor(exec, r.db).ExecContext(ctx, query, points, playerID)
	if err != nil {
		return fmt.Errorf("failed to add ranking points: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
