package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchInvalidResult   = errors.New("match result violates a constraint")
	ErrMatchInvalidRelation = errors.New("match references a missing tournament, zone or couple")
)

type ListMatchesFilter struct {
	Round  *models.Round
	ZoneID *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateCouples(ctx context.Context, exec SQLExecutor, matchID int, couple1ID, couple2ID *int) error
	UpdateNextMatch(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, nextSlot *int) error
	UpdateStatusAndCourt(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus, court *int) error
	CountElimination(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchSelect = `
		SELECT m.id, m.tournament_id, m.round, m.zone_id, z.name, m.couple1_id, m.couple2_id,
		       m.result_couple1, m.result_couple2, m.status, m.court, m.winner_id,
		       m.order_in_round, m.bracket_uid, m.next_match_id, m.next_slot, m.created_at
		FROM matches m
		LEFT JOIN zones z ON z.id = m.zone_id`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.ZoneID, &m.Zone, &m.Couple1ID, &m.Couple2ID,
		&m.Result1, &m.Result2, &m.Status, &m.Court, &m.WinnerID,
		&m.OrderInRound, &m.BracketUID, &m.NextMatchID, &m.NextSlot, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) handleMatchError(err error, op string) error {
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqCheckViolation:
			return ErrMatchInvalidResult
		case pqForeignKeyViolation:
			return ErrMatchInvalidRelation
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (
			tournament_id, round, zone_id, couple1_id, couple2_id, status,
			order_in_round, bracket_uid, next_match_id, next_slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		m.TournamentID, m.Round, m.ZoneID, m.Couple1ID, m.Couple2ID, m.Status,
		m.OrderInRound, m.BracketUID, m.NextMatchID, m.NextSlot,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return r.handleMatchError(err, "create match")
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return scanMatch(executor(exec, r.db).QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error) {
	query := matchSelect + ` WHERE m.tournament_id = $1`
	args := []interface{}{tournamentID}
	argID := 2

	if filter.Round != nil {
		query += fmt.Sprintf(" AND m.round = $%d", argID)
		args = append(args, *filter.Round)
		argID++
	}
	if filter.ZoneID != nil {
		query += fmt.Sprintf(" AND m.zone_id = $%d", argID)
		args = append(args, *filter.ZoneID)
	}
	query += " ORDER BY m.zone_id NULLS LAST, m.order_in_round, m.id"

	rows, err := executor(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

// UpdateResult persists scores, status and winner of the match.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET result_couple1 = $1, result_couple2 = $2, status = $3, winner_id = $4
		WHERE id = $5`
	result, err := executor(exec, r.db).ExecContext(ctx, query, m.Result1, m.Result2, m.Status, m.WinnerID, m.ID)
	if err != nil {
		return r.handleMatchError(err, fmt.Sprintf("update result of match %d", m.ID))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateCouples(ctx context.Context, exec SQLExecutor, matchID int, couple1ID, couple2ID *int) error {
	query := `UPDATE matches SET couple1_id = $1, couple2_id = $2 WHERE id = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, couple1ID, couple2ID, matchID)
	if err != nil {
		return r.handleMatchError(err, fmt.Sprintf("update couples of match %d", matchID))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatch(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, nextSlot *int) error {
	query := `UPDATE matches SET next_match_id = $1, next_slot = $2 WHERE id = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, nextMatchID, nextSlot, matchID)
	if err != nil {
		return r.handleMatchError(err, fmt.Sprintf("link match %d", matchID))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatusAndCourt(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus, court *int) error {
	query := `UPDATE matches SET status = $1, court = $2 WHERE id = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, status, court, matchID)
	if err != nil {
		return r.handleMatchError(err, fmt.Sprintf("update status of match %d", matchID))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountElimination(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND round <> $2`
	var count int
	if err := executor(exec, r.db).QueryRowContext(ctx, query, tournamentID, models.RoundZone).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bracket matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}
