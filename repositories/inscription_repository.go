package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrInscriptionNotFound      = errors.New("inscription not found")
	ErrInscriptionConflict      = errors.New("already registered in this tournament")
	ErrInscriptionInvalidTarget = errors.New("inscription references a missing tournament, player or couple")
)

type InscriptionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, inscription *models.Inscription) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Inscription, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Inscription, error)
	// FindForPlayer finds the player's inscription, individual or through any couple.
	FindForPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Inscription, error)
	// CountPlayers counts registered players: two per couple, one per individual.
	CountPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresInscriptionRepository struct {
	db *sql.DB
}

func NewPostgresInscriptionRepository(db *sql.DB) InscriptionRepository {
	return &postgresInscriptionRepository{db: db}
}

const inscriptionColumns = `i.id, i.tournament_id, i.player_id, i.couple_id, i.created_at`

func scanInscription(row rowScanner) (*models.Inscription, error) {
	var i models.Inscription
	if err := row.Scan(&i.ID, &i.TournamentID, &i.PlayerID, &i.CoupleID, &i.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInscriptionNotFound
		}
		return nil, fmt.Errorf("failed to scan inscription: %w", err)
	}
	return &i, nil
}

func (r *postgresInscriptionRepository) Create(ctx context.Context, exec SQLExecutor, i *models.Inscription) error {
	query := `
		INSERT INTO inscriptions (tournament_id, player_id, couple_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query, i.TournamentID, i.PlayerID, i.CoupleID).
		Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrInscriptionConflict
			case pqForeignKeyViolation, pqCheckViolation:
				return ErrInscriptionInvalidTarget
			}
		}
		return fmt.Errorf("failed to create inscription: %w", err)
	}
	return nil
}

func (r *postgresInscriptionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Inscription, error) {
	query := `SELECT ` + inscriptionColumns + ` FROM inscriptions i WHERE i.id = $1`
	return scanInscription(executor(exec, r.db).QueryRowContext(ctx, query, id))
}

func (r *postgresInscriptionRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(exec, r.db).ExecContext(ctx, `DELETE FROM inscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inscription %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrInscriptionNotFound)
}

func (r *postgresInscriptionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Inscription, error) {
	query := `SELECT ` + inscriptionColumns + ` FROM inscriptions i WHERE i.tournament_id = $1 ORDER BY i.created_at, i.id`
	rows, err := executor(exec, r.db).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inscriptions for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	inscriptions := make([]*models.Inscription, 0)
	for rows.Next() {
		i, err := scanInscription(rows)
		if err != nil {
			return nil, err
		}
		inscriptions = append(inscriptions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inscription rows: %w", err)
	}
	return inscriptions, nil
}

func (r *postgresInscriptionRepository) FindForPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Inscription, error) {
	query := `
		SELECT ` + inscriptionColumns + `
		FROM inscriptions i
		LEFT JOIN couples c ON c.id = i.couple_id
		WHERE i.tournament_id = $1
		  AND (i.player_id = $2 OR c.player1_id = $2 OR c.player2_id = $2)
		ORDER BY i.id
		LIMIT 1`
	return scanInscription(executor(exec, r.db).QueryRowContext(ctx, query, tournamentID, playerID))
}

func (r *postgresInscriptionRepository) CountPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN couple_id IS NOT NULL THEN 2 ELSE 1 END), 0)
		FROM inscriptions WHERE tournament_id = $1`
	var count int
	if err := executor(exec, r.db).QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}
