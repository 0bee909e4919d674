package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
	"github.com/lib/pq"
)

var (
	ErrZoneNotFound     = errors.New("zone not found")
	ErrZoneNameConflict = errors.New("zone name already used in this tournament")
)

type ZoneRepository interface {
	// Create inserts the zone and its couples in seating order.
	Create(ctx context.Context, exec SQLExecutor, zone *models.Zone) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Zone, error)
}

type postgresZoneRepository struct {
	db *sql.DB
}

func NewPostgresZoneRepository(db *sql.DB) ZoneRepository {
	return &postgresZoneRepository{db: db}
}

func (r *postgresZoneRepository) Create(ctx context.Context, exec SQLExecutor, z *models.Zone) error {
	ex := executor(exec, r.db)

	err := ex.QueryRowContext(ctx,
		`INSERT INTO zones (tournament_id, name) VALUES ($1, $2) RETURNING id`,
		z.TournamentID, z.Name,
	).Scan(&z.ID)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "zones_tournament_id_name_key" {
			return ErrZoneNameConflict
		}
		return fmt.Errorf("failed to create zone %s: %w", z.Name, err)
	}

	for pos, coupleID := range z.CoupleIDs {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO zone_couples (zone_id, couple_id, position) VALUES ($1, $2, $3)`,
			z.ID, coupleID, pos+1,
		)
		if err != nil {
			return fmt.Errorf("failed to add couple %d to zone %s: %w", coupleID, z.Name, err)
		}
	}
	return nil
}

func (r *postgresZoneRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Zone, error) {
	query := `
		SELECT z.id, z.tournament_id, z.name,
		       COALESCE(array_agg(zc.couple_id ORDER BY zc.position) FILTER (WHERE zc.couple_id IS NOT NULL), '{}')
		FROM zones z
		LEFT JOIN zone_couples zc ON zc.zone_id = z.id
		WHERE z.tournament_id = $1
		GROUP BY z.id
		ORDER BY z.id`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	zones := make([]*models.Zone, 0)
	for rows.Next() {
		var z models.Zone
		var couples pq.Int64Array
		if err := rows.Scan(&z.ID, &z.TournamentID, &z.Name, &couples); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		z.CoupleIDs = int64sToInts(couples)
		zones = append(zones, &z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone rows: %w", err)
	}
	return zones, nil
}
