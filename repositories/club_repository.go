package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrClubNotFound      = errors.New("club not found")
	ErrClubNameConflict  = errors.New("club name already taken")
	ErrClubOwnerConflict = errors.New("user already owns a club")
)

type ClubRepository interface {
	Create(ctx context.Context, exec SQLExecutor, club *models.Club) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Club, error)
	GetByOwnerID(ctx context.Context, exec SQLExecutor, ownerID int) (*models.Club, error)
	List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Club, error)
	Update(ctx context.Context, exec SQLExecutor, club *models.Club) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, clubID int, logoKey *string) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `id, owner_id, name, address, description, phone, logo_key, created_at`

func mapClubConstraintError(err error) error {
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
		switch pqErr.Constraint {
		case "clubs_name_key":
			return ErrClubNameConflict
		case "clubs_owner_id_key":
			return ErrClubOwnerConflict
		}
	}
	return nil
}

func (r *postgresClubRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Club) error {
	query := `
		INSERT INTO clubs (owner_id, name, address, description, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query, c.OwnerID, c.Name, c.Address, c.Description, c.Phone).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if mapped := mapClubConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

func scanClub(row rowScanner) (*models.Club, error) {
	var c models.Club
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Address, &c.Description, &c.Phone, &c.LogoKey, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club: %w", err)
	}
	return &c, nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`
	return scanClub(executor(exec, r.db).QueryRowContext(ctx, query, id))
}

func (r *postgresClubRepository) GetByOwnerID(ctx context.Context, exec SQLExecutor, ownerID int) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE owner_id = $1`
	return scanClub(executor(exec, r.db).QueryRowContext(ctx, query, ownerID))
}

func (r *postgresClubRepository) List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := executor(exec, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club rows: %w", err)
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, exec SQLExecutor, c *models.Club) error {
	query := `
		UPDATE clubs SET name = $1, address = $2, description = $3, phone = $4
		WHERE id = $5`

	result, err := executor(exec, r.db).ExecContext(ctx, query, c.Name, c.Address, c.Description, c.Phone, c.ID)
	if err != nil {
		if mapped := mapClubConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update club %d: %w", c.ID, err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, clubID int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`
	result, err := executor(exec, r.db).ExecContext(ctx, query, logoKey, clubID)
	if err != nil {
		return fmt.Errorf("failed to update club logo key: %w", err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}
