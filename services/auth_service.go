package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
	"github.com/Dosada05/padel-manager/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.CurrentUser, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	Me(ctx context.Context, userID int) (*models.CurrentUser, error)
}

// RegisterInput carries the account plus the fields of the role's profile.
type RegisterInput struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      models.UserRole `json:"role"`

	// player
	Category *string `json:"category,omitempty"`
	// club
	ClubName    *string `json:"club_name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	// coach
	Bio    *string `json:"bio,omitempty"`
	ClubID *int    `json:"club_id,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	db         *sql.DB
	userRepo   repositories.UserRepository
	playerRepo repositories.PlayerRepository
	clubRepo   repositories.ClubRepository
	coachRepo  repositories.CoachRepository
	logger     *slog.Logger
}

func NewAuthService(
	db *sql.DB,
	userRepo repositories.UserRepository,
	playerRepo repositories.PlayerRepository,
	clubRepo repositories.ClubRepository,
	coachRepo repositories.CoachRepository,
	logger *slog.Logger,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		playerRepo: playerRepo,
		clubRepo:   clubRepo,
		coachRepo:  coachRepo,
		logger:     logger,
	}
}

func (s *authService) validateRegister(input *RegisterInput) error {
	input.Email = utils.NormalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if !utils.IsValidEmail(input.Email) {
		return ErrInvalidEmail
	}
	if len(input.Password) < utils.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if input.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrValidationFailed)
	}
	// admin нельзя зарегистрировать через API
	switch input.Role {
	case models.RolePlayer, models.RoleCoach:
	case models.RoleClub:
		if trimmedOrNil(input.ClubName) == nil {
			return ErrClubNameRequired
		}
	default:
		return ErrInvalidRole
	}
	return nil
}

// Register creates the user and the profile of its role in one transaction.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.CurrentUser, error) {
	if err := s.validateRegister(&input); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
	}
	current := &models.CurrentUser{User: user}

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, repositories.ErrUserEmailConflict) {
				return ErrUserEmailConflict
			}
			return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}

		switch user.Role {
		case models.RolePlayer:
			userID := user.ID
			player := &models.Player{
				UserID:    &userID,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Category:  trimmedOrNil(input.Category),
			}
			if err := s.playerRepo.Create(ctx, tx, player); err != nil {
				return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
			current.PlayerID = &player.ID
		case models.RoleClub:
			club := &models.Club{
				OwnerID:     user.ID,
				Name:        *trimmedOrNil(input.ClubName),
				Address:     trimmedOrNil(input.Address),
				Description: trimmedOrNil(input.Description),
				Phone:       trimmedOrNil(input.Phone),
			}
			if err := s.clubRepo.Create(ctx, tx, club); err != nil {
				if errors.Is(err, repositories.ErrClubNameConflict) {
					return ErrClubNameConflict
				}
				return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
			current.ClubID = &club.ID
		case models.RoleCoach:
			coach := &models.Coach{UserID: user.ID, ClubID: input.ClubID, Bio: trimmedOrNil(input.Bio)}
			if err := s.coachRepo.Create(ctx, tx, coach); err != nil {
				if errors.Is(err, repositories.ErrCoachClubNotFound) {
					return ErrClubNotFound
				}
				return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
			current.CoachID = &coach.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	return current, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: failed to find user by email: %w", ErrCouldNotLoad, err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// Me resolves the user and the id of the profile its role owns.
func (s *authService) Me(ctx context.Context, userID int) (*models.CurrentUser, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrUserNotFound: ErrUserNotFound})
	}
	user.PasswordHash = ""
	current := &models.CurrentUser{User: user}

	switch user.Role {
	case models.RolePlayer:
		player, err := s.playerRepo.GetByUserID(ctx, nil, user.ID)
		if err == nil {
			current.PlayerID = &player.ID
		} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
		}
	case models.RoleClub:
		club, err := s.clubRepo.GetByOwnerID(ctx, nil, user.ID)
		if err == nil {
			current.ClubID = &club.ID
		} else if !errors.Is(err, repositories.ErrClubNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
		}
	case models.RoleCoach:
		coach, err := s.coachRepo.GetByUserID(ctx, nil, user.ID)
		if err == nil {
			current.CoachID = &coach.ID
		} else if !errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
		}
	}
	return current, nil
}
