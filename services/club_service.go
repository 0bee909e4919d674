package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
	"github.com/Dosada05/padel-manager/storage"
)

const defaultListLimit = 50

type ClubService interface {
	List(ctx context.Context, limit, offset int) ([]*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	Update(ctx context.Context, actor *Actor, id int, input UpdateClubInput) (*models.Club, error)
	UploadLogo(ctx context.Context, actor *Actor, id int, contentType string, file io.Reader) (*models.Club, error)
}

type UpdateClubInput struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader, logger: logger}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *clubService) List(ctx context.Context, limit, offset int) ([]*models.Club, error) {
	limit, offset = normalizePage(limit, offset)
	clubs, err := s.clubRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	for _, c := range clubs {
		populateClubLogoURL(c, s.uploader)
	}
	return clubs, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrClubNotFound: ErrClubNotFound})
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) ownedClub(ctx context.Context, actor *Actor, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrClubNotFound: ErrClubNotFound})
	}
	if actor == nil || (!actor.IsAdmin() && club.OwnerID != actor.UserID) {
		return nil, ErrForbiddenOperation
	}
	return club, nil
}

func (s *clubService) Update(ctx context.Context, actor *Actor, id int, input UpdateClubInput) (*models.Club, error) {
	club, err := s.ownedClub(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrClubNameRequired
		}
		club.Name = name
	}
	if input.Address != nil {
		club.Address = trimmedOrNil(input.Address)
	}
	if input.Description != nil {
		club.Description = trimmedOrNil(input.Description)
	}
	if input.Phone != nil {
		club.Phone = trimmedOrNil(input.Phone)
	}

	if err := s.clubRepo.Update(ctx, nil, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) UploadLogo(ctx context.Context, actor *Actor, id int, contentType string, file io.Reader) (*models.Club, error) {
	club, err := s.ownedClub(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	newKey, err := uploadLogo(ctx, s.uploader, "clubs", club.ID, contentType, file)
	if err != nil {
		return nil, err
	}
	oldKey := club.LogoKey

	if err := s.clubRepo.UpdateLogoKey(ctx, nil, club.ID, &newKey); err != nil {
		s.cleanupObject(ctx, newKey)
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		s.cleanupObject(ctx, *oldKey)
	}

	club.LogoKey = &newKey
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) cleanupObject(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored object", slog.String("key", key), slog.Any("error", err))
	}
}

// uploadLogo stores an image under a fresh key and returns the key.
func uploadLogo(ctx context.Context, uploader storage.FileUploader, entity string, id int, contentType string, file io.Reader) (string, error) {
	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	key := storage.ObjectKey(entity, id, ext)
	if _, err := uploader.Upload(ctx, key, contentType, file); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return "", ErrStorageUnavailable
		}
		return "", fmt.Errorf("%w: failed to upload file: %w", ErrCouldNotSave, err)
	}
	return key, nil
}
