package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
)

type PlayerService interface {
	List(ctx context.Context, limit, offset int) ([]*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	Ranking(ctx context.Context, limit, offset int) ([]RankingEntry, error)
}

// RankingEntry is one row of the player ranking.
type RankingEntry struct {
	Position int            `json:"position"`
	Player   *models.Player `json:"player"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) List(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	limit, offset = normalizePage(limit, offset)
	players, err := s.playerRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	return players, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrPlayerNotFound: ErrPlayerNotFound})
	}
	return player, nil
}

// Ranking lists players by ranking points; ties share a position.
func (s *playerService) Ranking(ctx context.Context, limit, offset int) ([]RankingEntry, error) {
	limit, offset = normalizePage(limit, offset)
	players, err := s.playerRepo.ListRanking(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	entries := make([]RankingEntry, len(players))
	for i, p := range players {
		pos := offset + i + 1
		if i > 0 && p.RankingPoints == players[i-1].RankingPoints {
			pos = entries[i-1].Position
		}
		entries[i] = RankingEntry{Position: pos, Player: p}
	}
	return entries, nil
}
