package players

import (
	"context"
	"errors"
	"time"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/logger"
	"kzsync/pkg/steamid"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/repositories"
)

// Source is the paginated player listing endpoint.
type Source interface {
	GetPlayers(ctx context.Context, offset int, limit int) ([]globalapi.Player, error)
}

// Service walks the paginated player listing and loads every page into the
// store. Pages are processed strictly in offset order.
type Service struct {
	source    Source
	players   repositories.PlayerRepository
	log       *logger.Logger
	pollDelay time.Duration
	chunkSize int
}

// NewService creates the player listing service.
func NewService(
	source Source,
	players repositories.PlayerRepository,
	log *logger.Logger,
	pollDelay time.Duration,
	chunkSize int,
) *Service {
	return &Service{
		source:    source,
		players:   players,
		log:       log,
		pollDelay: pollDelay,
		chunkSize: chunkSize,
	}
}

// Run pages through the listing starting at startOffset until an empty page
// signals exhaustion. Backward walks toward offset zero, which is useful to
// backfill older pages while a forward walk follows the tail.
func (s *Service) Run(ctx context.Context, startOffset int, backward bool) error {
	offset := startOffset

	for offset >= 0 {
		page, err := s.source.GetPlayers(ctx, offset, s.chunkSize)
		if err != nil {
			if errors.Is(err, errs.ErrUnavailable) {
				s.log.Infof("Player listing unavailable at offset %d, retrying: %v", offset, err)
				if err := s.sleep(ctx); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if len(page) == 0 {
			s.log.Infof("Player listing exhausted at offset %d", offset)
			return nil
		}

		rows := s.convert(page)
		if _, err := s.players.UpsertBatch(ctx, rows, database.PolicyIgnore); err != nil {
			return err
		}

		if backward {
			offset -= s.chunkSize
		} else {
			offset += s.chunkSize
		}

		if err := s.sleep(ctx); err != nil {
			return err
		}
	}

	s.log.Infof("Player listing walked back to offset zero")
	return nil
}

// convert turns the upstream page into store rows, skipping entries whose
// steam id doesn't parse.
func (s *Service) convert(page []globalapi.Player) []*models.Player {
	rows := make([]*models.Player, 0, len(page))
	for _, p := range page {
		id, err := steamid.ParseID64(p.SteamID64)
		if err != nil {
			s.log.Errorf("Skipping player %q with invalid steam id %q: %v", p.Name, p.SteamID64, err)
			continue
		}

		rows = append(rows, &models.Player{
			ID:       id,
			Name:     p.Name,
			IsBanned: p.IsBanned,
		})
	}

	return rows
}

func (s *Service) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.pollDelay):
		return nil
	}
}
