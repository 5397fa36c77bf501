package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/starsystem/cache"
	"gemini-observatory/backend/internal/starsystem/domain"
	"gemini-observatory/backend/internal/starsystem/repository"
)

var ErrStarSystemNotFound = errors.New("star system not found")

// Service serves the catalogue through a read-through cache.
type Service struct {
	repo  repository.Repository
	cache cache.Cache
	log   logrus.FieldLogger
}

func NewService(repo repository.Repository, c cache.Cache, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, cache: c, log: log}
}

// Seed inserts the built-in catalogue when storage is empty. Returns the number of rows inserted.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	if err := s.repo.InsertMany(ctx, domain.Catalog); err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("starsystem: cache invalidate failed")
	}
	return len(domain.Catalog), nil
}

// List returns every star system ordered by name. Cache failures fall back to the repository.
func (s *Service) List(ctx context.Context) ([]*domain.StarSystem, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.WithError(err).Warn("starsystem: cache read failed")
	}
	if len(cached) > 0 {
		return cached, nil
	}
	systems, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(systems) > 0 {
		if err := s.cache.Set(ctx, systems); err != nil {
			s.log.WithError(err).Warn("starsystem: cache write failed")
		}
	}
	return systems, nil
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	Quadrant string
	// Latitude, when set, keeps only systems visible from that latitude.
	Latitude *float64
}

// Search lists systems matching the filter.
func (s *Service) Search(ctx context.Context, f Filter) ([]*domain.StarSystem, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.StarSystem, 0, len(all))
	for _, sys := range all {
		if f.Quadrant != "" && !strings.EqualFold(sys.Quadrant, f.Quadrant) {
			continue
		}
		if f.Latitude != nil && !sys.VisibleFrom(*f.Latitude) {
			continue
		}
		out = append(out, sys)
	}
	return out, nil
}

// GetByName finds a system by case-insensitive name.
func (s *Service) GetByName(ctx context.Context, name string) (*domain.StarSystem, error) {
	name = strings.TrimSpace(name)
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, sys := range all {
		if strings.EqualFold(sys.Name, name) {
			return sys, nil
		}
	}
	return nil, ErrStarSystemNotFound
}

// GetByID finds a system by id.
func (s *Service) GetByID(ctx context.Context, id int) (*domain.StarSystem, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, sys := range all {
		if sys.ID == id {
			return sys, nil
		}
	}
	return nil, ErrStarSystemNotFound
}
