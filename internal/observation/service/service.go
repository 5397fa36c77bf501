// Package service reads captured observation data for the monitoring and download endpoints.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/observation/domain"
	"gemini-observatory/backend/internal/observation/repository"
	"gemini-observatory/backend/internal/observation/storage"
	"gemini-observatory/backend/internal/platform/rbac"
	programdomain "gemini-observatory/backend/internal/program/domain"
)

var ErrObservationNotFound = errors.New("observation not found")

// ProgramGetter returns a program if the caller may see it.
type ProgramGetter interface {
	Get(ctx context.Context, caller rbac.Principal, id string) (*programdomain.ObservingProgram, error)
}

type Service struct {
	repo     repository.Repository
	store    storage.Storage
	programs ProgramGetter
	log      logrus.FieldLogger
}

func NewService(repo repository.Repository, store storage.Storage, programs ProgramGetter, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, store: store, programs: programs, log: log}
}

// List returns the frames of a program in capture order.
func (s *Service) List(ctx context.Context, caller rbac.Principal, programID string) ([]*domain.Observation, error) {
	if _, err := s.programs.Get(ctx, caller, programID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	if out == nil {
		out = []*domain.Observation{}
	}
	return out, nil
}

// Get returns one frame's metadata.
func (s *Service) Get(ctx context.Context, caller rbac.Principal, id string) (*domain.Observation, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load observation: %w", err)
	}
	if o == nil {
		return nil, ErrObservationNotFound
	}
	if _, err := s.programs.Get(ctx, caller, o.ProgramID); err != nil {
		return nil, err
	}
	return o, nil
}

// Open returns the frame metadata and a reader over its bytes. The caller closes the object.
func (s *Service) Open(ctx context.Context, caller rbac.Principal, id string) (*domain.Observation, *storage.Object, error) {
	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.store.Get(ctx, o.ObjectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.log.WithFields(logrus.Fields{"observation_id": o.ID, "object_key": o.ObjectKey}).Warn("observation object missing from storage")
		return nil, nil, ErrObservationNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open observation: %w", err)
	}
	return o, obj, nil
}
