package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"archecho/internal/repository"
	"archecho/internal/storage"
)

var ErrStoragePathRequired = errors.New("storage path is required")

// ConceptExtractor is the opaque generative collaborator: document in, list
// of short design-concept tags out (possibly empty).
type ConceptExtractor interface {
	Extract(ctx context.Context, projectID, contentType string, data []byte) ([]string, error)
}

// ConceptService runs the analysis flow: pull a stored document, extract
// concept tags, and union-merge them into the owning project's metadata.
// Tags are only ever added, never replaced.
type ConceptService interface {
	AnalyzeObject(ctx context.Context, projectID, storagePath string) ([]string, error)
}

type conceptService struct {
	repo      repository.ProjectRepository
	store     storage.Storage
	extractor ConceptExtractor
	log       *zap.Logger
}

// NewConceptService constructs a ConceptService.
func NewConceptService(repo repository.ProjectRepository, store storage.Storage, extractor ConceptExtractor, log *zap.Logger) ConceptService {
	return &conceptService{repo: repo, store: store, extractor: extractor, log: log}
}

func (s *conceptService) AnalyzeObject(ctx context.Context, projectID, storagePath string) ([]string, error) {
	if projectID == "" {
		return nil, ErrIDRequired
	}
	if storagePath == "" {
		return nil, ErrStoragePathRequired
	}

	rc, info, err := s.store.Get(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", storagePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", storagePath, err)
	}

	tags, err := s.extractor.Extract(ctx, projectID, info.ContentType, data)
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}
	if len(tags) == 0 {
		s.log.Info("no concepts extracted, skipping merge",
			zap.String("project_id", projectID), zap.String("storage_path", storagePath))
		return []string{}, nil
	}

	if err := s.repo.UnionDesignConcepts(ctx, projectID, tags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("merge concepts: %w", err)
	}

	s.log.Info("design concepts merged",
		zap.String("project_id", projectID), zap.Strings("concepts", tags))
	return tags, nil
}
