package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"archecho/internal/model"
	"archecho/internal/repository"
	"archecho/internal/storage"
)

var (
	ErrIDRequired      = errors.New("project id is required")
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectService loads a single project exhaustively: the record itself plus
// every storage object discoverable under its identifier.
type ProjectService interface {
	// GetWithFiles fetches the project record (critical) and then its files
	// (best-effort). A missing record is ErrProjectNotFound; a failing record
	// fetch propagates. Storage failures degrade to an empty or partial file
	// list, never to an error.
	GetWithFiles(ctx context.Context, id string) (*model.Project, error)
}

type projectService struct {
	repo   repository.ProjectRepository
	store  storage.Storage
	assets *AssetResolver
	log    *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(repo repository.ProjectRepository, store storage.Storage, assets *AssetResolver, log *zap.Logger) ProjectService {
	return &projectService{repo: repo, store: store, assets: assets, log: log}
}

func (s *projectService) GetWithFiles(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	raw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("fetch project %s: %w", id, err)
	}
	p := model.ProjectFromDoc(raw.ID, raw.Data)

	files, err := s.discoverFiles(ctx, id)
	if err != nil {
		s.log.Warn("file discovery failed, returning project without files",
			zap.String("project_id", id), zap.Error(err))
		return &p, nil
	}
	p.Files = s.assets.Resolve(ctx, files)
	return &p, nil
}

// discoverFiles unions two complementary prefix queries: the identifier as a
// folder ("A-00001/...") and as a plain filename prefix ("A-00001_...").
// Results are deduplicated by object path and folder placeholders dropped.
func (s *projectService) discoverFiles(ctx context.Context, id string) ([]model.ProjectFile, error) {
	folder, folderErr := s.store.List(ctx, id+"/", 0)
	prefixed, prefixErr := s.store.List(ctx, id, 0)
	if folderErr != nil && prefixErr != nil {
		return nil, folderErr
	}
	if folderErr != nil {
		s.log.Warn("folder-prefix listing failed", zap.String("project_id", id), zap.Error(folderErr))
	}
	if prefixErr != nil {
		s.log.Warn("filename-prefix listing failed", zap.String("project_id", id), zap.Error(prefixErr))
	}

	seen := make(map[string]bool)
	files := []model.ProjectFile{}
	for _, obj := range append(folder, prefixed...) {
		if seen[obj.Key] || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		seen[obj.Key] = true

		contentType := obj.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, model.ProjectFile{
			ID:          fmt.Sprintf("%s-file-%d", id, len(files)),
			ProjectID:   id,
			Name:        path.Base(obj.Key),
			Type:        contentType,
			StoragePath: obj.Key,
		})
	}
	return files, nil
}
