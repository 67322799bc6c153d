package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"archecho/internal/model"
	"archecho/internal/repository"
	"archecho/internal/storage"
)

var ErrReaderNil = errors.New("reader is nil")

// DefaultLinkBatchSize keeps committed batches safely below the store's
// per-transaction operation ceiling.
const DefaultLinkBatchSize = 400

var defaultIDPattern = regexp.MustCompile(`^([A-Z]-\d+)`)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

// LinkReport summarizes one linker run. Skipped objects are reported, never
// fatal.
type LinkReport struct {
	Scanned               int      `json:"scanned"`
	Linked                int      `json:"linked"`
	Batches               int      `json:"batches"`
	SkippedNoID           []string `json:"skipped_no_id"`
	SkippedUnknownProject []string `json:"skipped_unknown_project"`
}

// LinkService reconciles storage objects against known projects by filename
// convention and records a File entry under the owning project for each.
type LinkService interface {
	// Run links every object in the list. At-least-once: re-running over the
	// same objects creates duplicate file records.
	Run(ctx context.Context, objects []storage.ObjectInfo) (*LinkReport, error)

	// Upload stores a new object under its base name and immediately links
	// it. The object is removed again if recording the link fails.
	Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*LinkReport, error)
}

type linker struct {
	repo      repository.ProjectRepository
	store     storage.Storage
	pattern   *regexp.Regexp
	batchSize int
	log       *zap.Logger
}

// NewLinker constructs a LinkService. pattern's first capture group must
// yield the project identifier; empty uses the "A-00001" convention.
// batchSize is clamped under repository.MaxBatchOps.
func NewLinker(repo repository.ProjectRepository, store storage.Storage, log *zap.Logger, pattern string, batchSize int) (LinkService, error) {
	re := defaultIDPattern
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile linker id pattern: %w", err)
		}
	}
	if batchSize <= 0 || batchSize >= repository.MaxBatchOps {
		batchSize = DefaultLinkBatchSize
	}
	return &linker{repo: repo, store: store, pattern: re, batchSize: batchSize, log: log}, nil
}

func (l *linker) Run(ctx context.Context, objects []storage.ObjectInfo) (*LinkReport, error) {
	ids, err := l.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	report := &LinkReport{
		SkippedNoID:           []string{},
		SkippedUnknownProject: []string{},
	}
	batch := make([]model.ProjectFile, 0, l.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.repo.CreateFiles(ctx, batch); err != nil {
			return fmt.Errorf("commit file batch: %w", err)
		}
		report.Batches++
		report.Linked += len(batch)
		batch = make([]model.ProjectFile, 0, l.batchSize)
		return nil
	}

	for _, obj := range objects {
		report.Scanned++
		base := path.Base(obj.Key)

		m := l.pattern.FindStringSubmatch(base)
		if m == nil {
			l.log.Debug("no project id in file name", zap.String("file", base))
			report.SkippedNoID = append(report.SkippedNoID, obj.Key)
			continue
		}
		projectID := m[0]
		if len(m) > 1 {
			projectID = m[1]
		}
		if !known[projectID] {
			l.log.Debug("no matching project for extracted id",
				zap.String("file", base), zap.String("project_id", projectID))
			report.SkippedUnknownProject = append(report.SkippedUnknownProject, obj.Key)
			continue
		}

		fileType := classifyFileType(base)
		u := l.store.ObjectURL(obj.Key)
		f := model.ProjectFile{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			Name:        base,
			StoragePath: obj.Key,
			Type:        fileType,
			URL:         u,
			CreatedAt:   time.Now().UTC(),
		}
		if fileType == model.FileTypeImage || fileType == model.FileTypeDrawing {
			f.ThumbnailURL = u
		}

		batch = append(batch, f)
		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}

	if err := flush(); err != nil {
		return report, err
	}

	l.log.Info("linking complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("linked", report.Linked),
		zap.Int("skipped_no_id", len(report.SkippedNoID)),
		zap.Int("skipped_unknown_project", len(report.SkippedUnknownProject)))
	return report, nil
}

func (l *linker) Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*LinkReport, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	key := path.Base(filename)
	if key == "." || key == "/" || key == "" {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	info, err := l.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	report, err := l.Run(ctx, []storage.ObjectInfo{info})
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := l.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("link failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("link failed: %w", err)
	}
	return report, nil
}

// classifyFileType maps a file extension onto the linker's type taxonomy.
func classifyFileType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch {
	case imageExtensions[ext]:
		return model.FileTypeImage
	case ext == "pdf":
		return model.FileTypePDF
	case ext == "":
		return model.FileTypeUnknown
	default:
		return model.FileTypeDrawing
	}
}
