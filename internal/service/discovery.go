package service

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"archecho/internal/model"
	"archecho/internal/repository"
	"archecho/internal/search"
	"archecho/internal/storage"
)

// Scoring weights. Hard filters exclude; these only rank.
const (
	areaTypeWeight    = 20
	nameWeight        = 10
	conceptWeight     = 5
	descriptionWeight = 2
)

// thumbnailCandidates caps how many storage objects are listed per result
// when hunting for a representative image.
const thumbnailCandidates = 5

// DefaultResultLimit is the ranked-result budget when none is configured.
const DefaultResultLimit = 9

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// DiscoveryService turns free text plus structured filters into a ranked,
// thumbnailed project list.
type DiscoveryService interface {
	// Query runs Load → Hard-Filter → Score → Rank → Truncate → Thumbnail.
	// It always returns a list: a total load failure yields a single
	// synthetic diagnostic row instead of an error.
	Query(ctx context.Context, filters model.QueryFilters) []model.Project
}

type discoveryService struct {
	repo  repository.ProjectRepository
	store storage.Storage
	log   *zap.Logger
	limit int
}

// NewDiscoveryService constructs a DiscoveryService. limit <= 0 falls back
// to DefaultResultLimit.
func NewDiscoveryService(repo repository.ProjectRepository, store storage.Storage, log *zap.Logger, limit int) DiscoveryService {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &discoveryService{repo: repo, store: store, log: log, limit: limit}
}

type scoredProject struct {
	project model.Project
	score   int
}

func (s *discoveryService) Query(ctx context.Context, filters model.QueryFilters) []model.Project {
	raws, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error("project load failed", zap.Error(err))
		return []model.Project{queryFailedProject(err)}
	}
	if len(raws) == 0 {
		return []model.Project{}
	}

	survivors := make([]model.Project, 0, len(raws))
	areaRange := search.Unbounded()
	restrictArea := filters.TotalFloorArea != "" && filters.TotalFloorArea != "all"
	if restrictArea {
		areaRange = search.ParseFloorAreaRange(filters.TotalFloorArea)
	}
	restrictType := filters.ProjectType != "" && filters.ProjectType != "all"

	for _, raw := range raws {
		p := model.ProjectFromDoc(raw.ID, raw.Data)
		if restrictType && p.ProjectType != filters.ProjectType {
			continue
		}
		if restrictArea && !areaRange.Contains(p.TotalFloorArea) {
			continue
		}
		survivors = append(survivors, p)
	}

	terms := normalizeTerms(filters.SearchTerms)
	scored := make([]scoredProject, 0, len(survivors))
	for _, p := range survivors {
		scored = append(scored, scoredProject{project: p, score: scoreProject(p, filters.AreaType, terms)})
	}

	// Deterministic total order: score descending, then name ascending.
	// Stable sort keeps the repository's id order for full ties.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].project.Name < scored[j].project.Name
	})

	if len(scored) > s.limit {
		scored = scored[:s.limit]
	}

	results := make([]model.Project, len(scored))
	g, gctx := errgroup.WithContext(ctx)
	for i, sp := range scored {
		g.Go(func() error {
			results[i] = s.attachThumbnail(gctx, sp.project)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// scoreProject adds soft-filter and keyword weights. Weights compound per
// term and per field.
func scoreProject(p model.Project, areaType string, terms []string) int {
	score := 0

	name := strings.ToLower(p.Name)
	description := strings.ToLower(p.Description)
	concepts := strings.ToLower(strings.Join(p.DesignConcepts, " "))

	if areaType != "" && areaType != "all" && strings.EqualFold(p.AreaType, areaType) {
		score += areaTypeWeight
	}
	for _, term := range terms {
		if strings.Contains(name, term) {
			score += nameWeight
		}
		if strings.Contains(concepts, term) {
			score += conceptWeight
		}
		if strings.Contains(description, term) {
			score += descriptionWeight
		}
	}
	return score
}

// attachThumbnail picks one representative image object for the project and
// mints its signed URL. Any failure is recorded on the result itself and
// never aborts the overall query.
func (s *discoveryService) attachThumbnail(ctx context.Context, p model.Project) model.Project {
	objs, err := s.store.List(ctx, p.ID, thumbnailCandidates)
	if err != nil {
		s.log.Warn("thumbnail listing failed",
			zap.String("project_id", p.ID), zap.Error(err))
		p.DebugInfo = "썸네일 로딩 실패: " + err.Error()
		return p
	}

	for _, obj := range objs {
		if strings.HasSuffix(obj.Key, "/") || !isImageObject(obj) {
			continue
		}
		u, err := s.store.PresignGet(ctx, obj.Key, signedURLTTL)
		if err != nil {
			s.log.Warn("thumbnail url signing failed",
				zap.String("project_id", p.ID), zap.String("storage_path", obj.Key), zap.Error(err))
			p.DebugInfo = "썸네일 로딩 실패: " + err.Error()
			return p
		}
		fileType := obj.ContentType
		if fileType == "" {
			fileType = model.FileTypeImage
		}
		p.Files = []model.ProjectFile{{
			ID:          p.ID + "-thumb",
			ProjectID:   p.ID,
			Name:        path.Base(obj.Key),
			URL:         u,
			Type:        fileType,
			StoragePath: obj.Key,
		}}
		return p
	}
	return p
}

func isImageObject(obj storage.ObjectInfo) bool {
	return strings.HasPrefix(obj.ContentType, "image/") || imageExtRe.MatchString(obj.Key)
}

// queryFailedProject is the synthetic diagnostic row returned when the
// primary load fails, keeping the caller's "always a list" contract.
func queryFailedProject(err error) model.Project {
	return model.Project{
		ID:             "DEBUG_QUERY_FAILED",
		Name:           "DB 쿼리 실패",
		Location:       "N/A",
		Address:        "Query Failed",
		ProjectType:    "Error",
		AreaType:       "N/A",
		StructureType:  "N/A",
		DesignConcepts: []string{},
		Files:          []model.ProjectFile{},
		DebugInfo:      "데이터베이스 쿼리 중 오류가 발생했습니다: " + err.Error(),
	}
}
