package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"archecho/internal/model"
	"archecho/internal/repository"
)

// ProjectPostgres is a PostgreSQL implementation of repository.ProjectRepository.
// Project documents are stored as JSONB so heterogeneous imported fields
// (numbers, formatted strings) survive round trips untouched.
type ProjectPostgres struct {
	db *sql.DB
}

// NewProjectPostgres creates a new ProjectPostgres repository.
func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

// GetByID fetches a single project document by its identifier.
func (r *ProjectPostgres) GetByID(ctx context.Context, id string) (*repository.RawProject, error) {
	const q = `SELECT data FROM projects WHERE id = $1`

	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&raw); err != nil {
		return nil, err
	}

	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &repository.RawProject{ID: id, Data: data}, nil
}

// GetAll returns every project document. Ordered by id so callers observe a
// deterministic load order.
func (r *ProjectPostgres) GetAll(ctx context.Context) ([]repository.RawProject, error) {
	const q = `SELECT id, data FROM projects ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]repository.RawProject, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data := map[string]any{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", id, err)
		}
		items = append(items, repository.RawProject{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListIDs returns every known project identifier.
func (r *ProjectPostgres) ListIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM projects ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateFiles inserts file records in a single transaction: all rows commit
// or none do. The batch must stay under the per-transaction ceiling.
func (r *ProjectPostgres) CreateFiles(ctx context.Context, files []model.ProjectFile) error {
	if len(files) == 0 {
		return nil
	}
	if len(files) > repository.MaxBatchOps {
		return fmt.Errorf("batch of %d exceeds per-transaction ceiling of %d", len(files), repository.MaxBatchOps)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO project_files (id, project_id, name, storage_path, type, url, thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, f := range files {
		var thumb any
		if f.ThumbnailURL != "" {
			thumb = f.ThumbnailURL
		}
		if _, err := tx.ExecContext(ctx, q,
			f.ID,
			f.ProjectID,
			f.Name,
			f.StoragePath,
			f.Type,
			f.URL,
			thumb,
			f.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UnionDesignConcepts appends missing concepts to the project document's tag
// list. The row is locked for the read-modify-write so concurrent analyses
// of two files never lose a tag.
func (r *ProjectPostgres) UnionDesignConcepts(ctx context.Context, id string, concepts []string) error {
	if len(concepts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const sel = `SELECT data FROM projects WHERE id = $1 FOR UPDATE`
	var raw []byte
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&raw); err != nil {
		return err
	}

	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode project %s: %w", id, err)
	}

	existing := []any{}
	if cur, ok := data["designConcepts"].([]any); ok {
		existing = cur
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		if s, ok := v.(string); ok {
			seen[s] = true
		}
	}
	for _, c := range concepts {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		existing = append(existing, c)
	}
	data["designConcepts"] = existing

	merged, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", id, err)
	}

	const upd = `UPDATE projects SET data = $2, updated_at = now() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, upd, id, merged); err != nil {
		return err
	}

	return tx.Commit()
}
