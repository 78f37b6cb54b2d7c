// Package store persists templates in PostgreSQL and their page assets in a
// blob store. Templates are replaced as whole documents: every save rewrites
// the full field set and page list.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/mekonnen/cv-studio/internal/layout"
)

// Store wraps a PostgreSQL connection pool plus the asset blob store.
type Store struct {
	pool  *pgxpool.Pool
	blobs BlobStore
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string, blobs BlobStore) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, blobs: blobs}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveTemplate uploads any raw page assets, substitutes their public
// references into the page list position-for-position, and upserts the whole
// template document.
func (s *Store) SaveTemplate(ctx context.Context, ownerID string, tpl *layout.Template, assets []layout.PageAsset) (*layout.Template, error) {
	if len(assets) != len(tpl.Pages) {
		return nil, fmt.Errorf("template has %d pages but %d assets", len(tpl.Pages), len(assets))
	}

	saved := tpl.Clone()
	refs := make([]string, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		if asset.IsStored() {
			refs[i] = asset.Ref
			continue
		}
		i, asset := i, asset
		g.Go(func() error {
			ref, err := s.blobs.Put(gctx, asset.Data, asset.ContentType)
			if err != nil {
				return fmt.Errorf("failed to upload page %d: %w", i+1, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	saved.Pages = refs

	fields, err := json.Marshal(saved.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO templates (id, owner_id, name, office_name, country, fields, pages, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $3, office_name = $4, country = $5, fields = $6, pages = $7`,
		saved.ID, ownerID, saved.Name, saved.OfficeName, saved.Country, fields, saved.Pages, saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save template %s: %w", saved.ID, err)
	}
	return saved, nil
}

// GetTemplate loads one template by id. Returns nil when it does not exist.
func (s *Store) GetTemplate(ctx context.Context, id string) (*layout.Template, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, office_name, country, fields, pages, created_at
		 FROM templates WHERE id = $1`, id)

	tpl, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return tpl, nil
}

// ListForOwner returns an owner's templates, newest first, optionally
// filtered to one destination country. Suspicious geometry is logged but
// never rejected: stored templates load verbatim.
func (s *Store) ListForOwner(ctx context.Context, ownerID, country string) ([]*layout.Template, error) {
	query := `SELECT id, name, office_name, country, fields, pages, created_at
	          FROM templates WHERE owner_id = $1`
	args := []any{ownerID}
	if country != "" {
		query += ` AND country = $2`
		args = append(args, country)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []*layout.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		for _, warn := range tpl.Validate() {
			log.Printf("[STORE] template %s: %s", tpl.ID, warn)
		}
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out, nil
}

// DeleteTemplate removes a template row and its page assets. Asset deletion
// is best effort: a missing blob never blocks removing the row.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if tpl == nil {
		return nil
	}

	_, err = s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	for _, ref := range tpl.Pages {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			log.Printf("[STORE] failed to delete asset %s: %v", ref, err)
		}
	}
	return nil
}

// TrackGeneration adds to an owner's lifetime generated-document counter.
func (s *Store) TrackGeneration(ctx context.Context, ownerID string, count int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE profiles SET cv_generated_count = cv_generated_count + $1 WHERE id = $2`,
		count, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to track generation for %s: %w", ownerID, err)
	}
	return nil
}

func scanTemplate(row pgx.Row) (*layout.Template, error) {
	var tpl layout.Template
	var fields []byte
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.OfficeName, &tpl.Country, &fields, &tpl.Pages, &tpl.CreatedAt); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &tpl.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
		}
	}
	return &tpl, nil
}
