package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaxonomyRepo struct {
	pool *pgxpool.Pool
}

func NewTaxonomyRepo(pool *pgxpool.Pool) *TaxonomyRepo {
	return &TaxonomyRepo{pool: pool}
}

// NamesByIDs resolves taxonomy ids to display names. Unknown ids are absent
// from the result.
func (r *TaxonomyRepo) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, ErrNoPool
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM taxonomies WHERE id = ANY($1::text[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan taxonomy: %w", err)
		}
		out[id] = name
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate taxonomies: %w", rows.Err())
	}
	return out, nil
}
