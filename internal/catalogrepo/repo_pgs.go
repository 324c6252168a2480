// Package catalogrepo manages repository layer of the item catalog.
package catalogrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/pkg/dbpkg"
)

// RepoPGS facilitates catalog repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns catalog RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const loadQuery = `
SELECT
	id, name, kind, unit_price, unit_deposit
FROM catalog_items
ORDER BY name
`

// Load returns the full catalog snapshot keyed by identifier.
func (r *RepoPGS) Load(ctx context.Context) (domain.Catalog, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, loadQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, domain.ErrCatalogUnavailable
	}
	defer rows.Close()

	catalog := domain.Catalog{}

	for rows.Next() {
		var entry domain.CatalogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Name,
			&entry.Kind,
			&entry.UnitPrice,
			&entry.UnitDeposit,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, domain.ErrCatalogUnavailable
		}

		catalog[entry.ID] = entry
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, domain.ErrCatalogUnavailable
	}

	return catalog, nil
}
