package entity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Owned adds owner-scoped listing for record types carrying a foreign key to
// a parent row. It composes over Store rather than specializing it.
type Owned[T Record] struct {
	*Store[T]
	FKColumn string // qualified foreign key column, e.g. "articles.profile_id"
}

// NewOwned wraps a store with an owner foreign key column.
func NewOwned[T Record](store *Store[T], fkColumn string) *Owned[T] {
	return &Owned[T]{Store: store, FKColumn: fkColumn}
}

// OwnerFilter matches rows belonging to the given owner.
func (o *Owned[T]) OwnerFilter(ownerID uuid.UUID) Filter {
	return Where(o.FKColumn+" = ?", ownerID)
}

// ListForOwner lists the owner's records, conjoining any caller filter with
// the owner filter (logical AND) before delegating to the base list query.
func (o *Owned[T]) ListForOwner(ctx context.Context, q sqlx.ExtContext, ownerID uuid.UUID, f *Filter) ([]T, error) {
	combined := o.OwnerFilter(ownerID)
	if f != nil {
		combined = combined.And(*f)
	}
	return o.List(ctx, q, ListOptions{Filter: &combined})
}
