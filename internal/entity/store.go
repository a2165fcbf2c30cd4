// Package entity implements the persistence behavior shared by all records:
// identity lookups, filtered finds, staged inserts/updates, ordered listing
// and existence checks. Operations run against an ambient transaction (or
// the bare pool) supplied by the caller; nothing here commits or rolls back.
package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contentbe/internal/apperr"
)

// Record is any persisted row with a unique identifier.
type Record interface {
	EntityID() uuid.UUID
}

// Descriptor maps a record type onto its table. From may add eager joins for
// reads; writes always target Table. Columns qualified with the table name
// keep filters unambiguous when joins are present.
type Descriptor struct {
	Name          string   // human-readable entity name, used in error messages
	Table         string   // insert/update/delete target
	From          string   // FROM clause for reads; defaults to Table
	IDColumn      string   // qualified id column; defaults to Table+".id"
	Columns       string   // select list for reads
	InsertColumns []string // columns written on insert, bound by name
	UpdateColumns []string // columns written on update, bound by name
}

// Store provides the shared query behavior for one record type.
type Store[T Record] struct {
	desc       Descriptor
	insertStmt string
	updateStmt string
}

// NewStore builds a store from a descriptor, precomputing the named
// insert/update statements.
func NewStore[T Record](desc Descriptor) *Store[T] {
	if desc.From == "" {
		desc.From = desc.Table
	}
	if desc.IDColumn == "" {
		desc.IDColumn = desc.Table + ".id"
	}

	binds := make([]string, len(desc.InsertColumns))
	for i, col := range desc.InsertColumns {
		binds[i] = ":" + col
	}
	insertStmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		desc.Table,
		strings.Join(desc.InsertColumns, ", "),
		strings.Join(binds, ", "),
	)

	sets := make([]string, len(desc.UpdateColumns))
	for i, col := range desc.UpdateColumns {
		sets[i] = col + " = :" + col
	}
	updateStmt := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = :id",
		desc.Table,
		strings.Join(sets, ", "),
	)

	return &Store[T]{desc: desc, insertStmt: insertStmt, updateStmt: updateStmt}
}

// ListOptions narrow and order a List call. Zero values mean "no limit",
// "no offset" and insertion order respectively.
type ListOptions struct {
	Filter  *Filter
	Limit   int
	Offset  int
	OrderBy string
}

// GetByID returns the record with the given id, conjoined with an optional
// extra filter. Missing rows map to a NotFound application error.
func (s *Store[T]) GetByID(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, extra *Filter) (*T, error) {
	query, args := s.buildGet(extra)

	var rec T
	err := sqlx.GetContext(ctx, q, &rec, q.Rebind(query), append([]any{id}, args...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("entity %s with id %s not found", s.desc.Name, id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.desc.Name, err)
	}
	return &rec, nil
}

// Find returns at most one record matching the filter, or nil without error
// when there is no match.
func (s *Store[T]) Find(ctx context.Context, q sqlx.ExtContext, f Filter) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", s.desc.Columns, s.desc.From, f.Clause)

	var rec T
	err := sqlx.GetContext(ctx, q, &rec, q.Rebind(query), f.Args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", s.desc.Name, err)
	}
	return &rec, nil
}

// FindOrCreate returns the record matching the filter, inserting defaults
// when there is none. The insert is flushed to the ambient transaction, so
// later queries in the same transaction observe the row.
func (s *Store[T]) FindOrCreate(ctx context.Context, q sqlx.ExtContext, f Filter, defaults *T) (*T, error) {
	existing, err := s.Find(ctx, q, f)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := s.Insert(ctx, q, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

// Insert stages a new row in the ambient transaction.
func (s *Store[T]) Insert(ctx context.Context, q sqlx.ExtContext, rec *T) error {
	if _, err := sqlx.NamedExecContext(ctx, q, s.insertStmt, rec); err != nil {
		return fmt.Errorf("failed to insert %s: %w", s.desc.Name, err)
	}
	return nil
}

// Update stages changes to an existing row in the ambient transaction.
// updated_at is left to the database trigger.
func (s *Store[T]) Update(ctx context.Context, q sqlx.ExtContext, rec *T) error {
	if _, err := sqlx.NamedExecContext(ctx, q, s.updateStmt, rec); err != nil {
		return fmt.Errorf("failed to update %s: %w", s.desc.Name, err)
	}
	return nil
}

// Save stages the record: an insert when its id is not yet persisted, an
// update otherwise.
func (s *Store[T]) Save(ctx context.Context, q sqlx.ExtContext, rec *T) error {
	exists, err := s.existsByID(ctx, q, (*rec).EntityID())
	if err != nil {
		return err
	}
	if exists {
		return s.Update(ctx, q, rec)
	}
	return s.Insert(ctx, q, rec)
}

// List returns records matching the options, in the requested order or
// insertion order when no ordering is given.
func (s *Store[T]) List(ctx context.Context, q sqlx.ExtContext, opts ListOptions) ([]T, error) {
	query, args := s.buildList(opts)

	recs := []T{}
	if err := sqlx.SelectContext(ctx, q, &recs, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.desc.Name, err)
	}
	return recs, nil
}

// Delete removes the row with the given id, reporting whether a row existed.
// A missing id is not an error.
func (s *Store[T]) Delete(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.desc.Table)), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", s.desc.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", s.desc.Name, err)
	}
	return n > 0, nil
}

// ExistsAll reports whether every id in the input matches a row. Duplicate
// ids are deduplicated before counting; an empty input is vacuously true.
func (s *Store[T]) ExistsAll(ctx context.Context, q sqlx.ExtContext, ids []uuid.UUID) (bool, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return true, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT COUNT(%s) FROM %s WHERE %s IN (?)", s.desc.IDColumn, s.desc.Table, s.desc.IDColumn),
		unique,
	)
	if err != nil {
		return false, fmt.Errorf("failed to build existence query for %s: %w", s.desc.Name, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, q, &count, q.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", s.desc.Name, err)
	}
	return count == len(unique), nil
}

// Exists reports whether any row matches the criteria.
func (s *Store[T]) Exists(ctx context.Context, q sqlx.ExtContext, f Filter) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(%s) FROM %s WHERE %s", s.desc.IDColumn, s.desc.From, f.Clause)

	var count int
	if err := sqlx.GetContext(ctx, q, &count, q.Rebind(query), f.Args...); err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", s.desc.Name, err)
	}
	return count > 0, nil
}

// Count returns the number of rows matching the filter, all rows when nil.
func (s *Store[T]) Count(ctx context.Context, q sqlx.ExtContext, f *Filter) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(%s) FROM %s", s.desc.IDColumn, s.desc.From)
	var args []any
	if f != nil && !f.IsZero() {
		query += " WHERE " + f.Clause
		args = f.Args
	}

	var count int
	if err := sqlx.GetContext(ctx, q, &count, q.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.desc.Name, err)
	}
	return count, nil
}

// CreatedOnFilter matches rows created within the calendar day of the given
// timestamp, in that timestamp's location.
func (s *Store[T]) CreatedOnFilter(ts time.Time) Filter {
	start := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	return Where(
		fmt.Sprintf("%s.created_at >= ? AND %s.created_at < ?", s.desc.Table, s.desc.Table),
		start, start.AddDate(0, 0, 1),
	)
}

// ListCreatedOn lists the records created within the given calendar day.
func (s *Store[T]) ListCreatedOn(ctx context.Context, q sqlx.ExtContext, ts time.Time) ([]T, error) {
	f := s.CreatedOnFilter(ts)
	return s.List(ctx, q, ListOptions{Filter: &f})
}

// Refresh re-reads the record's row, picking up values computed by the
// database (the trigger-set updated_at in particular).
func (s *Store[T]) Refresh(ctx context.Context, q sqlx.ExtContext, rec *T) error {
	fresh, err := s.GetByID(ctx, q, (*rec).EntityID(), nil)
	if err != nil {
		return err
	}
	*rec = *fresh
	return nil
}

// Paginate returns one page of records plus the total row count matching the
// filter, independent of limit/offset.
func (s *Store[T]) Paginate(ctx context.Context, q sqlx.ExtContext, f *Filter, orderBy string, limit, offset int) ([]T, int, error) {
	total, err := s.Count(ctx, q, f)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.List(ctx, q, ListOptions{Filter: f, Limit: limit, Offset: offset, OrderBy: orderBy})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store[T]) existsByID(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(id) FROM %s WHERE id = ?", s.desc.Table)

	var count int
	if err := sqlx.GetContext(ctx, q, &count, q.Rebind(query), id); err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", s.desc.Name, err)
	}
	return count > 0, nil
}

func (s *Store[T]) buildGet(extra *Filter) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", s.desc.Columns, s.desc.From, s.desc.IDColumn)
	var args []any
	if extra != nil && !extra.IsZero() {
		query += " AND (" + extra.Clause + ")"
		args = extra.Args
	}
	return query, args
}

func (s *Store[T]) buildList(opts ListOptions) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.desc.Columns, s.desc.From)
	var args []any
	if opts.Filter != nil && !opts.Filter.IsZero() {
		query += " WHERE " + opts.Filter.Clause
		args = append(args, opts.Filter.Args...)
	}
	if opts.OrderBy != "" {
		query += " ORDER BY " + opts.OrderBy
	}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}
	return query, args
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
