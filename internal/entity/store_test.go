package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

func (r testRecord) EntityID() uuid.UUID { return r.ID }

func testStore() *Store[testRecord] {
	return NewStore[testRecord](Descriptor{
		Name:          "Widget",
		Table:         "widgets",
		Columns:       "widgets.id, widgets.name",
		InsertColumns: []string{"id", "name"},
		UpdateColumns: []string{"name"},
	})
}

func TestNewStore_Defaults(t *testing.T) {
	s := testStore()

	assert.Equal(t, "widgets", s.desc.From)
	assert.Equal(t, "widgets.id", s.desc.IDColumn)
	assert.Equal(t, "INSERT INTO widgets (id, name) VALUES (:id, :name)", s.insertStmt)
	assert.Equal(t, "UPDATE widgets SET name = :name WHERE id = :id", s.updateStmt)
}

func TestNewStore_ExplicitFrom(t *testing.T) {
	s := NewStore[testRecord](Descriptor{
		Name:          "Widget",
		Table:         "widgets",
		From:          "widgets JOIN crates ON crates.id = widgets.crate_id",
		IDColumn:      "widgets.id",
		Columns:       "widgets.id, widgets.name",
		InsertColumns: []string{"id", "name"},
		UpdateColumns: []string{"name"},
	})

	query, _ := s.buildGet(nil)
	assert.Equal(t,
		"SELECT widgets.id, widgets.name FROM widgets JOIN crates ON crates.id = widgets.crate_id WHERE widgets.id = ?",
		query,
	)
}

func TestStore_BuildGet(t *testing.T) {
	s := testStore()

	t.Run("without extra filter", func(t *testing.T) {
		query, args := s.buildGet(nil)
		assert.Equal(t, "SELECT widgets.id, widgets.name FROM widgets WHERE widgets.id = ?", query)
		assert.Empty(t, args)
	})

	t.Run("with extra filter", func(t *testing.T) {
		f := Where("widgets.name = ?", "anvil")
		query, args := s.buildGet(&f)
		assert.Equal(t,
			"SELECT widgets.id, widgets.name FROM widgets WHERE widgets.id = ? AND (widgets.name = ?)",
			query,
		)
		assert.Equal(t, []any{"anvil"}, args)
	})

	t.Run("zero extra filter is ignored", func(t *testing.T) {
		f := Filter{}
		query, args := s.buildGet(&f)
		assert.Equal(t, "SELECT widgets.id, widgets.name FROM widgets WHERE widgets.id = ?", query)
		assert.Empty(t, args)
	})
}

func TestStore_BuildList(t *testing.T) {
	s := testStore()

	tests := []struct {
		name      string
		opts      ListOptions
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "no options",
			opts:      ListOptions{},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets",
		},
		{
			name: "filter only",
			opts: ListOptions{
				Filter: &Filter{Clause: "widgets.name = ?", Args: []any{"anvil"}},
			},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets WHERE widgets.name = ?",
			wantArgs:  []any{"anvil"},
		},
		{
			name:      "order by",
			opts:      ListOptions{OrderBy: "widgets.name ASC"},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets ORDER BY widgets.name ASC",
		},
		{
			name:      "limit and offset",
			opts:      ListOptions{Limit: 10, Offset: 20},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets LIMIT ? OFFSET ?",
			wantArgs:  []any{10, 20},
		},
		{
			name:      "zero offset is omitted",
			opts:      ListOptions{Limit: 10},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets LIMIT ?",
			wantArgs:  []any{10},
		},
		{
			name: "everything combined",
			opts: ListOptions{
				Filter:  &Filter{Clause: "widgets.name = ?", Args: []any{"anvil"}},
				OrderBy: "widgets.name ASC",
				Limit:   10,
				Offset:  20,
			},
			wantQuery: "SELECT widgets.id, widgets.name FROM widgets WHERE widgets.name = ? ORDER BY widgets.name ASC LIMIT ? OFFSET ?",
			wantArgs:  []any{"anvil", 10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := s.buildList(tt.opts)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStore_CreatedOnFilter(t *testing.T) {
	s := testStore()

	ts := time.Date(2026, time.August, 29, 15, 42, 7, 123, time.UTC)
	f := s.CreatedOnFilter(ts)

	assert.Equal(t, "widgets.created_at >= ? AND widgets.created_at < ?", f.Clause)
	require.Len(t, f.Args, 2)
	assert.Equal(t, time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC), f.Args[0])
	assert.Equal(t, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC), f.Args[1])

	t.Run("keeps the timestamp's location", func(t *testing.T) {
		loc := time.FixedZone("UTC+7", 7*60*60)
		f := s.CreatedOnFilter(time.Date(2026, time.August, 29, 1, 0, 0, 0, loc))

		start, ok := f.Args[0].(time.Time)
		require.True(t, ok)
		assert.Equal(t, loc, start.Location())
		assert.Equal(t, 29, start.Day())
	})
}

func TestDedupe(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Empty(t, dedupe(nil))
	assert.Equal(t, []uuid.UUID{a}, dedupe([]uuid.UUID{a, a, a}))

	unique := dedupe([]uuid.UUID{a, b, a, b})
	require.Len(t, unique, 2)
	// First occurrence order is preserved.
	assert.Equal(t, []uuid.UUID{a, b}, unique)
}
