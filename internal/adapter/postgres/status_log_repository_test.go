package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/floreria/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error { return assign(r.data[r.pos-1], dest) }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeDB struct {
	queries   []string
	args      [][]any
	row       fakeRow
	rows      [][]any
	committed bool
	closed    bool
	pingErr   error
	execErr   error
}

func (db *fakeDB) Ping(ctx context.Context) error { return db.pingErr }

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return &fakeRows{data: db.rows}, nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return db.row
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	db.queries = append(db.queries, sql)
	return fakeTag(0), db.execErr
}

func (db *fakeDB) Begin(ctx context.Context) (Tx, error) { return &fakeTx{db: db}, nil }
func (db *fakeDB) Close()                                { db.closed = true }

type fakeTx struct{ db *fakeDB }

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.db.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

func assign(values []any, dest []any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = values[i].(int)
		case *string:
			*p = values[i].(string)
		case *time.Time:
			*p = values[i].(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func TestAppendStoresIDs(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{41}}}
	repo := NewStatusLogRepository(db)

	entry := &domain.StatusLog{
		OrderID:    7,
		FromStatus: domain.StatusOnTheWay,
		ToStatus:   domain.StatusDelivered,
		Role:       domain.RoleDelivery,
		ChangedBy:  "delivery:reparto@floreria.mx",
		ChangedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Append(context.Background(), entry))

	assert.Equal(t, 41, entry.ID)
	require.Len(t, db.args, 1)
	assert.Equal(t, []any{7, 4, 5, 3, "delivery:reparto@floreria.mx", entry.ChangedAt}, db.args[0])
	assert.Contains(t, db.queries[0], "INSERT INTO order_status_log")
}

func TestAppendWrapsScanError(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: errors.New("connection reset")}}
	err := NewStatusLogRepository(db).Append(context.Background(), &domain.StatusLog{OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHistoryMapsRows(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{1, 7, 2, 3, 1, "admin:ana", at},
		{2, 7, 3, 4, 1, "admin:ana", at.Add(time.Hour)},
	}}

	logs, err := NewStatusLogRepository(db).History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, domain.StatusReserved, logs[0].FromStatus)
	assert.Equal(t, domain.StatusPrepared, logs[0].ToStatus)
	assert.Equal(t, domain.RoleAdmin, logs[0].Role)
	assert.Equal(t, domain.StatusOnTheWay, logs[1].ToStatus)
	assert.Equal(t, []any{7}, db.args[0])
}
