package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/table"
)

func TestLongRoundTrip(t *testing.T) {
	want := sample(t)
	want.EnsureRow(date(t, "2024-01-04"))

	rows := toLong(want)
	if len(rows) != 6 {
		t.Fatalf("toLong rows = %d, want 6 (3 dates x 2 columns)", len(rows))
	}

	// Feed the rows back the way Read scans them, in storage order.
	var cells []longCell
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		v, err := fromNumeric(r[3].(pgtype.Numeric))
		if err != nil {
			t.Fatalf("fromNumeric: %v", err)
		}
		cells = append(cells, longCell{
			date:     table.DateOf(r[0].(time.Time)),
			symbol:   r[1].(string),
			position: r[2].(int32),
			value:    v,
		})
	}

	got := fromLong(cells)
	if !got.Equal(want) {
		t.Errorf("round trip = %v, want %v", got.Records(), want.Records())
	}
	if fmt.Sprint(got.Columns()) != "[AAPL BRK-B]" {
		t.Errorf("Columns() = %v, want position order", got.Columns())
	}
}

func TestNumeric(t *testing.T) {
	for _, s := range []string{"185.64", "0", "-1.5", "12345678901234567890.123456789"} {
		n := toNumeric(table.Value(decimal.RequireFromString(s)))
		c, err := fromNumeric(n)
		if err != nil {
			t.Fatalf("fromNumeric(%s): %v", s, err)
		}
		if !c.Valid || c.Decimal.String() != s {
			t.Errorf("round trip %s = %v", s, c.Decimal)
		}
	}

	if n := toNumeric(table.Missing); n.Valid {
		t.Error("missing cell should encode as NULL")
	}
	if _, err := fromNumeric(pgtype.Numeric{NaN: true, Valid: true}); err == nil {
		t.Error("NaN should be rejected")
	}
}

func TestClassifyPG(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		transient bool
	}{
		{"undefined table", &pgconn.PgError{Code: "42P01"}, true, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, false, true},
		{"serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), false, true},
		{"syntax", &pgconn.PgError{Code: "42601"}, false, false},
		{"plain", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyPG(tt.err)
			if got := errors.Is(err, ErrNotFound); got != tt.notFound {
				t.Errorf("not found = %v, want %v", got, tt.notFound)
			}
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("transient = %v, want %v", got, tt.transient)
			}
		})
	}
}

func TestPostgresIdent(t *testing.T) {
	p := NewPostgres(nil, "close_prices")
	if got := p.ident(); got != `"close_prices"` {
		t.Errorf("ident() = %s", got)
	}
	if p.Name() != "postgres:close_prices" {
		t.Errorf("Name() = %s", p.Name())
	}
}

// fakeTx records the statements a Replace runs. Methods the store never
// calls are left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx

	log       []string
	copied    [][]any
	copyErr   error
	copyN     int64 // overrides the reported count when > 0
	committed bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tx.log = append(tx.log, strings.Fields(sql)[0])
	return pgconn.NewCommandTag("OK"), nil
}

func (tx *fakeTx) CopyFrom(_ context.Context, name pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	tx.log = append(tx.log, "COPY "+name.Sanitize()+" "+strings.Join(cols, ","))
	if tx.copyErr != nil {
		return 0, tx.copyErr
	}
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		tx.copied = append(tx.copied, vals)
	}
	if tx.copyN > 0 {
		return tx.copyN, nil
	}
	return int64(len(tx.copied)), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.log = append(tx.log, "COMMIT")
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.log = append(tx.log, "ROLLBACK")
	return nil
}

// fakeRows serves stored long rows to Scan.
type fakeRows struct {
	pgx.Rows

	rows [][]any
	i    int
}

func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.i-1]
	for j, d := range dest {
		switch p := d.(type) {
		case *time.Time:
			*p = row[j].(time.Time)
		case *string:
			*p = row[j].(string)
		case *int32:
			*p = row[j].(int32)
		case *pgtype.Numeric:
			*p = row[j].(pgtype.Numeric)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
	rows     [][]any
	queryErr error
	queries  []string
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func (db *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return &fakeRows{rows: db.rows}, nil
}

func TestPostgres_Replace(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	p := NewPostgres(db, "close_prices")

	if err := p.Replace(context.Background(), sample(t)); err != nil {
		t.Fatalf("Replace error: %v", err)
	}

	want := []string{
		"CREATE",
		"DELETE",
		`COPY "close_prices" trade_date,symbol,position,close`,
		"COMMIT",
	}
	if fmt.Sprint(db.tx.log) != fmt.Sprint(want) {
		t.Errorf("statements = %q, want %q", db.tx.log, want)
	}
	if len(db.tx.copied) != 4 {
		t.Errorf("copied rows = %d, want 4 (2 dates x 2 columns)", len(db.tx.copied))
	}
}

func TestPostgres_ReplaceRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		tx        *fakeTx
		transient bool
		wantErr   string
	}{
		{
			name:      "copy failure",
			tx:        &fakeTx{copyErr: &pgconn.PgError{Code: "08006"}},
			transient: true,
			wantErr:   "copy",
		},
		{
			name:    "short copy",
			tx:      &fakeTx{copyN: 1},
			wantErr: "copy: wrote 1 of 4 rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPostgres(&fakeDB{tx: tt.tx}, "close_prices")

			err := p.Replace(context.Background(), sample(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Replace error = %v, want %q", err, tt.wantErr)
			}
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("transient = %v, want %v", got, tt.transient)
			}
			if tt.tx.committed {
				t.Error("transaction committed after failure")
			}
			if last := tt.tx.log[len(tt.tx.log)-1]; last != "ROLLBACK" {
				t.Errorf("last statement = %q, want ROLLBACK", last)
			}
		})
	}
}

func TestPostgres_BeginFailure(t *testing.T) {
	p := NewPostgres(&fakeDB{beginErr: &pgconn.PgError{Code: "53300"}}, "close_prices")
	if err := p.Replace(context.Background(), sample(t)); !IsTransient(err) {
		t.Errorf("too many connections should be transient, got %v", err)
	}
}

func TestPostgres_ReadRoundTrip(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	p := NewPostgres(db, "close_prices")

	want := sample(t)
	if err := p.Replace(context.Background(), want); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	db.rows = tx.copied

	got, err := p.Read(context.Background())
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Read() = %v, want %v", got.Records(), want.Records())
	}
	if len(db.queries) != 1 || !strings.Contains(db.queries[0], `FROM "close_prices"`) {
		t.Errorf("queries = %q", db.queries)
	}
}

func TestPostgres_ReadNotFound(t *testing.T) {
	tests := []struct {
		name string
		db   *fakeDB
	}{
		{"missing table", &fakeDB{queryErr: &pgconn.PgError{Code: "42P01"}}},
		{"no rows", &fakeDB{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostgres(tt.db, "close_prices").Read(context.Background())
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Read error = %v, want ErrNotFound", err)
			}
		})
	}
}
