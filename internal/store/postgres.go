package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/table"
)

// pgUndefinedTable is SQLSTATE 42P01.
const pgUndefinedTable = "42P01"

var pgColumns = []string{"trade_date", "symbol", "position", "close"}

// DB is the part of a pgx pool the Postgres store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres stores the history in long format, one row per (date, symbol)
// cell. position keeps the column order of the wide table.
type Postgres struct {
	db    DB
	table string
}

// NewPostgres creates a Postgres store. name must be a plain identifier.
func NewPostgres(db DB, name string) *Postgres {
	return &Postgres{db: db, table: name}
}

func (p *Postgres) Name() string { return "postgres:" + p.table }

func (p *Postgres) ident() string {
	return pgx.Identifier{p.table}.Sanitize()
}

func (p *Postgres) createSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	trade_date DATE NOT NULL,
	symbol TEXT NOT NULL,
	position INTEGER NOT NULL,
	close NUMERIC,
	PRIMARY KEY (trade_date, symbol)
)`, p.ident())
}

func (p *Postgres) Read(ctx context.Context) (*table.Table, error) {
	rows, err := p.db.Query(ctx, fmt.Sprintf(
		`SELECT trade_date, symbol, position, close FROM %s ORDER BY position, trade_date`, p.ident()))
	if err != nil {
		return nil, classifyPG(err)
	}
	defer rows.Close()

	var cells []longCell
	for rows.Next() {
		var (
			c     longCell
			day   time.Time
			price pgtype.Numeric
		)
		if err := rows.Scan(&day, &c.symbol, &c.position, &price); err != nil {
			return nil, malformed(err)
		}
		c.date = table.DateOf(day)
		if c.value, err = fromNumeric(price); err != nil {
			return nil, malformed(fmt.Errorf("%s %s: %w", c.symbol, c.date, err))
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPG(err)
	}
	if len(cells) == 0 {
		return nil, ErrNotFound
	}
	return fromLong(cells), nil
}

// Replace swaps the stored rows for t in one transaction.
func (p *Postgres) Replace(ctx context.Context, t *table.Table) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return classifyPG(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, p.createSQL()); err != nil {
		return classifyPG(fmt.Errorf("create table: %w", err))
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, p.ident())); err != nil {
		return classifyPG(fmt.Errorf("delete: %w", err))
	}

	rows := toLong(t)
	n, err := tx.CopyFrom(ctx, pgx.Identifier{p.table}, pgColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return classifyPG(fmt.Errorf("copy: %w", err))
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy: wrote %d of %d rows", n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyPG(fmt.Errorf("commit: %w", err))
	}
	return nil
}

type longCell struct {
	date     table.Date
	symbol   string
	position int32
	value    table.Cell
}

// toLong flattens t into COPY rows, one per cell. Missing cells are stored
// as NULL so dates without any observation survive a round trip.
func toLong(t *table.Table) [][]any {
	cols := t.Columns()
	dates := t.Dates()
	out := make([][]any, 0, len(cols)*len(dates))
	for _, d := range dates {
		day := d.In(time.UTC)
		for i, col := range cols {
			out = append(out, []any{day, col, int32(i), toNumeric(t.Get(d, col))})
		}
	}
	return out
}

func fromLong(cells []longCell) *table.Table {
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].position < cells[j].position })

	t := table.New()
	for _, c := range cells {
		t.AddColumn(c.symbol)
		if c.value.Valid {
			t.Set(c.date, c.symbol, c.value)
		} else {
			t.EnsureRow(c.date)
		}
	}
	return t
}

func toNumeric(c table.Cell) pgtype.Numeric {
	if !c.Valid {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{
		Int:   c.Decimal.Coefficient(),
		Exp:   c.Decimal.Exponent(),
		Valid: true,
	}
}

func fromNumeric(n pgtype.Numeric) (table.Cell, error) {
	if !n.Valid {
		return table.Missing, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return table.Missing, errors.New("non-finite close")
	}
	if n.Int == nil {
		return table.Value(decimal.Zero), nil
	}
	return table.Value(decimal.NewFromBigInt(n.Int, n.Exp)), nil
}

// classifyPG maps a missing table to ErrNotFound and connection-level
// failures to TransientError.
func classifyPG(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUndefinedTable {
			return ErrNotFound
		}
		// Class 08 is connection exception, 40 transaction rollback,
		// 53 insufficient resources.
		switch pgErr.Code[:2] {
		case "08", "40", "53":
			return transient(err, true)
		}
		return err
	}
	return transient(err, pgconn.SafeToRetry(err) || pgconn.Timeout(err))
}
