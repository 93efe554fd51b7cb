// Package sink writes prepared tables into PostgreSQL.
package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// Mode decides what happens to an existing target table.
type Mode int

const (
	// ModeReplace drops the target table before creating it.
	ModeReplace Mode = iota
	// ModeAppend creates the table only if it is absent and adds rows to it.
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "replace"
}

// ParseMode maps replace|append onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return ModeReplace, nil
	case "append":
		return ModeAppend, nil
	}
	return 0, table.Invalid("push", s, "choose replace or append")
}

// maxParams is the PostgreSQL limit on bind parameters per statement.
const maxParams = 65535

// DefaultBatchSize is used when Postgres.BatchSize is not positive.
const DefaultBatchSize = 500

// Postgres writes tables through a sqlx handle.
type Postgres struct {
	db        *sqlx.DB
	log       zerolog.Logger
	BatchSize int
}

// Open connects with the lib/pq driver and verifies the connection within timeout.
func Open(ctx context.Context, dsn string, timeout time.Duration, log zerolog.Logger) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, table.Invalid("push", "dsn", "no PostgreSQL DSN configured (set postgres_dsn, QUICKPREP_POSTGRES_DSN or DATABASE_URL)")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db, log), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, log zerolog.Logger) *Postgres {
	return &Postgres{db: db, log: log.With().Str("component", "sink").Logger(), BatchSize: DefaultBatchSize}
}

func (p *Postgres) Close() error { return p.db.Close() }

// WriteTable creates schema.name from the table's columns and inserts every row in a
// single transaction. Any failure rolls the whole write back. It returns the number
// of rows inserted.
func (p *Postgres) WriteTable(ctx context.Context, schema, name string, t *table.Table, mode Mode) (n int64, err error) {
	if strings.TrimSpace(name) == "" {
		return 0, table.Invalid("push", name, "table name is empty")
	}
	if t.NumCols() == 0 {
		return 0, table.Invalid("push", name, "table has no columns")
	}
	start := time.Now()
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				p.log.Error().Err(rbErr).AnErr("cause", err).Msg("rollback failed")
			}
		}
	}()

	target := QualifiedName(schema, name)
	if mode == ModeReplace {
		if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+target); err != nil {
			return 0, fmt.Errorf("drop %s: %w", target, err)
		}
	}
	if _, err = tx.ExecContext(ctx, CreateTableSQL(schema, name, t)); err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}

	batch := p.batchRows(t.NumCols())
	cols := t.Columns()
	for lo := 0; lo < t.NumRows(); lo += batch {
		hi := lo + batch
		if hi > t.NumRows() {
			hi = t.NumRows()
		}
		args := make([]any, 0, (hi-lo)*len(cols))
		for i := lo; i < hi; i++ {
			for _, c := range cols {
				args = append(args, c.Value(i))
			}
		}
		res, execErr := tx.ExecContext(ctx, InsertSQL(schema, name, t.Names(), hi-lo), args...)
		if execErr != nil {
			err = fmt.Errorf("insert rows %d-%d into %s: %w", lo, hi-1, target, execErr)
			return 0, err
		}
		if k, raErr := res.RowsAffected(); raErr == nil {
			n += k
		}
		p.log.Debug().Str("table", target).Int("from", lo).Int("to", hi).Msg("inserted batch")
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	p.log.Info().
		Str("table", target).
		Str("mode", mode.String()).
		Int64("rows", n).
		Dur("elapsed", time.Since(start)).
		Msg("table written")
	return n, nil
}

func (p *Postgres) batchRows(ncols int) int {
	batch := p.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if limit := maxParams / ncols; batch > limit {
		batch = limit
	}
	return batch
}

// QualifiedName quotes schema and name; an empty schema leaves the name unqualified.
func QualifiedName(schema, name string) string {
	if schema == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}

// ColumnType maps a column kind onto a PostgreSQL type.
func ColumnType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE PRECISION"
	case table.KindDatetime:
		return "TIMESTAMPTZ"
	case table.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for t's columns.
func CreateTableSQL(schema, name string, t *table.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(QualifiedName(schema, name))
	b.WriteString(" (")
	for i, c := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pq.QuoteIdentifier(c.Name()))
		b.WriteString(" ")
		b.WriteString(ColumnType(c.Kind()))
	}
	b.WriteString(")")
	return b.String()
}

// InsertSQL renders a multi-row INSERT with numbered placeholders.
func InsertSQL(schema, name string, columns []string, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(QualifiedName(schema, name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pq.QuoteIdentifier(c))
	}
	b.WriteString(") VALUES ")
	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for i := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", param)
			param++
		}
		b.WriteString(")")
	}
	return b.String()
}
