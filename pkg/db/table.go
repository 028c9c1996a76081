package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Row is one record keyed by column name.
type Row map[string]any

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table maps CRUD calls onto a single table.
type Table struct {
	q       Querier
	dialect Dialect
	name    string
	pk      string
}

// NewTable returns a mapper for table name with primary key pk.
// Pass a *sql.Tx as q to run inside a transaction.
func NewTable(q Querier, dialect Dialect, name, pk string) *Table {
	return &Table{q: q, dialect: dialect, name: name, pk: pk}
}

// All returns every row ordered by primary key.
func (t *Table) All(ctx context.Context) ([]Row, error) {
	if err := t.checkIdents(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", t.dialect.Quote(t.name), t.dialect.Quote(t.pk))
	return t.query(ctx, query)
}

// Find returns the row with the given primary key, or ErrNotFound.
func (t *Table) Find(ctx context.Context, id any) (Row, error) {
	if err := t.checkIdents(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		t.dialect.Quote(t.name), t.dialect.Quote(t.pk), t.dialect.Placeholder(1))
	rows, err := t.query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Insert adds a row and returns its primary key.
func (t *Table) Insert(ctx context.Context, data Row) (int64, error) {
	cols, args, err := t.columns(data)
	if err != nil {
		return 0, err
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = t.dialect.Quote(c)
		marks[i] = t.dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.dialect.Quote(t.name), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	// pgx does not implement LastInsertId.
	if t.dialect == Postgres {
		var id int64
		err := t.q.QueryRowContext(ctx, query+" RETURNING "+t.dialect.Quote(t.pk), args...).Scan(&id)
		return id, err
	}

	res, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update sets the given columns on the row with primary key id and returns
// the number of affected rows.
func (t *Table) Update(ctx context.Context, id any, data Row) (int64, error) {
	cols, args, err := t.columns(data)
	if err != nil {
		return 0, err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = t.dialect.Quote(c) + " = " + t.dialect.Placeholder(i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		t.dialect.Quote(t.name), strings.Join(sets, ", "),
		t.dialect.Quote(t.pk), t.dialect.Placeholder(len(cols)+1))

	res, err := t.q.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the row with primary key id and returns the number of
// affected rows.
func (t *Table) Delete(ctx context.Context, id any) (int64, error) {
	if err := t.checkIdents(); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		t.dialect.Quote(t.name), t.dialect.Quote(t.pk), t.dialect.Placeholder(1))
	res, err := t.q.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *Table) checkIdents(extra ...string) error {
	for _, id := range append([]string{t.name, t.pk}, extra...) {
		if !identRe.MatchString(id) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
		}
	}
	return nil
}

// columns returns the sorted column names of data with matching arguments.
func (t *Table) columns(data Row) ([]string, []any, error) {
	if len(data) == 0 {
		return nil, nil, ErrNoColumns
	}
	cols := make([]string, 0, len(data))
	for c := range data {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	if err := t.checkIdents(cols...); err != nil {
		return nil, nil, err
	}

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = data[c]
	}
	return cols, args, nil
}

func (t *Table) query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
