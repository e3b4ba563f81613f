// Package storage implements store.Store on SQL databases: SQLite through
// modernc.org/sqlite and PostgreSQL through pgx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"buildcost/internal/core"
	"buildcost/internal/store"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// createdLayout is fixed-width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Repository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time

	projects     *sqlCollection[core.Project]
	categories   *sqlCollection[core.BudgetCategory]
	vendors      *sqlCollection[core.Vendor]
	budgetItems  *sqlCollection[core.BudgetItem]
	expenses     *sqlCollection[core.Expense]
	changeOrders *sqlCollection[core.ChangeOrder]
	rfis         *sqlCollection[core.RFI]
	tasks        *sqlCollection[core.Task]
}

var _ store.Store = (*Repository)(nil)

// NewSQLiteRepository opens (creating if needed) the SQLite database at
// dbPath and migrates it.
func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(DialectSQLite, dbPath, 1)
}

// NewPostgresRepository connects to databaseURL, retrying while the
// server comes up, and migrates it.
func NewPostgresRepository(databaseURL string, maxRetries int) (*Repository, error) {
	return open(DialectPostgres, databaseURL, maxRetries)
}

func open(dialect Dialect, dsn string, maxRetries int) (*Repository, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	retryDelay := 2 * time.Second

	var db *sql.DB
	for i := 0; i < maxRetries; i++ {
		var err error
		db, err = openDB(dialect, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", dialect, err)
		}
		if err = db.Ping(); err == nil {
			break
		}
		db.Close()
		if i == maxRetries-1 {
			return nil, fmt.Errorf("ping %s database after %d attempts: %w", dialect, maxRetries, err)
		}
		slog.Warn("Database not ready, retrying", "dialect", dialect, "attempt", i+1, "max_attempts", maxRetries, "error", err)
		time.Sleep(retryDelay)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewRepository(db, dialect), nil
}

// openDB opens a handle without pinging it.
func openDB(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectSQLite:
		return sql.Open("sqlite", dsn)
	case DialectPostgres:
		config, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}
		return stdlib.OpenDB(*config), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// NewRepository wraps an already migrated database handle.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	r := &Repository{db: db, dialect: dialect, now: time.Now}
	r.projects = &sqlCollection[core.Project]{repo: r, t: projectsTable}
	r.categories = &sqlCollection[core.BudgetCategory]{repo: r, t: categoriesTable}
	r.vendors = &sqlCollection[core.Vendor]{repo: r, t: vendorsTable}
	r.budgetItems = &sqlCollection[core.BudgetItem]{repo: r, t: budgetItemsTable}
	r.expenses = &sqlCollection[core.Expense]{repo: r, t: expensesTable}
	r.changeOrders = &sqlCollection[core.ChangeOrder]{repo: r, t: changeOrdersTable}
	r.rfis = &sqlCollection[core.RFI]{repo: r, t: rfisTable}
	r.tasks = &sqlCollection[core.Task]{repo: r, t: tasksTable}
	return r
}

func (r *Repository) Projects() store.Collection[core.Project]          { return r.projects }
func (r *Repository) Categories() store.Collection[core.BudgetCategory] { return r.categories }
func (r *Repository) Vendors() store.Collection[core.Vendor]            { return r.vendors }

func (r *Repository) BudgetItems() store.ProjectCollection[core.BudgetItem] {
	return projectScoped[core.BudgetItem]{r.budgetItems}
}
func (r *Repository) Expenses() store.ProjectCollection[core.Expense] {
	return projectScoped[core.Expense]{r.expenses}
}
func (r *Repository) ChangeOrders() store.ProjectCollection[core.ChangeOrder] {
	return projectScoped[core.ChangeOrder]{r.changeOrders}
}
func (r *Repository) RFIs() store.ProjectCollection[core.RFI] {
	return projectScoped[core.RFI]{r.rfis}
}
func (r *Repository) Tasks() store.ProjectCollection[core.Task] {
	return projectScoped[core.Task]{r.tasks}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// table describes how one record type maps onto its SQL table. Columns
// exclude id and created_at; values follows column order and scan reads
// id followed by the columns.
type table[T core.Record] struct {
	name    string
	columns []string
	values  func(T) []any
	scan    func(row rowScanner) (T, error)
}

func (t table[T]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

type sqlCollection[T core.Record] struct {
	repo *Repository
	t    table[T]
}

func (c *sqlCollection[T]) Get(ctx context.Context, id string) (T, error) {
	q := c.repo.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", c.t.selectList(), c.t.name))
	rec, err := c.t.scan(c.repo.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, store.ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s %s: %w", c.t.name, id, err)
	}
	return rec, nil
}

func (c *sqlCollection[T]) List(ctx context.Context) ([]T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id", c.t.selectList(), c.t.name)
	return c.query(ctx, q)
}

func (c *sqlCollection[T]) listByProject(ctx context.Context, projectID string) ([]T, error) {
	q := c.repo.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE project_id = ? ORDER BY created_at, id", c.t.selectList(), c.t.name))
	return c.query(ctx, q, projectID)
}

func (c *sqlCollection[T]) query(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := c.repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := c.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.t.name, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Upsert inserts rec or replaces every column of the existing row. The
// original created_at is kept so list order stays stable.
func (c *sqlCollection[T]) Upsert(ctx context.Context, rec T) error {
	cols := append([]string{"id", "created_at"}, c.t.columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	updates := make([]string, len(c.t.columns))
	for i, col := range c.t.columns {
		updates[i] = fmt.Sprintf("%s = excluded.%s", col, col)
	}
	q := c.repo.rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		c.t.name, strings.Join(cols, ", "), placeholders, strings.Join(updates, ", "),
	))

	args := append([]any{rec.RecordID(), c.repo.now().UTC().Format(createdLayout)}, c.t.values(rec)...)
	if _, err := c.repo.db.ExecContext(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert %s %s: %w: %v", c.t.name, rec.RecordID(), store.ErrConflict, err)
		}
		return fmt.Errorf("upsert %s %s: %w", c.t.name, rec.RecordID(), err)
	}
	return nil
}

// isUniqueViolation reports a UNIQUE constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (c *sqlCollection[T]) Delete(ctx context.Context, id string) error {
	q := c.repo.rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.t.name))
	res, err := c.repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.t.name, id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// projectScoped exposes ListByProject for project-owned tables.
type projectScoped[T core.ProjectRecord] struct {
	*sqlCollection[T]
}

func (p projectScoped[T]) ListByProject(ctx context.Context, projectID string) ([]T, error) {
	return p.listByProject(ctx, projectID)
}
