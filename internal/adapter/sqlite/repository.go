package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/onboardiq/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// Store implements every provisioning repository on one SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: ":memory:" databases are per connection, and River
	// shares this handle.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Fixed-width UTC timestamps keep lexical and chronological order identical.
const timeFormat = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// ---- tenants ----

const tenantColumns = `id, name, slug, email, phone, category, tier, flow, status,
	trial_ends_at, cancel_token, routing_secret, customer_ref, phone_number,
	phone_number_id, existing_phone, assistant_id, assistant_kind, created_at, updated_at`

func (s *Store) Create(ctx context.Context, t domain.Tenant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Email, t.Phone, t.Category, string(t.Tier), string(t.Flow), string(t.Status),
		formatTime(t.TrialEndsAt), t.CancelToken, t.RoutingSecret, t.CustomerRef, t.PhoneNumber,
		t.PhoneNumberID, t.ExistingPhone, t.AssistantID, string(t.AssistantKind),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return classifyTenantWrite(err, t, "inserting tenant")
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.getTenant(ctx, "id", id)
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return s.getTenant(ctx, "slug", slug)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (domain.Tenant, error) {
	return s.getTenant(ctx, "email", strings.ToLower(email))
}

// getTenant looks a tenant up by one of its unique columns.
func (s *Store) getTenant(ctx context.Context, column, value string) (domain.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE `+column+` = ?`, value)

	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	if err != nil {
		return domain.Tenant{}, &domain.StoreError{Op: "selecting tenant by " + column, Err: err}
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants`
	var (
		where []string
		args  []any
	)

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.Tier != nil {
		where = append(where, `tier = ?`)
		args = append(args, string(*filter.Tier))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	// SQLite requires LIMIT before OFFSET; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "listing tenants", Err: err}
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "scanning tenant row", Err: err}
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "listing tenants", Err: err}
	}
	return tenants, nil
}

func (s *Store) Update(ctx context.Context, t domain.Tenant) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, slug = ?, email = ?, phone = ?, category = ?, tier = ?,
		 status = ?, trial_ends_at = ?, customer_ref = ?, phone_number = ?, phone_number_id = ?,
		 existing_phone = ?, assistant_id = ?, assistant_kind = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Slug, t.Email, t.Phone, t.Category, string(t.Tier),
		string(t.Status), formatTime(t.TrialEndsAt), t.CustomerRef, t.PhoneNumber, t.PhoneNumberID,
		t.ExistingPhone, t.AssistantID, string(t.AssistantKind), formatTime(s.now()),
		t.ID,
	)
	if err != nil {
		return classifyTenantWrite(err, t, "updating tenant")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "checking rows affected", Err: err}
	}
	if n == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTenant(row scanner) (domain.Tenant, error) {
	var t domain.Tenant
	var tier, flow, status, kind string
	var trialEndsAt, createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Email, &t.Phone, &t.Category, &tier, &flow, &status,
		&trialEndsAt, &t.CancelToken, &t.RoutingSecret, &t.CustomerRef, &t.PhoneNumber,
		&t.PhoneNumberID, &t.ExistingPhone, &t.AssistantID, &kind, &createdAt, &updatedAt)
	if err != nil {
		return domain.Tenant{}, err
	}

	t.Tier = domain.Tier(tier)
	t.Flow = domain.Flow(flow)
	t.Status = domain.Status(status)
	t.AssistantKind = domain.AssistantKind(kind)
	t.TrialEndsAt = parseTime(trialEndsAt)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

// classifyTenantWrite maps a unique violation to the offending column's
// typed error; anything else is a *domain.StoreError.
func classifyTenantWrite(err error, t domain.Tenant, op string) error {
	if col, ok := uniqueViolationColumn(err); ok {
		switch col {
		case "tenants.email":
			return &domain.DuplicateEmailError{Email: t.Email}
		case "tenants.slug":
			return &domain.DuplicateSlugError{Slug: t.Slug}
		}
	}
	return &domain.StoreError{Op: op, Err: err}
}

// uniqueViolationColumn extracts "table.column" from a SQLite UNIQUE
// constraint error such as "UNIQUE constraint failed: tenants.email (2067)".
func uniqueViolationColumn(err error) (string, bool) {
	const marker = "UNIQUE constraint failed: "
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	rest := msg[i+len(marker):]
	if end := strings.IndexAny(rest, " ,"); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}
