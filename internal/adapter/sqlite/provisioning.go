package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// ---- services ----

// CreateServices inserts the whole catalog in one transaction. It only
// writes while the tenant is pending and never duplicates an existing catalog.
func (s *Store) CreateServices(ctx context.Context, tenantID string, entries []domain.ServiceCatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "beginning catalog transaction", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := requirePending(ctx, tx, tenantID); err != nil {
		return err
	}

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM services WHERE tenant_id = ?`, tenantID,
	).Scan(&existing); err != nil {
		return &domain.StoreError{Op: "counting services", Err: err}
	}
	if existing > 0 {
		return nil
	}

	now := formatTime(s.now())
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services (id, tenant_id, name, duration_minutes, price_cents, active, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, tenantID, e.Name, e.DurationMinutes, e.PriceCents, e.Active, i, now,
		); err != nil {
			return &domain.StoreError{Op: "inserting service", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "committing catalog", Err: err}
	}
	return nil
}

func (s *Store) ListServices(ctx context.Context, tenantID string) ([]domain.ServiceCatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, duration_minutes, price_cents, active
		 FROM services WHERE tenant_id = ? ORDER BY position`, tenantID)
	if err != nil {
		return nil, &domain.StoreError{Op: "listing services", Err: err}
	}
	defer rows.Close()

	var out []domain.ServiceCatalogEntry
	for rows.Next() {
		var e domain.ServiceCatalogEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Name, &e.DurationMinutes, &e.PriceCents, &e.Active); err != nil {
			return nil, &domain.StoreError{Op: "scanning service", Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "listing services", Err: err}
	}
	return out, nil
}

// ---- staff ----

// CreateOwner inserts the owner record; the partial unique index on
// (tenant_id) WHERE role = 'owner' turns a repeat into a no-op.
func (s *Store) CreateOwner(ctx context.Context, m domain.StaffMember) error {
	id := m.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO staff_members (id, tenant_id, first_name, last_name, email, phone, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.TenantID, m.FirstName, m.LastName, m.Email, m.Phone, domain.RoleOwner, m.Active, formatTime(s.now()),
	)
	if err != nil {
		return &domain.StoreError{Op: "inserting owner", Err: err}
	}
	return nil
}

// ---- phone assignments ----

func (s *Store) SavePhoneAssignment(ctx context.Context, a domain.PhoneNumberAssignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO phone_assignments (tenant_id, strategy, phone_number_id, number, existing_number,
		 forward_after_hours, forward_complex_calls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id) DO UPDATE SET
		   strategy = excluded.strategy,
		   phone_number_id = excluded.phone_number_id,
		   number = excluded.number,
		   existing_number = excluded.existing_number,
		   forward_after_hours = excluded.forward_after_hours,
		   forward_complex_calls = excluded.forward_complex_calls`,
		a.TenantID, string(a.Strategy), a.PhoneNumberID, a.Number, a.ExistingNumber,
		a.Forwarding.AfterHours, a.Forwarding.ComplexCalls, formatTime(s.now()),
	)
	if err != nil {
		return &domain.StoreError{Op: "saving phone assignment", Err: err}
	}
	return nil
}

func (s *Store) GetPhoneAssignment(ctx context.Context, tenantID string) (domain.PhoneNumberAssignment, bool, error) {
	var a domain.PhoneNumberAssignment
	var strategy string

	err := s.db.QueryRowContext(ctx,
		`SELECT tenant_id, strategy, phone_number_id, number, existing_number, forward_after_hours, forward_complex_calls
		 FROM phone_assignments WHERE tenant_id = ?`, tenantID,
	).Scan(&a.TenantID, &strategy, &a.PhoneNumberID, &a.Number, &a.ExistingNumber,
		&a.Forwarding.AfterHours, &a.Forwarding.ComplexCalls)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PhoneNumberAssignment{}, false, nil
	}
	if err != nil {
		return domain.PhoneNumberAssignment{}, false, &domain.StoreError{Op: "selecting phone assignment", Err: err}
	}

	a.Strategy = domain.TelephonyStrategy(strategy)
	return a, true, nil
}

// ---- provisioning records ----

type warningJSON struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (s *Store) SaveProvisioning(ctx context.Context, rec domain.ProvisioningRecord) error {
	ws := make([]warningJSON, len(rec.Warnings))
	for i, w := range rec.Warnings {
		ws[i] = warningJSON{Code: string(w.Code), Detail: w.Detail}
	}
	warnings, err := json.Marshal(ws)
	if err != nil {
		return &domain.StoreError{Op: "encoding warnings", Err: err}
	}

	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO provisioning_records (tenant_id, status, failed_step, error_type, error_detail,
		 phone_number, assistant_id, assistant_kind, warnings, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id) DO UPDATE SET
		   status = excluded.status,
		   failed_step = excluded.failed_step,
		   error_type = excluded.error_type,
		   error_detail = excluded.error_detail,
		   phone_number = excluded.phone_number,
		   assistant_id = excluded.assistant_id,
		   assistant_kind = excluded.assistant_kind,
		   warnings = excluded.warnings,
		   updated_at = excluded.updated_at`,
		rec.TenantID, string(rec.Status), rec.FailedStep, rec.ErrorType, rec.ErrorDetail,
		rec.PhoneNumber, rec.AssistantID, string(rec.AssistantKind), string(warnings), formatTime(updated),
	)
	if err != nil {
		return &domain.StoreError{Op: "saving provisioning record", Err: err}
	}
	return nil
}

func (s *Store) GetProvisioning(ctx context.Context, tenantID string) (domain.ProvisioningRecord, error) {
	var rec domain.ProvisioningRecord
	var status, kind, warnings, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT tenant_id, status, failed_step, error_type, error_detail, phone_number,
		 assistant_id, assistant_kind, warnings, updated_at
		 FROM provisioning_records WHERE tenant_id = ?`, tenantID,
	).Scan(&rec.TenantID, &status, &rec.FailedStep, &rec.ErrorType, &rec.ErrorDetail, &rec.PhoneNumber,
		&rec.AssistantID, &kind, &warnings, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProvisioningRecord{}, domain.ErrTenantNotFound
	}
	if err != nil {
		return domain.ProvisioningRecord{}, &domain.StoreError{Op: "selecting provisioning record", Err: err}
	}

	var ws []warningJSON
	if err := json.Unmarshal([]byte(warnings), &ws); err != nil {
		return domain.ProvisioningRecord{}, &domain.StoreError{Op: "decoding warnings", Err: err}
	}
	for _, w := range ws {
		rec.Warnings = append(rec.Warnings, domain.Warning{Code: domain.WarningCode(w.Code), Detail: w.Detail})
	}

	rec.Status = domain.Status(status)
	rec.AssistantKind = domain.AssistantKind(kind)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

// requirePending fails with domain.ErrTenantNotPending unless the tenant
// exists in the pending state.
func requirePending(ctx context.Context, tx *sql.Tx, tenantID string) error {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM tenants WHERE id = ?`, tenantID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTenantNotFound
	}
	if err != nil {
		return &domain.StoreError{Op: "checking tenant status", Err: err}
	}
	if domain.Status(status) != domain.StatusPending {
		return domain.ErrTenantNotPending
	}
	return nil
}
