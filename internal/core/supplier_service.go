package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierService manages supplier master records.
type SupplierService interface {
	Create(ctx context.Context, input SupplierInput) (*Supplier, error)
	Update(ctx context.Context, supplierID int, input SupplierInput) (*Supplier, error)
	Deactivate(ctx context.Context, supplierID int) error
	Get(ctx context.Context, supplierID int) (*Supplier, error)
	List(ctx context.Context, includeInactive bool) ([]Supplier, error)
	// VerifyContact asserts the supplier is active and reachable by email.
	// Purchase order creation refuses to write anything until this passes.
	VerifyContact(ctx context.Context, supplierID int) (*Supplier, error)
}

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, name, contact_person, email, phone, address,
	payment_terms_days, is_active, created_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	sp := &Supplier{}
	err := row.Scan(
		&sp.ID, &sp.Name, &sp.ContactPerson, &sp.Email, &sp.Phone, &sp.Address,
		&sp.PaymentTermsDays, &sp.IsActive, &sp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *supplierService) Create(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationf("supplier name is required")
	}
	terms := input.PaymentTermsDays
	if terms == 0 {
		terms = 30
	}

	toPtr := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address, payment_terms_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+supplierColumns,
		input.Name, toPtr(input.ContactPerson), toPtr(input.Email),
		toPtr(input.Phone), toPtr(input.Address), terms,
	))
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return sp, nil
}

func (s *supplierService) Update(ctx context.Context, supplierID int, input SupplierInput) (*Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationf("supplier name is required")
	}
	terms := input.PaymentTermsDays
	if terms == 0 {
		terms = 30
	}

	toPtr := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		UPDATE suppliers
		SET name = $1, contact_person = $2, email = $3, phone = $4, address = $5,
		    payment_terms_days = $6
		WHERE id = $7
		RETURNING `+supplierColumns,
		input.Name, toPtr(input.ContactPerson), toPtr(input.Email),
		toPtr(input.Phone), toPtr(input.Address), terms, supplierID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("supplier %d", supplierID)
		}
		return nil, fmt.Errorf("update supplier %d: %w", supplierID, err)
	}
	return sp, nil
}

func (s *supplierService) Deactivate(ctx context.Context, supplierID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE suppliers SET is_active = false WHERE id = $1", supplierID)
	if err != nil {
		return fmt.Errorf("deactivate supplier %d: %w", supplierID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("supplier %d", supplierID)
	}
	return nil
}

func (s *supplierService) Get(ctx context.Context, supplierID int) (*Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", supplierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("supplier %d", supplierID)
		}
		return nil, fmt.Errorf("get supplier %d: %w", supplierID, err)
	}
	return sp, nil
}

func (s *supplierService) List(ctx context.Context, includeInactive bool) ([]Supplier, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers"
	if !includeInactive {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		sp := Supplier{}
		if err := rows.Scan(
			&sp.ID, &sp.Name, &sp.ContactPerson, &sp.Email, &sp.Phone, &sp.Address,
			&sp.PaymentTermsDays, &sp.IsActive, &sp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *supplierService) VerifyContact(ctx context.Context, supplierID int) (*Supplier, error) {
	return verifySupplierContact(ctx, s.pool, supplierID)
}

// verifySupplierContact is shared with PurchaseOrderService.Create so the
// gate holds even when callers bypass the SupplierService interface.
func verifySupplierContact(ctx context.Context, pool *pgxpool.Pool, supplierID int) (*Supplier, error) {
	sp, err := scanSupplier(pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", supplierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("supplier %d", supplierID)
		}
		return nil, fmt.Errorf("verify supplier %d: %w", supplierID, err)
	}
	if !sp.IsActive {
		return nil, conflictf("supplier %d (%s) is inactive", sp.ID, sp.Name)
	}
	if sp.Email == nil || strings.TrimSpace(*sp.Email) == "" {
		return nil, validationf("supplier %d (%s) has no email on file", sp.ID, sp.Name)
	}
	return sp, nil
}
