package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/apperr"
)

const companyNotFoundMessage = "company not found"

// CreateCompanyParams contains data for registering a prospect facility.
type CreateCompanyParams struct {
	Name            string
	Sector          string
	Zone            string
	MaxDemandKW     *float64
	TenantStructure domain.TenantStructure
	OperatingHours  domain.OperatingHours
	RoofSizeSqft    *float64
	MonthlyBillRM   *float64
	OwnerOccupied   *bool
}

// CreateCompany registers a prospect facility.
func (r *Repo) CreateCompany(ctx context.Context, params CreateCompanyParams) (domain.Company, error) {
	query := `
        INSERT INTO companies (
            name, sector, zone, max_demand_kw, tenant_structure, operating_hours,
            roof_size_sqft, monthly_bill_rm, owner_occupied
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, name, sector, zone, max_demand_kw, tenant_structure, operating_hours,
                  roof_size_sqft, monthly_bill_rm, owner_occupied, created_at`

	return r.scanCompany(r.pool.QueryRow(ctx, query,
		params.Name,
		params.Sector,
		params.Zone,
		params.MaxDemandKW,
		string(params.TenantStructure),
		string(params.OperatingHours),
		params.RoofSizeSqft,
		params.MonthlyBillRM,
		params.OwnerOccupied,
	), "create company")
}

// GetCompany retrieves a company by ID.
func (r *Repo) GetCompany(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	query := `
        SELECT id, name, sector, zone, max_demand_kw, tenant_structure, operating_hours,
               roof_size_sqft, monthly_bill_rm, owner_occupied, created_at
        FROM companies
        WHERE id = $1`

	return r.scanCompany(r.pool.QueryRow(ctx, query, id), "get company")
}

func (r *Repo) scanCompany(row pgx.Row, op string) (domain.Company, error) {
	var company domain.Company
	var tenantStructure, operatingHours string
	if err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Sector,
		&company.Zone,
		&company.MaxDemandKW,
		&tenantStructure,
		&operatingHours,
		&company.RoofSizeSqft,
		&company.MonthlyBillRM,
		&company.OwnerOccupied,
		&company.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Company{}, apperr.NotFound(companyNotFoundMessage)
		}
		return domain.Company{}, fmt.Errorf("%s: %w", op, err)
	}
	company.TenantStructure = domain.TenantStructure(tenantStructure)
	company.OperatingHours = domain.OperatingHours(operatingHours)
	return company, nil
}

// ListCompanies lists registered facilities newest first.
func (r *Repo) ListCompanies(ctx context.Context, limit, offset int) ([]domain.Company, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
        SELECT id, name, sector, zone, max_demand_kw, tenant_structure, operating_hours,
               roof_size_sqft, monthly_bill_rm, owner_occupied, created_at
        FROM companies
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Company, 0)
	for rows.Next() {
		var company domain.Company
		var tenantStructure, operatingHours string
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Sector,
			&company.Zone,
			&company.MaxDemandKW,
			&tenantStructure,
			&operatingHours,
			&company.RoofSizeSqft,
			&company.MonthlyBillRM,
			&company.OwnerOccupied,
			&company.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		company.TenantStructure = domain.TenantStructure(tenantStructure)
		company.OperatingHours = domain.OperatingHours(operatingHours)
		items = append(items, company)
	}
	return items, rows.Err()
}

// CreateContactParams contains data for creating a contact.
type CreateContactParams struct {
	CompanyID uuid.UUID
	Name      string
	Phone     *string
	Email     *string
	Role      *string
}

// Contact is a person at a prospect facility.
type Contact struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Phone     *string
	Email     *string
	Role      *string
}

// CreateContact creates a contact under a company. Phone is expected to be
// normalized to E.164 by the caller.
func (r *Repo) CreateContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	query := `
        INSERT INTO contacts (company_id, name, phone, email, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, company_id, name, phone, email, role`

	var contact Contact
	if err := r.pool.QueryRow(ctx, query,
		params.CompanyID,
		params.Name,
		params.Phone,
		params.Email,
		params.Role,
	).Scan(
		&contact.ID,
		&contact.CompanyID,
		&contact.Name,
		&contact.Phone,
		&contact.Email,
		&contact.Role,
	); err != nil {
		return Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}
