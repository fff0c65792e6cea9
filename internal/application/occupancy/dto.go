package occupancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// AssignTenantRequest assigns a renter to a vacant unit
type AssignTenantRequest struct {
	PropertyID uuid.UUID        `json:"property_id" binding:"required"`
	UnitID     string           `json:"unit_id" binding:"required,max=50"`
	Name       string           `json:"name" binding:"required,min=1,max=200"`
	Phone      string           `json:"phone" binding:"max=50"`
	Email      string           `json:"email" binding:"omitempty,email"`
	IDNumber   string           `json:"id_number" binding:"max=50"`
	LeaseStart time.Time        `json:"lease_start" binding:"required"`
	Rent       *decimal.Decimal `json:"rent"`
	Deposit    *decimal.Decimal `json:"deposit"`
	// InitialWaterReading is required for metered properties
	InitialWaterReading *decimal.Decimal `json:"initial_water_reading"`
}

// VacateTenantRequest ends a tenancy
type VacateTenantRequest struct {
	VacatedAt *time.Time `json:"vacated_at"`
}

// TransferTenantRequest moves a tenant to another unit of the same property
type TransferTenantRequest struct {
	UnitID              string           `json:"unit_id" binding:"required,max=50"`
	Date                *time.Time       `json:"date"`
	InitialWaterReading *decimal.Decimal `json:"initial_water_reading"`
}

// ListTenantsRequest filters tenants
type ListTenantsRequest struct {
	PropertyID *uuid.UUID `form:"property_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=active vacated"`
	Search     string     `form:"search" binding:"max=100"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TenantResponse is a tenant as returned by the API
type TenantResponse struct {
	ID         uuid.UUID       `json:"id"`
	PropertyID uuid.UUID       `json:"property_id"`
	UnitID     string          `json:"unit_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	IDNumber   string          `json:"id_number"`
	LeaseStart time.Time       `json:"lease_start"`
	Rent       decimal.Decimal `json:"rent"`
	Deposit    decimal.Decimal `json:"deposit"`
	Status     string          `json:"status"`
	VacatedAt  *time.Time      `json:"vacated_at,omitempty"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListTenantsResponse is a page of tenants
type ListTenantsResponse struct {
	Items    []TenantResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// UnitResponse is a unit with its current tenant, if any
type UnitResponse struct {
	ID       uuid.UUID       `json:"id"`
	Code     string          `json:"unit_id"`
	UnitType string          `json:"unit_type"`
	Rent     decimal.Decimal `json:"rent"`
	Deposit  decimal.Decimal `json:"deposit"`
	Status   string          `json:"status"`
	TenantID *uuid.UUID      `json:"tenant_id,omitempty"`
	Tenant   *TenantResponse `json:"tenant,omitempty"`
}

// ToTenantResponse converts a tenant to its response form
func ToTenantResponse(t *occupancy.Tenant) TenantResponse {
	return TenantResponse{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		UnitID:     t.UnitID,
		Name:       t.Name,
		Phone:      t.Phone,
		Email:      t.Email,
		IDNumber:   t.IDNumber,
		LeaseStart: t.LeaseStart,
		Rent:       t.Rent,
		Deposit:    t.Deposit,
		Status:     t.Status.String(),
		VacatedAt:  t.VacatedAt,
		Version:    t.Version,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// ToUnitResponse converts a unit to its response form
func ToUnitResponse(u *property.Unit) UnitResponse {
	return UnitResponse{
		ID:       u.ID,
		Code:     u.Code,
		UnitType: u.UnitType,
		Rent:     u.Rent,
		Deposit:  u.Deposit,
		Status:   u.Status.String(),
		TenantID: u.TenantID,
	}
}
