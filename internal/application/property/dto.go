package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// ServiceRateDTO is the management fee configuration
type ServiceRateDTO struct {
	Model string          `json:"model" binding:"omitempty,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value"`
}

// PaymentDetailsDTO is where and by when tenants pay
type PaymentDetailsDTO struct {
	AccountName   string `json:"account_name" binding:"max=200"`
	AccountNumber string `json:"account_number" binding:"max=100"`
	Bank          string `json:"bank" binding:"max=200"`
	DeadlineDay   int    `json:"deadline_day" binding:"min=0,max=31"`
}

// LandlordDTO is the owner contact
type LandlordDTO struct {
	Name  string `json:"name" binding:"max=200"`
	Phone string `json:"phone" binding:"max=50"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UtilitiesDTO holds the utility charges
type UtilitiesDTO struct {
	WaterMethod string          `json:"water_method" binding:"required,water_method"`
	WaterRate   decimal.Decimal `json:"water_rate"`
	GarbageFee  decimal.Decimal `json:"garbage_fee"`
}

// UnitTypeDTO declares a group of units sharing terms
type UnitTypeDTO struct {
	Type    string          `json:"type" binding:"required,max=50"`
	Rent    decimal.Decimal `json:"rent"`
	Deposit decimal.Decimal `json:"deposit"`
	// Count defaults to len(UnitIDs) and must match it when given
	Count   int      `json:"count" binding:"min=0"`
	UnitIDs []string `json:"unit_ids" binding:"required,min=1,dive,required,max=50"`
}

// CreatePropertyRequest registers a property and its units
type CreatePropertyRequest struct {
	Name           string            `json:"name" binding:"required,min=1,max=200"`
	Address        string            `json:"address" binding:"max=500"`
	PropertyType   string            `json:"property_type" binding:"max=50"`
	ServiceRate    ServiceRateDTO    `json:"service_rate"`
	PaymentDetails PaymentDetailsDTO `json:"payment_details"`
	Landlord       LandlordDTO       `json:"landlord"`
	Utilities      UtilitiesDTO      `json:"utilities" binding:"required"`
	UnitTypes      []UnitTypeDTO     `json:"unit_types" binding:"required,min=1,dive"`
}

// UpdatePropertyRequest is a partial settings update
type UpdatePropertyRequest struct {
	Name           *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Address        *string            `json:"address" binding:"omitempty,max=500"`
	ServiceRate    *ServiceRateDTO    `json:"service_rate"`
	PaymentDetails *PaymentDetailsDTO `json:"payment_details"`
	Landlord       *LandlordDTO       `json:"landlord"`
	Utilities      *UtilitiesDTO      `json:"utilities"`
}

// ListPropertiesRequest filters the property directory
type ListPropertiesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UnitSummary counts a property's units by status
type UnitSummary struct {
	Total    int64 `json:"total"`
	Occupied int64 `json:"occupied"`
	Vacant   int64 `json:"vacant"`
}

// PropertyResponse is the property as returned by the API
type PropertyResponse struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"name"`
	Address         string                  `json:"address"`
	PropertyType    string                  `json:"property_type"`
	ServiceRate     property.ServiceRate    `json:"service_rate"`
	PaymentDetails  property.PaymentDetails `json:"payment_details"`
	Landlord        property.Landlord       `json:"landlord"`
	Utilities       property.Utilities      `json:"utilities"`
	UnitTypes       []property.UnitType     `json:"unit_types"`
	InvoiceSequence int64                   `json:"invoice_sequence"`
	Units           *UnitSummary            `json:"units,omitempty"`
	Version         int                     `json:"version"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ListPropertiesResponse is a page of properties
type ListPropertiesResponse struct {
	Items    []PropertyResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ToPropertyResponse converts the aggregate to its response form
func ToPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:              p.ID,
		Name:            p.Name,
		Address:         p.Address,
		PropertyType:    p.PropertyType,
		ServiceRate:     p.ServiceRate,
		PaymentDetails:  p.PaymentDetails,
		Landlord:        p.Landlord,
		Utilities:       p.Utilities,
		UnitTypes:       p.UnitTypes,
		InvoiceSequence: p.InvoiceSequence,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d ServiceRateDTO) toDomain() property.ServiceRate {
	return property.ServiceRate{Model: property.ServiceRateModel(d.Model), Value: d.Value}
}

func (d PaymentDetailsDTO) toDomain() property.PaymentDetails {
	return property.PaymentDetails{
		AccountName:   d.AccountName,
		AccountNumber: d.AccountNumber,
		Bank:          d.Bank,
		DeadlineDay:   d.DeadlineDay,
	}
}

func (d LandlordDTO) toDomain() property.Landlord {
	return property.Landlord{Name: d.Name, Phone: d.Phone, Email: d.Email}
}

func (d UtilitiesDTO) toDomain() property.Utilities {
	return property.Utilities{
		WaterMethod: property.WaterMethod(d.WaterMethod),
		WaterRate:   d.WaterRate,
		GarbageFee:  d.GarbageFee,
	}
}
