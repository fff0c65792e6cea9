package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// WaterMethod is how a property bills water
type WaterMethod string

const (
	WaterMethodFixed   WaterMethod = "Fixed"   // flat charge per period
	WaterMethodMetered WaterMethod = "Metered" // consumption x rate
)

// IsValid checks if the water method is known
func (m WaterMethod) IsValid() bool {
	return m == WaterMethodFixed || m == WaterMethodMetered
}

// String returns the string representation of WaterMethod
func (m WaterMethod) String() string {
	return string(m)
}

// ServiceRateModel is how the management fee is charged to the landlord
type ServiceRateModel string

const (
	ServiceRatePercentage ServiceRateModel = "percentage"
	ServiceRateFixed      ServiceRateModel = "fixed"
)

// IsValid checks if the service rate model is known
func (m ServiceRateModel) IsValid() bool {
	return m == ServiceRatePercentage || m == ServiceRateFixed
}

// ServiceRate is the management fee configuration
type ServiceRate struct {
	Model ServiceRateModel `json:"model"`
	Value decimal.Decimal  `json:"value"`
}

// FeeOn returns the management fee owed on the given rent collection
func (r ServiceRate) FeeOn(collected decimal.Decimal) decimal.Decimal {
	switch r.Model {
	case ServiceRatePercentage:
		return valueobject.RoundAmount(collected.Mul(r.Value).Div(decimal.NewFromInt(100)))
	case ServiceRateFixed:
		return r.Value
	}
	return decimal.Zero
}

// PaymentDetails is where tenants pay and by which day of the month
type PaymentDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	Bank          string `json:"bank"`
	// DeadlineDay is the day of month rent is due (1..31). Zero disables overdue tracking.
	DeadlineDay int `json:"deadline_day"`
}

// Landlord is the owner contact shown on invoices
type Landlord struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Utilities holds the per-property utility charges
type Utilities struct {
	WaterMethod WaterMethod `json:"water_method"`
	// WaterRate is the per-unit rate when Metered, the flat amount when Fixed.
	WaterRate  decimal.Decimal `json:"water_rate"`
	GarbageFee decimal.Decimal `json:"garbage_fee"`
}

// UnitType groups units sharing rent and deposit terms
type UnitType struct {
	Type    string          `json:"type"`
	Rent    decimal.Decimal `json:"rent"`
	Deposit decimal.Decimal `json:"deposit"`
	UnitIDs []string        `json:"unit_ids"`
}

// Property is the aggregate root for a rental property and its billing configuration
type Property struct {
	shared.BaseAggregateRoot
	Name            string
	Address         string
	PropertyType    string
	ServiceRate     ServiceRate
	PaymentDetails  PaymentDetails
	Landlord        Landlord
	Utilities       Utilities
	UnitTypes       []UnitType
	InvoiceSequence int64
}

// NewPropertyInput holds the data needed to register a property
type NewPropertyInput struct {
	Name           string
	Address        string
	PropertyType   string
	ServiceRate    ServiceRate
	PaymentDetails PaymentDetails
	Landlord       Landlord
	Utilities      Utilities
	UnitTypes      []UnitType
}

// NewProperty validates the input and creates a property together with one vacant
// unit per declared unit id.
func NewProperty(in NewPropertyInput) (*Property, []*Unit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if err := validateSettings(in.ServiceRate, in.PaymentDetails, in.Utilities); err != nil {
		return nil, nil, err
	}
	if len(in.UnitTypes) == 0 {
		return nil, nil, shared.NewDomainError("INVALID_UNIT_TYPES", "At least one unit type is required")
	}

	p := &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           strings.TrimSpace(in.Address),
		PropertyType:      in.PropertyType,
		ServiceRate:       in.ServiceRate,
		PaymentDetails:    in.PaymentDetails,
		Landlord:          in.Landlord,
		Utilities:         in.Utilities,
	}

	seen := make(map[string]bool)
	var units []*Unit
	for _, ut := range in.UnitTypes {
		if strings.TrimSpace(ut.Type) == "" {
			return nil, nil, shared.NewDomainError("INVALID_UNIT_TYPES", "Unit type name cannot be empty")
		}
		if ut.Rent.IsNegative() || ut.Deposit.IsNegative() {
			return nil, nil, shared.NewDomainError("INVALID_UNIT_TYPES",
				fmt.Sprintf("Unit type %s has a negative rent or deposit", ut.Type))
		}
		for _, code := range ut.UnitIDs {
			code = strings.TrimSpace(code)
			if code == "" {
				return nil, nil, shared.NewDomainError("INVALID_UNIT_TYPES", "Unit id cannot be empty")
			}
			if seen[code] {
				return nil, nil, shared.NewDomainError("DUPLICATE_UNIT",
					fmt.Sprintf("Unit %s is declared more than once", code))
			}
			seen[code] = true
			units = append(units, NewUnit(p.ID, code, ut))
		}
		p.UnitTypes = append(p.UnitTypes, ut)
	}

	p.AddDomainEvent(NewPropertyCreatedEvent(p, len(units)))
	return p, units, nil
}

func validateSettings(rate ServiceRate, pay PaymentDetails, util Utilities) error {
	if rate.Model != "" && !rate.Model.IsValid() {
		return shared.NewDomainError("INVALID_SERVICE_RATE", "Service rate model must be percentage or fixed")
	}
	if rate.Value.IsNegative() {
		return shared.NewDomainError("INVALID_SERVICE_RATE", "Service rate cannot be negative")
	}
	if pay.DeadlineDay < 0 || pay.DeadlineDay > 31 {
		return shared.NewDomainError("INVALID_DEADLINE", "Payment deadline day must be between 1 and 31")
	}
	if !util.WaterMethod.IsValid() {
		return shared.NewDomainError("INVALID_WATER_METHOD", "Water billing method must be Fixed or Metered")
	}
	if util.WaterRate.IsNegative() || util.GarbageFee.IsNegative() {
		return shared.NewDomainError("INVALID_UTILITIES", "Utility rates cannot be negative")
	}
	return nil
}

// UpdateSettingsInput holds the mutable billing configuration
type UpdateSettingsInput struct {
	Name           *string
	Address        *string
	ServiceRate    *ServiceRate
	PaymentDetails *PaymentDetails
	Landlord       *Landlord
	Utilities      *Utilities
}

// UpdateSettings applies a partial settings update.
// Bills already generated keep the values captured at generation time.
func (p *Property) UpdateSettings(in UpdateSettingsInput) error {
	rate, pay, util := p.ServiceRate, p.PaymentDetails, p.Utilities
	if in.ServiceRate != nil {
		rate = *in.ServiceRate
	}
	if in.PaymentDetails != nil {
		pay = *in.PaymentDetails
	}
	if in.Utilities != nil {
		util = *in.Utilities
	}
	if err := validateSettings(rate, pay, util); err != nil {
		return err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
		}
		p.Name = name
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.Landlord != nil {
		p.Landlord = *in.Landlord
	}
	p.ServiceRate, p.PaymentDetails, p.Utilities = rate, pay, util
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsMetered reports whether water is billed from meter readings
func (p *Property) IsMetered() bool {
	return p.Utilities.WaterMethod == WaterMethodMetered
}

// NextInvoiceNumber allocates the next property-scoped invoice number.
// Numbers are never handed out twice, even if the invoice is later cancelled.
func (p *Property) NextInvoiceNumber() int64 {
	return p.AllocateInvoiceNumbers(1)[0]
}

// AllocateInvoiceNumbers reserves n consecutive invoice numbers as one change.
func (p *Property) AllocateInvoiceNumbers(n int) []int64 {
	if n <= 0 {
		return nil
	}
	numbers := make([]int64, n)
	for i := range numbers {
		p.InvoiceSequence++
		numbers[i] = p.InvoiceSequence
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return numbers
}

// PaymentDeadline returns the due instant for a period, or false if the
// property has no deadline configured.
func (p *Property) PaymentDeadline(period valueobject.Period) (time.Time, bool) {
	if p.PaymentDetails.DeadlineDay <= 0 {
		return time.Time{}, false
	}
	return period.DayDate(p.PaymentDetails.DeadlineDay), true
}

// UnitType returns the unit type declaration with the given name
func (p *Property) UnitType(name string) (UnitType, bool) {
	for _, ut := range p.UnitTypes {
		if ut.Type == name {
			return ut, true
		}
	}
	return UnitType{}, false
}

// PropertyNotFound builds the not-found error for a property id
func PropertyNotFound(id uuid.UUID) error {
	return shared.NewDomainError(shared.CodePropertyNotFound, fmt.Sprintf("Property %s not found", id))
}
