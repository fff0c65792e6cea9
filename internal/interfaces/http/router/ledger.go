package router

import (
	"github.com/rentledger/backend/internal/interfaces/http/handler"
)

// Handlers are the API handlers mounted by LedgerGroups
type Handlers struct {
	Property *handler.PropertyHandler
	Tenant   *handler.TenantHandler
	Reading  *handler.ReadingHandler
	Billing  *handler.BillingHandler
	Invoice  *handler.InvoiceHandler
	Payment  *handler.PaymentHandler
	Expense  *handler.ExpenseHandler
	Report   *handler.ReportHandler
}

// LedgerGroups builds the versioned API route groups
func LedgerGroups(h Handlers) []*RouteGroup {
	properties := NewRouteGroup("property", "/properties")
	properties.POST("", h.Property.Create).
		GET("", h.Property.List).
		GET("/:id", h.Property.Get).
		PUT("/:id", h.Property.Update).
		GET("/:id/units", h.Property.ListUnits)

	readings := properties.Sub("metering", "/:id/water-readings")
	readings.POST("", h.Reading.Record).
		GET("", h.Reading.List).
		GET("/charge", h.Reading.WaterCharge)

	invoices := properties.Sub("invoicing", "/:id/invoices")
	invoices.POST("", h.Invoice.Issue).
		GET("", h.Invoice.List).
		POST("/overdue", h.Invoice.MarkOverdue).
		GET("/tenant/:tenantId", h.Invoice.TenantInvoices).
		GET("/:invoiceId", h.Invoice.Get).
		GET("/:invoiceId/pdf", h.Invoice.PDF).
		PATCH("/:invoiceId/status", h.Invoice.SetStatus).
		POST("/:invoiceId/send", h.Invoice.Send)

	propertyPayments := properties.Sub("payment", "/:id/payments")
	propertyPayments.POST("", h.Payment.Record).
		GET("", h.Payment.List)

	expenses := properties.Sub("expense", "/:id/expenses")
	expenses.POST("", h.Expense.Record).
		GET("", h.Expense.List)

	tenants := NewRouteGroup("occupancy", "/tenants")
	tenants.POST("", h.Tenant.Assign).
		GET("", h.Tenant.List).
		GET("/:id", h.Tenant.Get).
		POST("/:id/vacate", h.Tenant.Vacate).
		POST("/:id/transfer", h.Tenant.Transfer)

	billing := NewRouteGroup("billing", "/billing")
	billing.POST("/generate/:propertyId", h.Billing.Generate).
		GET("/tenant/:tenantId", h.Billing.TenantBills).
		GET("/tenant/:tenantId/carry-forward", h.Billing.CarryForward).
		GET("/:propertyId", h.Billing.List)

	payments := NewRouteGroup("payment", "/payments")
	payments.GET("/tenant/:tenantId", h.Payment.TenantPayments).
		GET("/tenant/:tenantId/deposit", h.Payment.DepositStatus)

	reports := NewRouteGroup("report", "/reports")
	reports.GET("/:propertyId/occupancy", h.Report.Occupancy).
		GET("/:propertyId/balances", h.Report.Balances).
		GET("/:propertyId/financials", h.Report.Financials).
		GET("/:propertyId/utilities", h.Report.Utilities).
		GET("/:propertyId/billing-stats", h.Report.BillingStats)

	return []*RouteGroup{properties, tenants, billing, payments, reports}
}
