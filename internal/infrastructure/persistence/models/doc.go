// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM concerns; each model has ToDomain and a ...FromDomain constructor.
//
// Tables:
//   - properties, units: property directory and unit occupancy
//   - tenants: renters bound to a unit
//   - meter_readings: append-only water readings
//   - bills: per tenant/unit/period ledger rows, unique on (tenant_id, unit_id, period)
//   - invoices: one per bill, unique on bill_id and (property_id, sequence)
//   - payments: insert-only payment records
//   - expenses: property expenses for reporting
package models
