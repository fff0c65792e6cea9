// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/billing/generate/{propertyId}": {
            "post": {
                "tags": [
                    "billing"
                ],
                "summary": "Generate a period's bills",
                "operationId": "generateBills",
                "description": "Creates one bill per active tenant. Calling again for a billed period returns the existing bills with created=false, unless strict=true asks for PERIOD_ALREADY_BILLED.",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "strict",
                        "in": "query",
                        "required": false,
                        "description": "Fail when the period is already billed",
                        "type": "boolean"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Billing period",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Bills created"
                    },
                    "200": {
                        "description": "Period was already billed"
                    },
                    "400": {
                        "description": "INVALID_PERIOD"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "PERIOD_ALREADY_BILLED or PERIOD_SUPERSEDED"
                    },
                    "422": {
                        "description": "NO_BASELINE_READING"
                    }
                }
            }
        },
        "/billing/{propertyId}": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "List a period's bills",
                "operationId": "listBills",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_PERIOD"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/billing/tenant/{tenantId}": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "A tenant's bill history",
                "operationId": "listTenantBills",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/billing/tenant/{tenantId}/carry-forward": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "What a tenant carries into a period",
                "operationId": "getCarryForward",
                "description": "Balance and overpayment from the tenant's latest bill before the period.",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/expenses": {
            "post": {
                "tags": [
                    "expenses"
                ],
                "summary": "Record an expense",
                "operationId": "recordExpense",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Expense",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_AMOUNT"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            },
            "get": {
                "tags": [
                    "expenses"
                ],
                "summary": "List expenses with their total",
                "operationId": "listExpenses",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "required": false,
                        "description": "First day, inclusive",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "required": false,
                        "description": "Last day, inclusive",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/invoices": {
            "post": {
                "tags": [
                    "invoices"
                ],
                "summary": "Issue invoices for a billed period",
                "operationId": "issueInvoices",
                "description": "One invoice per bill. Bills that already have an invoice are skipped.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Billing period",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "NO_BILL_FOR_PERIOD"
                    }
                }
            },
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "List a property's invoices",
                "operationId": "listInvoices",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": false,
                        "description": "Billing month",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Unpaid, PartiallyPaid, Paid, Overdue or Cancelled",
                        "type": "string"
                    },
                    {
                        "name": "tenantId",
                        "in": "query",
                        "required": false,
                        "description": "Tenant ID",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/invoices/{invoiceId}": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "Get an invoice",
                "operationId": "getInvoice",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "invoiceId",
                        "in": "path",
                        "required": true,
                        "description": "Invoice ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "INVOICE_NOT_FOUND"
                    }
                }
            }
        },
        "/properties/{id}/invoices/tenant/{tenantId}": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "A tenant's invoices within a property",
                "operationId": "listTenantInvoices",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "tenantId",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/invoices/{invoiceId}/status": {
            "patch": {
                "tags": [
                    "invoices"
                ],
                "summary": "Override an invoice's status",
                "operationId": "setInvoiceStatus",
                "description": "Paid and Cancelled are terminal: a terminal invoice rejects every further change.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "invoiceId",
                        "in": "path",
                        "required": true,
                        "description": "Invoice ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "New status",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_STATUS"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "INVOICE_TERMINAL"
                    }
                }
            }
        },
        "/properties/{id}/invoices/{invoiceId}/send": {
            "post": {
                "tags": [
                    "invoices"
                ],
                "summary": "Deliver an invoice by email or WhatsApp",
                "operationId": "sendInvoice",
                "description": "Records the channel as sent. The invoice status is unchanged.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "invoiceId",
                        "in": "path",
                        "required": true,
                        "description": "Invoice ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Delivery channel",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "NO_RECIPIENT, INVOICE_TERMINAL"
                    }
                }
            }
        },
        "/properties/{id}/invoices/overdue": {
            "post": {
                "tags": [
                    "invoices"
                ],
                "summary": "Run the overdue sweep for a property",
                "operationId": "markInvoicesOverdue",
                "description": "Open invoices past their deadline with a balance move to Overdue. as_of defaults to now.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "description": "Sweep time",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/invoices/{invoiceId}/pdf": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "Render an invoice as PDF",
                "operationId": "getInvoicePdf",
                "description": "Streams the PDF. With object storage configured, ?redirect=true answers with a 302 to the presigned URL and ?format=json returns the download link instead.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "invoiceId",
                        "in": "path",
                        "required": true,
                        "description": "Invoice ID",
                        "type": "string"
                    },
                    {
                        "name": "redirect",
                        "in": "query",
                        "required": false,
                        "description": "Redirect to the stored copy",
                        "type": "boolean"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "description": "json for the download link",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "302": {
                        "description": "Presigned download URL"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "503": {
                        "description": "RENDERER_UNAVAILABLE"
                    }
                }
            }
        },
        "/properties/{id}/payments": {
            "post": {
                "tags": [
                    "payments"
                ],
                "summary": "Record a payment",
                "operationId": "recordPayment",
                "description": "Rent payments are applied to the tenant's bill for the period, capped at the balance; any excess becomes overpayment. Deposit payments only count toward the deposit. Retrying with the same Idempotency-Key returns DUPLICATE_REQUEST instead of paying twice.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Client retry key",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Payment",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_AMOUNT"
                    },
                    "404": {
                        "description": "TENANT_NOT_FOUND"
                    },
                    "409": {
                        "description": "DUPLICATE_REQUEST"
                    },
                    "422": {
                        "description": "NO_BILL_FOR_PERIOD"
                    }
                }
            },
            "get": {
                "tags": [
                    "payments"
                ],
                "summary": "List a property's payments",
                "operationId": "listPayments",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": false,
                        "description": "Billing month",
                        "type": "string"
                    },
                    {
                        "name": "tenantId",
                        "in": "query",
                        "required": false,
                        "description": "Tenant ID",
                        "type": "string"
                    },
                    {
                        "name": "type",
                        "in": "query",
                        "required": false,
                        "description": "Rent or Deposit",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/payments/tenant/{tenantId}": {
            "get": {
                "tags": [
                    "payments"
                ],
                "summary": "A tenant's payment history",
                "operationId": "listTenantPayments",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/payments/tenant/{tenantId}/deposit": {
            "get": {
                "tags": [
                    "payments"
                ],
                "summary": "How much of a tenant's deposit has been paid",
                "operationId": "getDepositStatus",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties": {
            "post": {
                "tags": [
                    "properties"
                ],
                "summary": "Register a property",
                "operationId": "createProperty",
                "description": "Creates the property and one vacant unit per declared unit id",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Property and unit types",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "DUPLICATE_UNIT"
                    }
                }
            },
            "get": {
                "tags": [
                    "properties"
                ],
                "summary": "List properties",
                "operationId": "listProperties",
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "description": "Name contains",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    },
                    {
                        "name": "order_by",
                        "in": "query",
                        "required": false,
                        "description": "Sort field",
                        "type": "string"
                    },
                    {
                        "name": "order_dir",
                        "in": "query",
                        "required": false,
                        "description": "asc or desc",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}": {
            "get": {
                "tags": [
                    "properties"
                ],
                "summary": "Get a property",
                "operationId": "getProperty",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "PROPERTY_NOT_FOUND"
                    }
                }
            },
            "put": {
                "tags": [
                    "properties"
                ],
                "summary": "Update property settings",
                "operationId": "updateProperty",
                "description": "Partial update of name, address, utilities, payment details, service rate and landlord. New rates apply to bills generated afterwards.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Settings to change",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "OPTIMISTIC_LOCK_ERROR"
                    }
                }
            }
        },
        "/properties/{id}/units": {
            "get": {
                "tags": [
                    "properties"
                ],
                "summary": "List a property's units",
                "operationId": "listPropertyUnits",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "vacant or occupied",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_STATUS"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/water-readings": {
            "post": {
                "tags": [
                    "readings"
                ],
                "summary": "Record a batch of meter readings",
                "operationId": "recordWaterReadings",
                "description": "Each unit is checked on its own: a rejected reading does not stop its siblings. The response is 201 when every reading was recorded and 207 when some failed.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Readings taken on one date",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "207": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "PROPERTY_NOT_METERED"
                    }
                }
            },
            "get": {
                "tags": [
                    "readings"
                ],
                "summary": "List meter readings",
                "operationId": "listWaterReadings",
                "description": "Ordered by date, each with the consumption since the previous reading (null for a baseline).",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "unitId",
                        "in": "query",
                        "required": false,
                        "description": "Restrict to one unit",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/properties/{id}/water-readings/charge": {
            "get": {
                "tags": [
                    "readings"
                ],
                "summary": "A unit's water charge for a period",
                "operationId": "getWaterCharge",
                "description": "Consumption between the period's reading and the one before it, at the property's rate.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "unitId",
                        "in": "query",
                        "required": true,
                        "description": "Unit ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "NO_BASELINE_READING"
                    }
                }
            }
        },
        "/reports/{propertyId}/occupancy": {
            "get": {
                "tags": [
                    "reports"
                ],
                "summary": "Occupied and vacant units",
                "operationId": "getOccupancyReport",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/reports/{propertyId}/balances": {
            "get": {
                "tags": [
                    "reports"
                ],
                "summary": "Each active tenant's standing after their latest bill",
                "operationId": "getBalancesReport",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Owing, Credit or Settled",
                        "type": "string"
                    },
                    {
                        "name": "min_balance",
                        "in": "query",
                        "required": false,
                        "description": "Only balances at or above this amount",
                        "type": "number"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/reports/{propertyId}/financials": {
            "get": {
                "tags": [
                    "reports"
                ],
                "summary": "Collections against expenses for a period",
                "operationId": "getFinancialReport",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_PERIOD"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/reports/{propertyId}/utilities": {
            "get": {
                "tags": [
                    "reports"
                ],
                "summary": "Water consumption and charges per unit for a period",
                "operationId": "getUtilityReport",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_PERIOD"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/reports/{propertyId}/billing-stats": {
            "get": {
                "tags": [
                    "reports"
                ],
                "summary": "Billed, collected and outstanding totals for a period",
                "operationId": "getBillingStats",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "path",
                        "required": true,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "period",
                        "in": "query",
                        "required": true,
                        "description": "Billing month",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "INVALID_PERIOD"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Service health",
                "operationId": "health",
                "description": "Pings the database and cache. Any failed check makes the response 503.",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Error"
                    }
                }
            }
        },
        "/ping": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Ping the API",
                "operationId": "ping",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/tenants": {
            "post": {
                "tags": [
                    "tenants"
                ],
                "summary": "Assign a tenant to a vacant unit",
                "operationId": "assignTenant",
                "description": "Rent and deposit default to the unit's terms. Metered properties require initial_water_reading, stored as the baseline reading at lease start.",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Tenant details",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "404": {
                        "description": "PROPERTY_NOT_FOUND, UNIT_NOT_FOUND"
                    },
                    "409": {
                        "description": "UNIT_NOT_VACANT"
                    },
                    "422": {
                        "description": "INITIAL_READING_REQUIRED"
                    }
                }
            },
            "get": {
                "tags": [
                    "tenants"
                ],
                "summary": "List tenants",
                "operationId": "listTenants",
                "parameters": [
                    {
                        "name": "propertyId",
                        "in": "query",
                        "required": false,
                        "description": "Property ID",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "active or vacated",
                        "type": "string"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "description": "Name or phone contains",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                }
            }
        },
        "/tenants/{id}": {
            "get": {
                "tags": [
                    "tenants"
                ],
                "summary": "Get a tenant",
                "operationId": "getTenant",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "TENANT_NOT_FOUND"
                    }
                }
            }
        },
        "/tenants/{id}/vacate": {
            "post": {
                "tags": [
                    "tenants"
                ],
                "summary": "Vacate a tenant",
                "operationId": "vacateTenant",
                "description": "Frees the unit. The outstanding balance and history stay on record. Vacating an already vacated tenant succeeds without change.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "description": "Move-out date, defaults to now",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/tenants/{id}/transfer": {
            "post": {
                "tags": [
                    "tenants"
                ],
                "summary": "Move a tenant to another unit of the same property",
                "operationId": "transferTenant",
                "description": "Keeps the tenant identity so balances carry forward under the new unit.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Tenant ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Target unit",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "UNIT_NOT_VACANT, SAME_UNIT"
                    },
                    "422": {
                        "description": "TENANT_NOT_ACTIVE"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rent Ledger API",
	Description:      "Per-period rental billing, invoicing and payment ledger for residential properties.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
