// Package invoicing issues invoices from bills and drives the invoice
// lifecycle: status changes, delivery, overdue sweeps and PDF rendering.
package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultOverdueBatch = 200

var (
	ErrNotifierUnavailable = shared.NewDomainError("NOTIFIER_UNAVAILABLE", "No delivery channel is configured")
	ErrRendererUnavailable = shared.NewDomainError("RENDERER_UNAVAILABLE", "Invoice PDF rendering is disabled")
	ErrNoRecipient         = shared.NewDomainError("NO_RECIPIENT", "Tenant has no contact for this channel")
)

// Config holds invoice numbering and document settings
type Config struct {
	Prefix       string
	PresignTTL   time.Duration
	OverdueBatch int
}

// InvoiceService manages invoices
type InvoiceService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time

	notifier Notifier
	renderer DocumentRenderer
	store    DocumentStore
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope txn.TransactionScope, repos txn.Repositories, publisher shared.EventPublisher, logger *zap.Logger, cfg Config) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = invoicing.DefaultNumberPrefix
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.OverdueBatch <= 0 {
		cfg.OverdueBatch = defaultOverdueBatch
	}
	return &InvoiceService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("invoice_service"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetNotifier sets the delivery gateway used by SendInvoice
func (s *InvoiceService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetRenderer sets the PDF renderer
func (s *InvoiceService) SetRenderer(r DocumentRenderer) {
	s.renderer = r
}

// SetDocumentStore sets where rendered PDFs are kept. Without a store PDFs are only returned inline.
func (s *InvoiceService) SetDocumentStore(store DocumentStore) {
	s.store = store
}

// IssueWithin invoices the given bills inside the caller's transaction.
// Bills that already have an invoice are skipped. p must be locked by the
// caller; its invoice sequence advances once for the whole batch.
func (s *InvoiceService) IssueWithin(ctx context.Context, repos txn.Repositories, p *property.Property, bills []*billing.Bill) ([]*invoicing.Invoice, error) {
	if len(bills) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	existing, err := repos.Invoices().FindByBillIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing invoices: %w", err)
	}
	invoiced := make(map[uuid.UUID]bool, len(existing))
	for _, inv := range existing {
		invoiced[inv.BillID] = true
	}

	pending := make([]*billing.Bill, 0, len(bills))
	for _, b := range bills {
		if !invoiced[b.ID] {
			pending = append(pending, b)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	now := s.now()
	numbers := p.AllocateInvoiceNumbers(len(pending))
	issued := make([]*invoicing.Invoice, 0, len(pending))
	for i, b := range pending {
		var due *time.Time
		if d, ok := p.PaymentDeadline(b.Period); ok {
			due = &d
		}
		inv, err := invoicing.Issue(invoicing.IssueInput{
			Bill:      b,
			Sequence:  numbers[i],
			Prefix:    s.cfg.Prefix,
			IssueDate: now,
			DueDate:   due,
		})
		if err != nil {
			return nil, err
		}
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return nil, fmt.Errorf("failed to create invoice %s: %w", inv.InvoiceNumber, err)
		}
		issued = append(issued, inv)
	}

	if err := repos.Properties().SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	return issued, nil
}

// IssueForPeriod invoices every bill of the period that has no invoice yet
func (s *InvoiceService) IssueForPeriod(ctx context.Context, propertyID uuid.UUID, period string) (*IssueInvoicesResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "issue_for_period")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrPeriod, period,
	)

	pr, err := txn.ParsePeriod(period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *IssueInvoicesResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(telemetry.OperationIssueInvoices, propertyID.String()), func(c context.Context) {
		var issued []*invoicing.Invoice
		err := s.scope.Execute(c, func(repos txn.Repositories) error {
			p, err := repos.Properties().FindByIDForUpdate(c, propertyID)
			if err != nil {
				return err
			}
			bills, err := repos.Bills().FindByPropertyAndPeriod(c, propertyID, pr)
			if err != nil {
				return fmt.Errorf("failed to load bills: %w", err)
			}
			ptrs := make([]*billing.Bill, len(bills))
			for i := range bills {
				ptrs[i] = &bills[i]
			}
			issued, err = s.IssueWithin(c, repos, p, ptrs)
			return err
		})
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		var events []shared.DomainEvent
		result = &IssueInvoicesResponse{
			Period:   pr.String(),
			Issued:   len(issued),
			Invoices: make([]InvoiceResponse, 0, len(issued)),
		}
		for _, inv := range issued {
			events = append(events, shared.CollectEvents(inv)...)
			result.Invoices = append(result.Invoices, ToInvoiceResponse(inv))
		}
		txn.Publish(c, s.publisher, s.logger, events)
		telemetry.SetAttribute(span, "issued", len(issued))
		s.logger.Info("invoices issued",
			zap.String("property_id", propertyID.String()),
			zap.String("period", pr.String()),
			zap.Int("issued", len(issued)),
		)
	})
	return result, operationErr
}

// GetInvoice returns one invoice of a property
func (s *InvoiceService) GetInvoice(ctx context.Context, propertyID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repos.Invoices().FindByID(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ListInvoices returns a page of a property's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, propertyID uuid.UUID, req ListInvoicesRequest) (*ListInvoicesResponse, error) {
	filter := invoicing.InvoiceFilter{Filter: shared.DefaultFilter(), TenantID: req.TenantID}
	filter.OrderBy = "sequence"
	filter.Filter = filter.Filter.WithPage(req.Page, req.PageSize)
	period, err := txn.ParseOptionalPeriod(req.Period)
	if err != nil {
		return nil, err
	}
	filter.Period = period
	if req.Status != "" {
		status, err := invoicing.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	invoices, err := s.repos.Invoices().FindByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.repos.Invoices().CountByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	return &ListInvoicesResponse{
		Items:    toInvoiceResponses(invoices),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListTenantInvoices returns every invoice issued to a tenant, oldest first
func (s *InvoiceService) ListTenantInvoices(ctx context.Context, propertyID, tenantID uuid.UUID) ([]InvoiceResponse, error) {
	filter := invoicing.InvoiceFilter{TenantID: &tenantID}
	filter.OrderBy = "sequence"
	filter.OrderDir = "asc"
	invoices, err := s.repos.Invoices().FindByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return toInvoiceResponses(invoices), nil
}

// SetStatus applies an operator status override. Paid and Cancelled invoices
// cannot be changed.
func (s *InvoiceService) SetStatus(ctx context.Context, propertyID, id uuid.UUID, req SetStatusRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "set_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, id.String(),
		telemetry.SpanAttrInvoiceStatus, req.Status,
	)

	to, err := invoicing.ParseStatus(req.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inv, err := s.mutate(ctx, propertyID, id, func(inv *invoicing.Invoice) error {
		return inv.SetStatus(to, s.now())
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// MarkSent records that the invoice went out on channel
func (s *InvoiceService) MarkSent(ctx context.Context, propertyID, id uuid.UUID, channel invoicing.Channel) (*InvoiceResponse, error) {
	inv, err := s.mutate(ctx, propertyID, id, func(inv *invoicing.Invoice) error {
		return inv.MarkSent(channel, s.now())
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// mutate applies fn to a locked invoice and saves it if fn changed it
func (s *InvoiceService) mutate(ctx context.Context, propertyID, id uuid.UUID, fn func(*invoicing.Invoice) error) (*invoicing.Invoice, error) {
	var inv *invoicing.Invoice
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		found, err := repos.Invoices().FindByIDForUpdate(ctx, propertyID, id)
		if err != nil {
			return err
		}
		version := found.Version
		if err := fn(found); err != nil {
			return err
		}
		if found.Version != version {
			if err := repos.Invoices().SaveWithLock(ctx, found); err != nil {
				return fmt.Errorf("failed to save invoice: %w", err)
			}
		}
		inv = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	txn.Publish(ctx, s.publisher, s.logger, shared.CollectEvents(inv))
	return inv, nil
}

// SendInvoice hands the invoice to the notifier and records the delivery
func (s *InvoiceService) SendInvoice(ctx context.Context, propertyID, id uuid.UUID, req SendInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, id.String(),
		"channel", req.Channel,
	)

	channel := invoicing.Channel(strings.ToLower(req.Channel))
	if !channel.IsValid() {
		err := shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Unknown delivery channel %q", req.Channel))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.notifier == nil {
		return nil, ErrNotifierUnavailable
	}

	inv, doc, tenant, err := s.document(ctx, propertyID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	recipient := ""
	if tenant != nil {
		recipient = tenant.Email
		if channel == invoicing.ChannelWhatsApp {
			recipient = tenant.Phone
		}
	}
	if recipient == "" {
		telemetry.RecordError(span, ErrNoRecipient)
		return nil, ErrNoRecipient
	}

	if err := s.notifier.Deliver(ctx, Delivery{Channel: channel, Recipient: recipient, Document: doc}); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("invoice delivery failed",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.String("channel", channel.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to deliver invoice: %w", err)
	}

	resp, err := s.MarkSent(ctx, propertyID, id, channel)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("invoice sent",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("channel", channel.String()),
	)
	return resp, nil
}

// MarkOverdue moves every open invoice past its deadline with a balance to
// Overdue, in batches. Returns how many invoices changed.
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_overdue")
	defer span.End()

	marked := 0
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.OperationMarkOverdue, nil), func(c context.Context) {
		for {
			candidates, err := s.repos.Invoices().FindOverdueCandidates(c, now, s.cfg.OverdueBatch)
			if err != nil {
				operationErr = fmt.Errorf("failed to find overdue candidates: %w", err)
				return
			}
			changed, err := s.markOverdue(c, candidates, now)
			marked += changed
			if err != nil {
				operationErr = err
				return
			}
			// Every marked invoice leaves the candidate set, so each full
			// batch shrinks it by changed. A batch that marks nothing was
			// settled underneath us and refetching would return it again.
			if len(candidates) < s.cfg.OverdueBatch || changed == 0 {
				return
			}
		}
	})
	telemetry.SetAttribute(span, "marked", marked)
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
	}
	if marked > 0 {
		s.logger.Info("overdue sweep finished", zap.Int("marked", marked), zap.Time("as_of", now))
	}
	return marked, operationErr
}

// MarkOverdueForProperty runs the overdue sweep for one property
func (s *InvoiceService) MarkOverdueForProperty(ctx context.Context, propertyID uuid.UUID, now time.Time) (*MarkOverdueResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_overdue_property")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, propertyID.String())

	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	var candidates []invoicing.Invoice
	for _, status := range []invoicing.InvoiceStatus{invoicing.InvoiceStatusUnpaid, invoicing.InvoiceStatusPartiallyPaid} {
		st := status
		found, err := s.repos.Invoices().FindByProperty(ctx, propertyID, invoicing.InvoiceFilter{Status: &st})
		if err != nil {
			return nil, fmt.Errorf("failed to list invoices: %w", err)
		}
		for _, inv := range found {
			if inv.DueDate != nil && inv.DueDate.Before(now) && inv.Balance.IsPositive() {
				candidates = append(candidates, inv)
			}
		}
	}

	marked, err := s.markOverdue(ctx, candidates, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &MarkOverdueResponse{AsOf: now, Marked: marked}, nil
}

func (s *InvoiceService) markOverdue(ctx context.Context, candidates []invoicing.Invoice, now time.Time) (int, error) {
	marked := 0
	for _, c := range candidates {
		var changed *invoicing.Invoice
		err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
			inv, err := repos.Invoices().FindByIDForUpdate(ctx, c.PropertyID, c.ID)
			if err != nil {
				return err
			}
			if !inv.MarkOverdue(now) {
				return nil
			}
			if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
				return fmt.Errorf("failed to save invoice: %w", err)
			}
			changed = inv
			return nil
		})
		if err != nil {
			return marked, err
		}
		if changed != nil {
			marked++
			txn.Publish(ctx, s.publisher, s.logger, shared.CollectEvents(changed))
		}
	}
	return marked, nil
}

// RenderPDF renders an invoice to PDF. When a document store is configured
// the PDF is uploaded and a presigned download URL is returned with it.
func (s *InvoiceService) RenderPDF(ctx context.Context, propertyID, id uuid.UUID) (*RenderedInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "render_pdf")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, id.String())

	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}

	var result *RenderedInvoice
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(telemetry.OperationRenderInvoice, propertyID.String()), func(c context.Context) {
		inv, doc, _, err := s.document(c, propertyID, id)
		if err != nil {
			operationErr = err
			return
		}
		telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber)

		pdf, err := s.renderer.RenderInvoice(c, doc)
		if err != nil {
			operationErr = fmt.Errorf("failed to render invoice: %w", err)
			return
		}
		result = &RenderedInvoice{
			Filename:    inv.InvoiceNumber + ".pdf",
			ContentType: "application/pdf",
			Content:     pdf,
		}
		if s.store == nil {
			return
		}

		key := fmt.Sprintf("invoices/%s/%s.pdf", propertyID, inv.InvoiceNumber)
		if err := s.store.Upload(c, key, pdf, result.ContentType); err != nil {
			operationErr = fmt.Errorf("failed to store invoice pdf: %w", err)
			return
		}
		url, err := s.store.PresignURL(c, key, s.cfg.PresignTTL)
		if err != nil {
			operationErr = fmt.Errorf("failed to presign invoice pdf: %w", err)
			return
		}
		result.StorageKey = key
		result.URL = url
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}
	return result, nil
}

// document loads an invoice with the property and tenant shown on it
func (s *InvoiceService) document(ctx context.Context, propertyID, id uuid.UUID) (*invoicing.Invoice, invoicing.Document, *occupancy.Tenant, error) {
	inv, err := s.repos.Invoices().FindByID(ctx, propertyID, id)
	if err != nil {
		return nil, invoicing.Document{}, nil, err
	}
	p, err := s.repos.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, invoicing.Document{}, nil, err
	}
	tenant, err := s.repos.Tenants().FindByID(ctx, inv.TenantID)
	if err != nil {
		s.logger.Warn("invoice tenant not found",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("tenant_id", inv.TenantID.String()),
			zap.Error(err),
		)
		tenant = nil
	}
	return inv, invoicing.NewDocument(inv, p, tenant), tenant, nil
}
