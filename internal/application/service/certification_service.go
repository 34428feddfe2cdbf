package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/domain/fne"
	"github.com/fnev4/fnev4/internal/domain/workflow"
	"github.com/fnev4/fnev4/internal/infrastructure/external/dgi"
)

// CertificationSettings are the seller-side values sent with every invoice
type CertificationSettings struct {
	Establishment     string
	PointOfSale       string
	SellerName        string
	CommercialMessage string
	Footer            string
}

// CertificationResult is the outcome of one submission. A rejected invoice
// is not an error: Success is false and the DGI explanation is filled in.
type CertificationResult struct {
	InvoiceID         int64    `json:"invoice_id"`
	InvoiceNumber     string   `json:"invoice_number"`
	Success           bool     `json:"success"`
	Status            string   `json:"status"`
	FneReference      string   `json:"fne_reference,omitempty"`
	VerificationToken string   `json:"verification_token,omitempty"`
	VerificationURL   string   `json:"verification_url,omitempty"`
	StickerBalance    *int64   `json:"sticker_balance,omitempty"`
	Warning           bool     `json:"warning,omitempty"`
	Error             string   `json:"error,omitempty"`
	HTTPStatus        int      `json:"http_status,omitempty"`
	ErrorCode         string   `json:"error_code,omitempty"`
	Messages          []string `json:"messages,omitempty"`
}

// CertificationService submits draft invoices to the DGI FNE platform
type CertificationService interface {
	// Certify submits one invoice. Credit notes go through the refund
	// endpoint of their certified parent.
	Certify(ctx context.Context, invoiceID int64) (*CertificationResult, error)

	// CertifyBatch certifies invoices one after the other and never stops on
	// a single failure.
	CertifyBatch(ctx context.Context, invoiceIDs []int64) []*CertificationResult

	// VerificationURL returns the public QR code URL for a token
	VerificationURL(token string) string
}

type certificationServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	clientRepo  port.ClientRepository
	apiLogRepo  port.ApiLogRepository
	txManager   port.TransactionManager
	client      port.CertificationClient
	settings    CertificationSettings
	logger      Logger
}

// NewCertificationService creates a new CertificationService
func NewCertificationService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	apiLogRepo port.ApiLogRepository,
	txManager port.TransactionManager,
	client port.CertificationClient,
	settings CertificationSettings,
	logger Logger,
) CertificationService {
	return &certificationServiceImpl{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		apiLogRepo:  apiLogRepo,
		txManager:   txManager,
		client:      client,
		settings:    settings,
		logger:      logger,
	}
}

// Certify submits the invoice and records the outcome
func (s *certificationServiceImpl) Certify(ctx context.Context, invoiceID int64) (*CertificationResult, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvoiceNotFound, invoiceID)
	}

	machine, err := workflow.NewInvoiceMachine(inv.Status)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, err)
	}
	if !machine.CanFire(workflow.TriggerCertifySucceeded) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCertified, inv.InvoiceNumber)
	}

	var (
		resp     *port.CertificationResponse
		exchange *port.Exchange
		callErr  error
	)
	if inv.IsCreditNote() {
		parent, items, err := s.refundItems(ctx, inv)
		if err != nil {
			return nil, err
		}
		resp, exchange, callErr = s.client.RefundInvoice(ctx, parent.FneInvoiceID, items)
	} else {
		req, err := s.buildRequest(ctx, inv)
		if err != nil {
			return nil, err
		}
		resp, exchange, callErr = s.client.SignInvoice(ctx, req)
	}

	result := &CertificationResult{InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber}

	if callErr != nil {
		if err := machine.Fire(ctx, workflow.TriggerCertifyFailed); err != nil {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, err)
		}
		result.Status = machine.State().String()
		result.Error = callErr.Error()
		if apiErr, ok := dgi.AsAPIError(callErr); ok {
			result.HTTPStatus = apiErr.StatusCode
			result.ErrorCode = apiErr.Code
			result.Messages = apiErr.Errors
		}

		err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.appendLog(ctx, inv.ID, exchange, callErr); err != nil {
				return err
			}
			return s.invoiceRepo.UpdateStatus(ctx, inv.ID, result.Status, callErr.Error())
		})
		if err != nil {
			s.logger.Error("Failed to record certification failure", "error", err, "invoice_id", inv.ID)
			return nil, fmt.Errorf("record certification failure: %w", err)
		}

		s.logger.Warn("Invoice certification failed",
			"invoice_id", inv.ID,
			"invoice_number", inv.InvoiceNumber,
			"error", callErr)
		return result, nil
	}

	if err := machine.Fire(ctx, workflow.TriggerCertifySucceeded); err != nil {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, err)
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.appendLog(ctx, inv.ID, exchange, nil); err != nil {
			return err
		}
		return s.invoiceRepo.UpdateCertification(ctx, inv.ID, port.CertificationUpdate{
			Status:            machine.State().String(),
			FneReference:      resp.Reference,
			FneInvoiceID:      resp.InvoiceID,
			VerificationToken: resp.Token,
			StickerBalance:    resp.StickerBalance,
			ItemIDs:           resp.ItemIDs,
		})
	})
	if err != nil {
		// The DGI has certified the invoice: keep the reference in the logs
		// so the row can be fixed by hand.
		s.logger.Error("Failed to record certification",
			"error", err,
			"invoice_id", inv.ID,
			"fne_reference", resp.Reference)
		return nil, fmt.Errorf("record certification %s: %w", resp.Reference, err)
	}

	result.Success = true
	result.Status = machine.State().String()
	result.FneReference = resp.Reference
	result.VerificationToken = resp.Token
	result.VerificationURL = s.client.VerificationURL(resp.Token)
	result.StickerBalance = resp.StickerBalance
	result.Warning = resp.Warning

	s.logger.Info("Invoice certified",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"fne_reference", resp.Reference)
	return result, nil
}

// CertifyBatch turns hard errors into failed results so that every id gets
// an answer
func (s *certificationServiceImpl) CertifyBatch(ctx context.Context, invoiceIDs []int64) []*CertificationResult {
	results := make([]*CertificationResult, 0, len(invoiceIDs))
	for _, id := range invoiceIDs {
		if ctx.Err() != nil {
			results = append(results, &CertificationResult{InvoiceID: id, Error: ctx.Err().Error()})
			continue
		}
		res, err := s.Certify(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping invoice in batch", "invoice_id", id, "error", err)
			res = &CertificationResult{InvoiceID: id, Error: err.Error()}
		}
		results = append(results, res)
	}
	return results
}

// VerificationURL returns the public QR code URL for a token
func (s *certificationServiceImpl) VerificationURL(token string) string {
	return s.client.VerificationURL(token)
}

func (s *certificationServiceImpl) buildRequest(ctx context.Context, inv *entity.FneInvoice) (*port.CertificationRequest, error) {
	req := &port.CertificationRequest{
		InvoiceType:       entity.InvoiceTypeSale,
		PaymentMethod:     inv.PaymentMethod,
		Template:          inv.Template,
		ClientNcc:         inv.ClientNcc,
		ClientCompanyName: inv.ClientName,
		ClientSellerName:  s.settings.SellerName,
		PointOfSale:       inv.PointOfSale,
		Establishment:     s.settings.Establishment,
		CommercialMessage: s.settings.CommercialMessage,
		Footer:            s.settings.Footer,
		Items:             make([]port.CertificationItem, 0, len(inv.Items)),
	}
	if req.PointOfSale == "" {
		req.PointOfSale = s.settings.PointOfSale
	}

	if inv.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *inv.ClientID)
		if err != nil {
			return nil, fmt.Errorf("get client: %w", err)
		}
		if client != nil {
			req.ClientEmail = client.Email
			req.ClientPhone = client.Phone
			if inv.Template == entity.TemplateB2F && client.DefaultCurrency != fne.DefaultCurrency {
				req.ForeignCurrency = client.DefaultCurrency
			}
		}
	}

	for _, it := range inv.Items {
		req.Items = append(req.Items, port.CertificationItem{
			Reference:   it.ProductCode,
			Description: it.Description,
			Quantity:    it.Quantity,
			Amount:      it.UnitPrice,
			Measurement: it.Unit,
			Taxes:       []string{it.VatCode},
		})
	}
	return req, nil
}

// refundItems matches each credit note line to the certified line of the
// parent invoice with the same product code.
func (s *certificationServiceImpl) refundItems(ctx context.Context, inv *entity.FneInvoice) (*entity.FneInvoice, []port.RefundItem, error) {
	if inv.ParentInvoiceID == nil {
		return nil, nil, fmt.Errorf("%w: credit note %s has no parent", ErrParentNotCertified, inv.InvoiceNumber)
	}
	parent, err := s.invoiceRepo.GetByID(ctx, *inv.ParentInvoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("get parent invoice: %w", err)
	}
	if parent == nil || parent.Status != entity.InvoiceStatusCertified || parent.FneInvoiceID == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrParentNotCertified, inv.CreditNoteReference)
	}

	byCode := make(map[string]string, len(parent.Items))
	for _, it := range parent.Items {
		if it.FneItemID != "" {
			if _, ok := byCode[it.ProductCode]; !ok {
				byCode[it.ProductCode] = it.FneItemID
			}
		}
	}

	items := make([]port.RefundItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		id, ok := byCode[it.ProductCode]
		if !ok {
			return nil, nil, fmt.Errorf("%w: product %s is not on invoice %s",
				ErrParentNotCertified, it.ProductCode, parent.InvoiceNumber)
		}
		items = append(items, port.RefundItem{ID: id, Quantity: it.Quantity.Abs()})
	}
	return parent, items, nil
}

func (s *certificationServiceImpl) appendLog(ctx context.Context, invoiceID int64, ex *port.Exchange, callErr error) error {
	log := &entity.FneApiLog{
		InvoiceID: invoiceID,
		Success:   callErr == nil,
		CreatedAt: time.Now(),
	}
	if ex != nil {
		log.Endpoint = ex.Endpoint
		log.RequestBody = ex.RequestBody
		log.ResponseBody = ex.ResponseBody
		log.StatusCode = ex.StatusCode
		log.DurationMs = ex.Duration.Milliseconds()
	}
	if callErr != nil {
		log.ErrorMessage = callErr.Error()
	}
	if err := s.apiLogRepo.Append(ctx, log); err != nil {
		return fmt.Errorf("append api log: %w", err)
	}
	return nil
}

