package dgi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
)

const (
	signPath   = "/external/invoices/sign"
	refundPath = "/external/invoices/%s/refund"

	// DefaultVerificationBaseURL prefixes bare verification tokens
	DefaultVerificationBaseURL = "https://www.services.fne.dgi.gouv.ci/fr/verification/"
)

// Config holds DGI API settings
type Config struct {
	BaseURL             string
	APIKey              string
	Timeout             time.Duration
	VerificationBaseURL string
}

// Client calls the DGI FNE API. There is no retry: a failed call is
// reported and the user decides to submit again.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new DGI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.VerificationBaseURL == "" {
		cfg.VerificationBaseURL = DefaultVerificationBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// SignInvoice submits a sale invoice for certification
func (c *Client) SignInvoice(ctx context.Context, req *port.CertificationRequest) (*port.CertificationResponse, *port.Exchange, error) {
	payload := buildSignRequest(req)
	return c.post(ctx, signPath, payload)
}

// RefundInvoice certifies a credit note against a certified invoice
func (c *Client) RefundInvoice(ctx context.Context, fneInvoiceID string, items []port.RefundItem) (*port.CertificationResponse, *port.Exchange, error) {
	payload := refundRequest{Items: make([]refundItem, 0, len(items))}
	for _, it := range items {
		payload.Items = append(payload.Items, refundItem{
			ID:       it.ID,
			Quantity: number(it.Quantity.Abs()),
		})
	}
	return c.post(ctx, fmt.Sprintf(refundPath, url.PathEscape(fneInvoiceID)), payload)
}

// VerificationURL returns the public page encoded in the invoice QR code
func (c *Client) VerificationURL(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
		return token
	}
	return strings.TrimRight(c.cfg.VerificationBaseURL, "/") + "/" + token
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*port.CertificationResponse, *port.Exchange, error) {
	exchange := &port.Exchange{Endpoint: path}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, exchange, fmt.Errorf("failed to marshal request: %w", err)
	}
	exchange.RequestBody = string(body)

	if c.cfg.APIKey == "" {
		return nil, exchange, ErrMissingAPIKey
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, exchange, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.logger.Debug("Calling DGI API", zap.String("endpoint", path))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	exchange.Duration = time.Since(start)
	if err != nil {
		c.logger.Error("DGI API call failed",
			zap.String("endpoint", path),
			zap.Duration("duration", exchange.Duration),
			zap.Error(err))
		return nil, exchange, fmt.Errorf("failed to call DGI API: %w", err)
	}
	defer resp.Body.Close()

	exchange.StatusCode = resp.StatusCode
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exchange, fmt.Errorf("failed to read response: %w", err)
	}
	exchange.ResponseBody = string(respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		c.logger.Warn("DGI API rejected the request",
			zap.String("endpoint", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message))
		return nil, exchange, apiErr
	}

	var out certifiedResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, exchange, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	result := &port.CertificationResponse{
		Reference:      out.Reference,
		Token:          out.Token,
		StickerBalance: out.BalanceSticker,
		Warning:        out.Warning,
	}
	if out.Invoice != nil {
		result.InvoiceID = out.Invoice.ID
		for _, it := range out.Invoice.Items {
			result.ItemIDs = append(result.ItemIDs, it.ID)
		}
	}

	c.logger.Info("DGI API call succeeded",
		zap.String("endpoint", path),
		zap.String("reference", result.Reference),
		zap.Duration("duration", exchange.Duration))
	return result, exchange, nil
}

// PaymentMethod maps an application payment method to the DGI vocabulary
func PaymentMethod(method string) string {
	switch method {
	case entity.PaymentBankTransfer:
		return "transfer"
	case entity.PaymentCredit:
		return "deferred"
	case "":
		return entity.PaymentCash
	default:
		return method
	}
}

func buildSignRequest(req *port.CertificationRequest) signRequest {
	invoiceType := req.InvoiceType
	if invoiceType == "" {
		invoiceType = entity.InvoiceTypeSale
	}

	out := signRequest{
		InvoiceType:       invoiceType,
		PaymentMethod:     PaymentMethod(req.PaymentMethod),
		Template:          req.Template,
		IsRne:             req.IsRne,
		Rne:               req.Rne,
		ClientNcc:         req.ClientNcc,
		ClientCompanyName: req.ClientCompanyName,
		ClientPhone:       req.ClientPhone,
		ClientEmail:       req.ClientEmail,
		ClientSellerName:  req.ClientSellerName,
		PointOfSale:       req.PointOfSale,
		Establishment:     req.Establishment,
		CommercialMessage: req.CommercialMessage,
		Footer:            req.Footer,
		ForeignCurrency:   req.ForeignCurrency,
		Items:             make([]invoiceItem, 0, len(req.Items)),
		CustomTaxes:       []customTax{},
		Discount:          "0",
	}

	for _, it := range req.Items {
		taxes := it.Taxes
		if taxes == nil {
			taxes = []string{}
		}
		out.Items = append(out.Items, invoiceItem{
			Taxes:           taxes,
			CustomTaxes:     []customTax{},
			Reference:       it.Reference,
			Description:     it.Description,
			Quantity:        number(it.Quantity),
			Amount:          number(it.Amount),
			Discount:        "0",
			MeasurementUnit: it.Measurement,
		})
	}
	return out
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Verify interface compliance
var _ port.CertificationClient = (*Client)(nil)
