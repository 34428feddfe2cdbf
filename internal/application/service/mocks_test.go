package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/excel"
)

// Mock logger
type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// Mock transaction manager
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Mock repositories
type mockClientRepo struct {
	clients   map[string]*entity.Client
	createErr error
	nextID    int64
}

func newMockClientRepo(clients ...*entity.Client) *mockClientRepo {
	m := &mockClientRepo{clients: map[string]*entity.Client{}}
	for _, c := range clients {
		m.nextID++
		if c.ID == 0 {
			c.ID = m.nextID
		}
		m.clients[c.Code] = c
	}
	return m
}

func (m *mockClientRepo) Create(ctx context.Context, client *entity.Client) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	client.ID = m.nextID
	m.clients[client.Code] = client
	return nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *entity.Client) error {
	m.clients[client.Code] = client
	return nil
}

func (m *mockClientRepo) GetByCode(ctx context.Context, code string) (*entity.Client, error) {
	c, ok := m.clients[code]
	if !ok || !c.IsActive {
		return nil, nil
	}
	return c, nil
}

func (m *mockClientRepo) FindByCode(ctx context.Context, code string) (*entity.Client, error) {
	return m.clients[code], nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepo) List(ctx context.Context, limit, offset int, includeInactive bool) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range m.clients {
		if c.IsActive || includeInactive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClientRepo) Deactivate(ctx context.Context, code string) error {
	if c, ok := m.clients[code]; ok {
		c.IsActive = false
	}
	return nil
}

type mockInvoiceRepo struct {
	invoices  map[int64]*entity.FneInvoice
	createErr func(inv *entity.FneInvoice) error
	updates   []port.CertificationUpdate
	nextID    int64
}

func newMockInvoiceRepo(invoices ...*entity.FneInvoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{invoices: map[int64]*entity.FneInvoice{}}
	for _, inv := range invoices {
		m.nextID++
		if inv.ID == 0 {
			inv.ID = m.nextID
		}
		m.invoices[inv.ID] = inv
	}
	return m
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.FneInvoice) error {
	if m.createErr != nil {
		if err := m.createErr(invoice); err != nil {
			return err
		}
	}
	m.nextID++
	invoice.ID = m.nextID
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.FneInvoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.IsDeleted {
		return nil, nil
	}
	return inv, nil
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.FneInvoice, error) {
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == number && !inv.IsDeleted {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	inv, _ := m.GetByNumber(ctx, number)
	return inv != nil, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter port.InvoiceFilter) ([]*entity.FneInvoice, int, error) {
	var out []*entity.FneInvoice
	for _, inv := range m.invoices {
		if filter.Status == "" || inv.Status == filter.Status {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}

func (m *mockInvoiceRepo) UpdateCertification(ctx context.Context, id int64, update port.CertificationUpdate) error {
	m.updates = append(m.updates, update)
	inv := m.invoices[id]
	inv.Status = update.Status
	inv.FneReference = update.FneReference
	inv.FneInvoiceID = update.FneInvoiceID
	inv.VerificationToken = update.VerificationToken
	inv.StickerBalance = update.StickerBalance
	inv.LastError = update.LastError
	for i, itemID := range update.ItemIDs {
		if i < len(inv.Items) {
			inv.Items[i].FneItemID = itemID
		}
	}
	return nil
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status, lastError string) error {
	inv := m.invoices[id]
	inv.Status = status
	inv.LastError = lastError
	return nil
}

func (m *mockInvoiceRepo) UpdatePaymentMethod(ctx context.Context, id int64, method string) error {
	m.invoices[id].PaymentMethod = method
	return nil
}

func (m *mockInvoiceRepo) SoftDelete(ctx context.Context, id int64) error {
	m.invoices[id].IsDeleted = true
	return nil
}

type mockSessionRepo struct {
	created   []*entity.ImportSession
	completed []*entity.ImportSession
}

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.ImportSession) error {
	session.ID = int64(len(m.created) + 1)
	m.created = append(m.created, session)
	return nil
}

func (m *mockSessionRepo) Complete(ctx context.Context, session *entity.ImportSession) error {
	m.completed = append(m.completed, session)
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id int64) (*entity.ImportSession, error) {
	for _, s := range m.created {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSessionRepo) List(ctx context.Context, limit, offset int) ([]*entity.ImportSession, error) {
	return m.created, nil
}

type mockApiLogRepo struct {
	logs []*entity.FneApiLog
}

func (m *mockApiLogRepo) Append(ctx context.Context, log *entity.FneApiLog) error {
	log.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockApiLogRepo) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.FneApiLog, error) {
	var out []*entity.FneApiLog
	for _, l := range m.logs {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

type mockVatRepo struct{}

func (m *mockVatRepo) List(ctx context.Context) ([]*entity.VatType, error) {
	return []*entity.VatType{{Code: "TVA"}, {Code: "TVAB"}, {Code: "TVAC"}, {Code: "TVAD"}}, nil
}

// Mock DGI client
type mockCertClient struct {
	signFunc   func(ctx context.Context, req *port.CertificationRequest) (*port.CertificationResponse, *port.Exchange, error)
	refundFunc func(ctx context.Context, fneInvoiceID string, items []port.RefundItem) (*port.CertificationResponse, *port.Exchange, error)
	signed     []*port.CertificationRequest
}

func (m *mockCertClient) SignInvoice(ctx context.Context, req *port.CertificationRequest) (*port.CertificationResponse, *port.Exchange, error) {
	m.signed = append(m.signed, req)
	if m.signFunc != nil {
		return m.signFunc(ctx, req)
	}
	ids := make([]string, len(req.Items))
	for i := range req.Items {
		ids[i] = "item-" + req.Items[i].Reference
	}
	balance := int64(99)
	return &port.CertificationResponse{
			Reference:      "9606123E25000000001",
			Token:          "tok-1",
			InvoiceID:      "fne-1",
			ItemIDs:        ids,
			StickerBalance: &balance,
		}, &port.Exchange{
			Endpoint:     "/external/invoices/sign",
			RequestBody:  "{}",
			ResponseBody: `{"reference":"9606123E25000000001"}`,
			StatusCode:   200,
		}, nil
}

func (m *mockCertClient) RefundInvoice(ctx context.Context, fneInvoiceID string, items []port.RefundItem) (*port.CertificationResponse, *port.Exchange, error) {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, fneInvoiceID, items)
	}
	return &port.CertificationResponse{Reference: "AV-REF", Token: "tok-av"},
		&port.Exchange{Endpoint: "/external/invoices/" + fneInvoiceID + "/refund", StatusCode: 200}, nil
}

func (m *mockCertClient) VerificationURL(token string) string {
	return "https://verify.example/" + token
}

// Workbook helpers

type sheetCells struct {
	name  string
	cells map[string]interface{}
}

func writeWorkbook(t *testing.T, sheets ...sheetCells) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for addr, v := range s.cells {
			require.NoError(t, f.SetCellValue(s.name, addr, v))
		}
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// invoiceCells is a valid invoice with two product lines
func invoiceCells(number, clientCode string) map[string]interface{} {
	return map[string]interface{}{
		"A3":  number,
		"A5":  clientCode,
		"A8":  "2024-03-15",
		"A10": "PDV-01",
		"B20": "P001",
		"C20": "Ciment 50kg",
		"D20": 5000,
		"E20": 2,
		"G20": "TVA",
		"B21": "P002",
		"C21": "Fer à béton",
		"D21": 1250.5,
		"E21": 3,
		"G21": "TVAB",
	}
}

func newInvoiceImport(clients *mockClientRepo, invoices *mockInvoiceRepo, sessions *mockSessionRepo) InvoiceImportService {
	reader := excel.NewInvoiceReader(excel.NewSage100Parser(zap.NewNop()), nil)
	return NewInvoiceImportService(
		reader,
		NewInvoiceValidator(clients, invoices),
		invoices,
		sessions,
		&mockTxManager{},
		&mockLogger{},
	)
}

func newClientImport(clients *mockClientRepo, sessions *mockSessionRepo) ClientImportService {
	return NewClientImportService(
		excel.NewClientReader(excel.NewClientSheetParser(zap.NewNop())),
		excel.NewTemplateExporter(zap.NewNop()),
		clients,
		sessions,
		&mockTxManager{},
		&mockLogger{},
	)
}
