package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/domain/fne"
	"github.com/fnev4/fnev4/internal/infrastructure/excel"
)

// WalkInDefaultName is used when a walk-in sheet carries no customer name
const WalkInDefaultName = "CLIENT DIVERS"

// ValidatedInvoice is a parsed sheet mapped to an invoice entity together
// with every problem found on it. Only invoices without Errors are saved.
type ValidatedInvoice struct {
	Sheet    string             `json:"sheet"`
	Invoice  *entity.FneInvoice `json:"invoice"`
	Errors   []excel.SheetError `json:"errors,omitempty"`
	Warnings []excel.SheetError `json:"warnings,omitempty"`
}

// Valid reports whether the invoice can be persisted
func (v *ValidatedInvoice) Valid() bool {
	return len(v.Errors) == 0
}

func (v *ValidatedInvoice) addError(cell, format string, args ...interface{}) {
	v.Errors = append(v.Errors, excel.SheetError{Sheet: v.Sheet, Cell: cell, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidatedInvoice) addWarning(cell, format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, excel.SheetError{Sheet: v.Sheet, Cell: cell, Message: fmt.Sprintf(format, args...)})
}

// InvoiceValidator checks a parsed Sage 100 sheet against the database and
// the DGI rules, and maps it to an FneInvoice.
type InvoiceValidator struct {
	clientRepo  port.ClientRepository
	invoiceRepo port.InvoiceRepository
}

// NewInvoiceValidator creates a new InvoiceValidator
func NewInvoiceValidator(clientRepo port.ClientRepository, invoiceRepo port.InvoiceRepository) *InvoiceValidator {
	return &InvoiceValidator{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Validate never stops at the first problem. The returned error is only set
// when a repository lookup fails.
func (v *InvoiceValidator) Validate(ctx context.Context, p *excel.ParsedInvoice) (*ValidatedInvoice, error) {
	out := &ValidatedInvoice{Sheet: p.Sheet}
	out.Errors = append(out.Errors, p.Problems...)

	number := strings.TrimSpace(p.InvoiceNumber)
	code := strings.TrimSpace(p.ClientCode)

	inv := &entity.FneInvoice{
		InvoiceNumber:       number,
		PointOfSale:         strings.TrimSpace(p.PointOfSale),
		ClientCode:          code,
		InvoiceType:         entity.InvoiceTypeSale,
		Status:              entity.InvoiceStatusDraft,
		CreditNoteReference: strings.TrimSpace(p.CreditNoteReference),
		SourceSheet:         p.Sheet,
	}
	out.Invoice = inv

	if number == "" {
		out.addError("A3", "invoice number is missing (A3)")
	}
	if code == "" {
		out.addError("A5", "client code is missing (A5)")
	}
	if p.Date != nil {
		inv.InvoiceDate = *p.Date
	} else {
		out.addError("A8", "invoice date is missing or invalid (A8)")
	}
	if len(p.Items) == 0 {
		out.addError("B20", "no product rows found from row %d", excel.FirstItemRow)
	}

	defaultPayment := fne.DefaultPaymentMethod
	switch {
	case fne.IsWalkIn(code):
		v.applyWalkIn(out, p)
	case code != "":
		client, err := v.clientRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup client %s: %w", code, err)
		}
		if client == nil {
			out.addError("A5", "client code %q not found", code)
			break
		}
		v.applyClient(out, p, client)
		if fne.IsValidPaymentMethod(client.DefaultPaymentMethod) {
			defaultPayment = client.DefaultPaymentMethod
		}
	}

	inv.PaymentMethod = defaultPayment
	if text := strings.TrimSpace(p.PaymentText); text != "" {
		method, ok := fne.NormalizePaymentMethod(text)
		if !ok {
			out.addWarning("A18", "unknown payment method %q, using %s", text, method)
		}
		inv.PaymentMethod = method
	}

	if number != "" {
		exists, err := v.invoiceRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("check invoice number %s: %w", number, err)
		}
		if exists {
			out.addError("A3", "invoice number %q already exists", number)
		}
	}

	if ref := inv.CreditNoteReference; ref != "" {
		inv.InvoiceType = entity.InvoiceTypeRefund
		parent, err := v.invoiceRepo.GetByNumber(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("lookup parent invoice %s: %w", ref, err)
		}
		switch {
		case parent == nil:
			out.addError("A17", "credit note references unknown invoice %q", ref)
		case parent.IsCreditNote():
			out.addError("A17", "credit note references another credit note %q", ref)
		default:
			inv.ParentInvoiceID = &parent.ID
		}
	}

	v.mapItems(out, p)
	return out, nil
}

func (v *InvoiceValidator) applyWalkIn(out *ValidatedInvoice, p *excel.ParsedInvoice) {
	inv := out.Invoice

	name := strings.TrimSpace(p.WalkInName)
	if name == "" {
		name = strings.TrimSpace(p.ClientTitle)
	}
	if name == "" {
		name = WalkInDefaultName
	}
	inv.ClientName = name
	inv.ClientNcc = strings.TrimSpace(p.WalkInNcc)
	inv.Template = entity.TemplateB2C

	// An occasional customer who gives a valid NCC is billed as a business.
	if inv.ClientNcc != "" {
		if fne.ValidNcc(inv.ClientNcc) {
			inv.Template = entity.TemplateB2B
		} else {
			out.addWarning("A15", "ignoring malformed walk-in NCC %q", inv.ClientNcc)
			inv.ClientNcc = ""
		}
	}
}

func (v *InvoiceValidator) applyClient(out *ValidatedInvoice, p *excel.ParsedInvoice, client *entity.Client) {
	inv := out.Invoice

	id := client.ID
	inv.ClientID = &id
	inv.ClientName = client.Name
	inv.ClientNcc = client.NCC
	inv.Template = client.Template

	if sheetNcc := strings.TrimSpace(p.ClientNcc); sheetNcc != "" && !strings.EqualFold(sheetNcc, client.NCC) {
		out.addWarning("A6", "NCC %q differs from client record %q, using the client record", sheetNcc, client.NCC)
	}
}

// mapItems computes every line. Credit note lines are stored with negative
// quantities and amounts whatever the sign in the sheet.
func (v *InvoiceValidator) mapItems(out *ValidatedInvoice, p *excel.ParsedInvoice) {
	inv := out.Invoice
	refund := inv.IsCreditNote()

	lines := make([]fne.Line, 0, len(p.Items))
	for i, it := range p.Items {
		if it.Quantity.IsZero() && it.AmountHT.IsZero() {
			out.addError(fmt.Sprintf("E%d", it.Row), "quantity is missing on row %d", it.Row)
		}

		vatCode, ok := fne.NormalizeVatCode(it.VatText)
		if !ok && strings.TrimSpace(it.VatText) != "" {
			out.addWarning(fmt.Sprintf("G%d", it.Row), "unknown VAT code %q, using %s", it.VatText, vatCode)
		}
		rate := fne.VatRate(vatCode)

		qty := it.Quantity.Abs()
		price := it.UnitPrice.Abs()
		line := fne.ComputeLine(qty, price, it.AmountHT.Abs(), rate)
		if refund {
			line = line.Negate()
			qty = qty.Neg()
		}

		description := strings.TrimSpace(it.Description)
		if description == "" {
			description = it.ProductCode
		}

		inv.Items = append(inv.Items, &entity.FneInvoiceItem{
			LineNumber:    i + 1,
			ProductCode:   it.ProductCode,
			Description:   description,
			Quantity:      qty,
			UnitPrice:     price,
			Unit:          strings.TrimSpace(it.Unit),
			VatCode:       vatCode,
			VatRate:       rate,
			LineAmountHT:  line.HT,
			LineVatAmount: line.VAT,
			LineAmountTTC: line.TTC,
		})
		lines = append(lines, line)
	}

	total := fne.SumTotals(lines)
	inv.TotalAmountHT = total.HT
	inv.TotalVatAmount = total.VAT
	inv.TotalAmountTTC = total.TTC
}
