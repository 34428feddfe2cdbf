package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const clientTemplateSheet = "Clients"

var clientTemplateHeaders = []struct {
	col   int
	label string
}{
	{colClientCode, "Code client"},
	{colClientNcc, "NCC"},
	{colClientName, "Nom / Raison sociale"},
	{colClientEmail, "Email"},
	{colClientPhone, "Téléphone"},
	{colClientPayment, "Moyen de paiement"},
	{colClientTemplate, "Type (B2B/B2C/B2G/B2F)"},
	{colClientCurrency, "Devise"},
	{colClientAddress, "Adresse"},
}

var clientTemplateNotes = []string{
	"Import des clients FNE",
	"Une ligne client toutes les trois lignes, à partir de la ligne 16 (16, 19, 22...).",
	"NCC obligatoire pour B2B, B2G et B2F, interdit pour B2C.",
	"B2F : devise étrangère (pas XOF) et adresse hors Côte d'Ivoire.",
	"Type vide : déduit automatiquement. Devise vide : XOF.",
	"Moyens de paiement : cash, card, mobile-money, bank-transfer, check, credit.",
}

// TemplateExporter writes blank import workbooks
type TemplateExporter struct {
	logger *zap.Logger
}

// NewTemplateExporter creates a new template exporter
func NewTemplateExporter(logger *zap.Logger) *TemplateExporter {
	return &TemplateExporter{logger: logger}
}

// ExportClientTemplate writes an empty client import workbook to path.
// Re-importing it yields no row.
func (e *TemplateExporter) ExportClientTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clientTemplateSheet); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	for i, note := range clientTemplateNotes {
		e.setCell(f, cellName(1, i+1), note)
	}

	for _, h := range clientTemplateHeaders {
		e.setCell(f, cellName(h.col, ClientHeaderRow), h.label)
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		first := cellName(1, ClientHeaderRow)
		last := cellName(colClientAddress, ClientHeaderRow)
		if err := f.SetCellStyle(clientTemplateSheet, first, last, style); err != nil {
			e.logger.Warn("Failed to style header row", zap.Error(err))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save client template: %w", err)
	}

	e.logger.Info("Client template exported", zap.String("path", path))
	return nil
}

func (e *TemplateExporter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(clientTemplateSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
