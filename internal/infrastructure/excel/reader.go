package excel

import "fmt"

// InvoiceReader opens an invoice workbook and parses all of its sheets.
// With a cache, a file that did not change is parsed only once.
type InvoiceReader struct {
	parser *Sage100Parser
	cache  *ParseCache[*ParseResult]
}

// NewInvoiceReader creates an InvoiceReader. cache may be nil.
func NewInvoiceReader(parser *Sage100Parser, cache *ParseCache[*ParseResult]) *InvoiceReader {
	return &InvoiceReader{parser: parser, cache: cache}
}

// ReadInvoices parses the workbook at path
func (r *InvoiceReader) ReadInvoices(path string) (*ParseResult, error) {
	if r.cache != nil {
		return r.cache.GetOrParse(path, r.read)
	}
	return r.read(path)
}

func (r *InvoiceReader) read(path string) (*ParseResult, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()
	return r.parser.ParseWorkbook(wb), nil
}

// ClientReader opens a client import workbook
type ClientReader struct {
	parser *ClientSheetParser
}

// NewClientReader creates a ClientReader
func NewClientReader(parser *ClientSheetParser) *ClientReader {
	return &ClientReader{parser: parser}
}

// ReadClients parses the first sheet of the workbook at path
func (r *ClientReader) ReadClients(path string) (*ClientParseResult, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()
	return r.parser.Parse(wb)
}
