package dgi

import "encoding/json"

// signRequest is the body of POST /external/invoices/sign
type signRequest struct {
	InvoiceType       string        `json:"invoiceType"`
	PaymentMethod     string        `json:"paymentMethod"`
	Template          string        `json:"template"`
	IsRne             bool          `json:"isRne"`
	Rne               string        `json:"rne,omitempty"`
	ClientNcc         string        `json:"clientNcc,omitempty"`
	ClientCompanyName string        `json:"clientCompanyName"`
	ClientPhone       string        `json:"clientPhone,omitempty"`
	ClientEmail       string        `json:"clientEmail,omitempty"`
	ClientSellerName  string        `json:"clientSellerName,omitempty"`
	PointOfSale       string        `json:"pointOfSale"`
	Establishment     string        `json:"establishment"`
	CommercialMessage string        `json:"commercialMessage,omitempty"`
	Footer            string        `json:"footer,omitempty"`
	ForeignCurrency   string        `json:"foreignCurrency,omitempty"`
	Items             []invoiceItem `json:"items"`
	CustomTaxes       []customTax   `json:"customTaxes"`
	Discount          json.Number   `json:"discount"`
}

type invoiceItem struct {
	Taxes           []string    `json:"taxes"`
	CustomTaxes     []customTax `json:"customTaxes"`
	Reference       string      `json:"reference,omitempty"`
	Description     string      `json:"description"`
	Quantity        json.Number `json:"quantity"`
	Amount          json.Number `json:"amount"`
	Discount        json.Number `json:"discount"`
	MeasurementUnit string      `json:"measurementUnit,omitempty"`
}

type customTax struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
}

// refundRequest is the body of POST /external/invoices/{id}/refund
type refundRequest struct {
	Items []refundItem `json:"items"`
}

type refundItem struct {
	ID       string      `json:"id"`
	Quantity json.Number `json:"quantity"`
}

// certifiedResponse is returned by both endpoints on success
type certifiedResponse struct {
	Ncc            string           `json:"ncc"`
	Reference      string           `json:"reference"`
	Token          string           `json:"token"`
	Warning        bool             `json:"warning"`
	BalanceSticker *int64           `json:"balance_sticker"`
	Invoice        *certifiedDetail `json:"invoice"`
}

type certifiedDetail struct {
	ID    string `json:"id"`
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// errorResponse covers the shapes seen on non-2xx answers
type errorResponse struct {
	StatusCode int             `json:"statusCode"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Errors     json.RawMessage `json:"errors"`
}
