package service

import (
	"fmt"
	"strings"

	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/domain/fne"
	"github.com/fnev4/fnev4/pkg/utils"
)

// ClientInput is a client as typed by a user or read from a sheet, before
// normalization.
type ClientInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	NCC           string `json:"ncc"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
	Template      string `json:"template"`
	Currency      string `json:"currency"`
	Address       string `json:"address"`
}

// preparedClient is a normalized client with the problems found on it
type preparedClient struct {
	Client           *entity.Client
	InferredTemplate bool
	Errors           []string
	Warnings         []string
}

// prepareClient normalizes in and applies the DGI template rules. A blank
// template is inferred, a blank currency becomes XOF and a blank payment
// mode becomes cash.
func prepareClient(in ClientInput) *preparedClient {
	out := &preparedClient{}

	c := &entity.Client{
		Code:     utils.SanitizeString(in.Code),
		Name:     utils.SanitizeString(in.Name),
		NCC:      strings.ToUpper(utils.SanitizeString(in.NCC)),
		Email:    utils.SanitizeString(in.Email),
		Phone:    utils.SanitizeString(in.Phone),
		Address:  utils.SanitizeString(in.Address),
		IsActive: true,
	}
	out.Client = c

	c.DefaultCurrency = strings.ToUpper(utils.SanitizeString(in.Currency))
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = fne.DefaultCurrency
	}

	c.DefaultPaymentMethod = fne.DefaultPaymentMethod
	if text := utils.SanitizeString(in.PaymentMethod); text != "" {
		method, ok := fne.NormalizePaymentMethod(text)
		if !ok {
			out.Warnings = append(out.Warnings, fmt.Sprintf("unknown payment mode %q, using %s", text, method))
		}
		c.DefaultPaymentMethod = method
	}

	fields := fne.ClientFields{
		Code:     c.Code,
		Name:     c.Name,
		NCC:      c.NCC,
		Currency: c.DefaultCurrency,
		Address:  c.Address,
	}
	templateText := utils.SanitizeString(in.Template)
	switch {
	case templateText == "":
		c.Template = fne.InferTemplate(fields)
		out.InferredTemplate = true
	case fne.NormalizeTemplate(templateText) != "":
		c.Template = fne.NormalizeTemplate(templateText)
	default:
		c.Template = templateText
	}
	fields.Template = c.Template

	out.Errors = append(out.Errors, fne.ValidateClientTemplate(fields)...)

	if err := utils.ValidateEmail(c.Email); err != nil {
		out.Errors = append(out.Errors, err.Error())
	}
	if err := utils.ValidatePhone(c.Phone); err != nil {
		out.Warnings = append(out.Warnings, err.Error())
	}
	return out
}
