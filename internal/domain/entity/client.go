package entity

import "time"

// Client is a customer record imported from Sage 100 or created by hand.
// Code is unique; inactive clients are hidden from lookups.
type Client struct {
	ID                   int64     `json:"id"`
	Code                 string    `json:"code"`
	Name                 string    `json:"name"`
	NCC                  string    `json:"ncc,omitempty"`
	Template             string    `json:"template"`
	DefaultPaymentMethod string    `json:"default_payment_method"`
	DefaultCurrency      string    `json:"default_currency"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Address              string    `json:"address,omitempty"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
