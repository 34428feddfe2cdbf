package fne

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fnev4/fnev4/internal/domain/entity"
)

func TestNormalizePaymentMethod(t *testing.T) {
	tests := []struct {
		input      string
		want       string
		recognized bool
	}{
		{"cash", entity.PaymentCash, true},
		{"  ESPÈCES ", entity.PaymentCash, true},
		{"Espece", entity.PaymentCash, true},
		{"Carte Bancaire", entity.PaymentCard, true},
		{"CB", entity.PaymentCard, true},
		{"Mobile Money", entity.PaymentMobileMoney, true},
		{"mobile-money", entity.PaymentMobileMoney, true},
		{"Orange  Money", entity.PaymentMobileMoney, true},
		{"Virement", entity.PaymentBankTransfer, true},
		{"bank-transfer", entity.PaymentBankTransfer, true},
		{"Chèque", entity.PaymentCheck, true},
		{"CRÉDIT", entity.PaymentCredit, true},
		{"à terme", entity.PaymentCredit, true},
		{"", entity.PaymentCash, false},
		{"   ", entity.PaymentCash, false},
		{"bitcoin", entity.PaymentCash, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizePaymentMethod(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.recognized, ok)
			assert.True(t, IsValidPaymentMethod(got))
		})
	}
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, IsValidPaymentMethod(m), m)
	}
	assert.False(t, IsValidPaymentMethod("Cash"))
	assert.False(t, IsValidPaymentMethod("transfer"))
	assert.False(t, IsValidPaymentMethod(""))
}
