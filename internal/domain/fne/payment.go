package fne

import "github.com/fnev4/fnev4/internal/domain/entity"

// DefaultPaymentMethod is used when neither the sheet nor the client says otherwise.
const DefaultPaymentMethod = entity.PaymentCash

// PaymentMethods is the closed set accepted by the application.
var PaymentMethods = []string{
	entity.PaymentCash,
	entity.PaymentCard,
	entity.PaymentMobileMoney,
	entity.PaymentBankTransfer,
	entity.PaymentCheck,
	entity.PaymentCredit,
}

// paymentSynonyms is keyed by foldKey output.
var paymentSynonyms = map[string]string{
	"cash":              entity.PaymentCash,
	"especes":           entity.PaymentCash,
	"espece":            entity.PaymentCash,
	"comptant":          entity.PaymentCash,
	"liquide":           entity.PaymentCash,
	"card":              entity.PaymentCard,
	"carte":             entity.PaymentCard,
	"carte bancaire":    entity.PaymentCard,
	"cb":                entity.PaymentCard,
	"credit card":       entity.PaymentCard,
	"debit card":        entity.PaymentCard,
	"tpe":               entity.PaymentCard,
	"mobile money":      entity.PaymentMobileMoney,
	"mobilemoney":       entity.PaymentMobileMoney,
	"momo":              entity.PaymentMobileMoney,
	"orange money":      entity.PaymentMobileMoney,
	"mtn money":         entity.PaymentMobileMoney,
	"moov money":        entity.PaymentMobileMoney,
	"wave":              entity.PaymentMobileMoney,
	"bank transfer":     entity.PaymentBankTransfer,
	"transfer":          entity.PaymentBankTransfer,
	"virement":          entity.PaymentBankTransfer,
	"virement bancaire": entity.PaymentBankTransfer,
	"transfert":         entity.PaymentBankTransfer,
	"check":             entity.PaymentCheck,
	"cheque":            entity.PaymentCheck,
	"credit":            entity.PaymentCredit,
	"a terme":           entity.PaymentCredit,
	"deferred":          entity.PaymentCredit,
	"differe":           entity.PaymentCredit,
}

// NormalizePaymentMethod maps free text from a spreadsheet to one of
// PaymentMethods. Blank or unknown text yields cash with recognized=false.
func NormalizePaymentMethod(text string) (method string, recognized bool) {
	key := foldKey(text)
	if key == "" {
		return DefaultPaymentMethod, false
	}
	if m, ok := paymentSynonyms[key]; ok {
		return m, true
	}
	return DefaultPaymentMethod, false
}

// IsValidPaymentMethod reports whether method is already canonical.
func IsValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
