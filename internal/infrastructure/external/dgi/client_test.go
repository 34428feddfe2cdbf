package dgi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
)

func sampleRequest() *port.CertificationRequest {
	return &port.CertificationRequest{
		InvoiceType:       entity.InvoiceTypeSale,
		PaymentMethod:     entity.PaymentBankTransfer,
		Template:          entity.TemplateB2B,
		ClientNcc:         "9502363N",
		ClientCompanyName: "SOCIETE ABC",
		PointOfSale:       "PDV-01",
		Establishment:     "Siège",
		Items: []port.CertificationItem{
			{
				Reference:   "P001",
				Description: "Ciment",
				Quantity:    decimal.NewFromInt(2),
				Amount:      decimal.RequireFromString("5000.50"),
				Measurement: "sac",
				Taxes:       []string{"TVA"},
			},
		},
	}
}

func TestClient_SignInvoice_Success(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ws/external/invoices/sign", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ncc": "9606123E",
			"reference": "9606123E25000000019",
			"token": "https://www.services.fne.dgi.gouv.ci/fr/verification/019465c1",
			"warning": false,
			"balance_sticker": 179,
			"invoice": {"id": "e2b2d8da", "items": [{"id": "item-1"}]}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL + "/ws/", APIKey: "secret", Timeout: time.Second}, zap.NewNop())

	resp, ex, err := c.SignInvoice(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "9606123E25000000019", resp.Reference)
	assert.Equal(t, "e2b2d8da", resp.InvoiceID)
	assert.Equal(t, []string{"item-1"}, resp.ItemIDs)
	require.NotNil(t, resp.StickerBalance)
	assert.Equal(t, int64(179), *resp.StickerBalance)

	assert.Equal(t, http.StatusOK, ex.StatusCode)
	assert.Equal(t, signPath, ex.Endpoint)
	assert.Contains(t, ex.RequestBody, `"paymentMethod":"transfer"`)
	assert.Contains(t, ex.ResponseBody, "balance_sticker")

	assert.Equal(t, "transfer", received["paymentMethod"])
	assert.Equal(t, "B2B", received["template"])
	items := received["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, 5000.5, item["amount"])
	assert.Equal(t, float64(2), item["quantity"])
	assert.Equal(t, []interface{}{"TVA"}, item["taxes"])
}

func TestClient_SignInvoice_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"code":"INVALID_NCC","message":"Validation failed","errors":{"clientNcc":["invalid format"]}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "secret"}, zap.NewNop())

	resp, ex, err := c.SignInvoice(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Nil(t, resp)
	require.NotNil(t, ex)
	assert.Equal(t, http.StatusBadRequest, ex.StatusCode)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "INVALID_NCC", apiErr.Code)
	assert.Equal(t, []string{"clientNcc: invalid format"}, apiErr.Errors)
	assert.Contains(t, err.Error(), "Validation failed")
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "secret"}, zap.NewNop())
	_, _, err := c.SignInvoice(context.Background(), sampleRequest())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestClient_LongErrorBodyKeepsWholeRunes(t *testing.T) {
	body := strings.Repeat("é", 600)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "secret"}, zap.NewNop())
	_, _, err := c.SignInvoice(context.Background(), sampleRequest())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(apiErr.Message))
	assert.Equal(t, 500, utf8.RuneCountInString(apiErr.Message))
	assert.Equal(t, "court", truncate("court", 500))
}

func TestBuildSignRequest_ForeignClient(t *testing.T) {
	req := sampleRequest()
	req.Template = entity.TemplateB2F
	req.ForeignCurrency = "EUR"

	data, err := json.Marshal(buildSignRequest(req))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "EUR", body["foreignCurrency"])
	assert.NotContains(t, body, "foreignCurrencyRate")
}

func TestClient_RefundInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/external/invoices/e2b2d8da/refund", r.URL.Path)

		var body refundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Items, 1)
		assert.Equal(t, "item-1", body.Items[0].ID)
		assert.Equal(t, json.Number("1"), body.Items[0].Quantity)

		_, _ = w.Write([]byte(`{"reference":"9606123E25000000020","token":"abc","balance_sticker":178}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "secret"}, zap.NewNop())
	resp, ex, err := c.RefundInvoice(context.Background(), "e2b2d8da", []port.RefundItem{
		{ID: "item-1", Quantity: decimal.NewFromInt(-1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "9606123E25000000020", resp.Reference)
	assert.Equal(t, "/external/invoices/e2b2d8da/refund", ex.Endpoint)
}

func TestClient_MissingAPIKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	_, ex, err := c.SignInvoice(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.NotEmpty(t, ex.RequestBody)
}

func TestClient_VerificationURL(t *testing.T) {
	c := NewClient(Config{}, zap.NewNop())
	assert.Equal(t, "https://x.ci/v/1", c.VerificationURL("https://x.ci/v/1"))
	assert.Equal(t, DefaultVerificationBaseURL+"abc", c.VerificationURL("abc"))
	assert.Equal(t, "", c.VerificationURL(" "))
}

func TestPaymentMethod(t *testing.T) {
	assert.Equal(t, "transfer", PaymentMethod(entity.PaymentBankTransfer))
	assert.Equal(t, "deferred", PaymentMethod(entity.PaymentCredit))
	assert.Equal(t, "mobile-money", PaymentMethod(entity.PaymentMobileMoney))
	assert.Equal(t, "cash", PaymentMethod(""))
}
