package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/domain/workflow"
)

func TestInvoiceService_Delete(t *testing.T) {
	draft := draftInvoice("FAC-001", nil)
	certified := draftInvoice("FAC-002", nil)
	certified.Status = entity.InvoiceStatusCertified
	repo := newMockInvoiceRepo(draft, certified)
	svc := NewInvoiceService(repo, &mockApiLogRepo{}, &mockLogger{})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, err := svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, certified.ID), ErrAlreadyCertified)
	assert.ErrorIs(t, svc.Delete(ctx, 404), ErrInvoiceNotFound)
}

func TestInvoiceService_ResetToDraft(t *testing.T) {
	failed := draftInvoice("FAC-001", nil)
	failed.Status = entity.InvoiceStatusError
	failed.LastError = "DGI API error (HTTP 500)"
	draft := draftInvoice("FAC-002", nil)
	repo := newMockInvoiceRepo(failed, draft)
	svc := NewInvoiceService(repo, &mockApiLogRepo{}, &mockLogger{})
	ctx := context.Background()

	inv, err := svc.ResetToDraft(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.Empty(t, repo.invoices[failed.ID].LastError)

	_, err = svc.ResetToDraft(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestInvoiceService_UpdatePaymentMethod(t *testing.T) {
	draft := draftInvoice("FAC-001", nil)
	certified := draftInvoice("FAC-002", nil)
	certified.Status = entity.InvoiceStatusCertified
	repo := newMockInvoiceRepo(draft, certified)
	svc := NewInvoiceService(repo, &mockApiLogRepo{}, &mockLogger{})
	ctx := context.Background()

	inv, err := svc.UpdatePaymentMethod(ctx, draft.ID, "Mobile Money")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentMobileMoney, inv.PaymentMethod)
	assert.Equal(t, entity.PaymentMobileMoney, repo.invoices[draft.ID].PaymentMethod)

	_, err = svc.UpdatePaymentMethod(ctx, draft.ID, "troc")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = svc.UpdatePaymentMethod(ctx, certified.ID, "cash")
	assert.ErrorIs(t, err, ErrAlreadyCertified)
}

func TestInvoiceService_List(t *testing.T) {
	repo := newMockInvoiceRepo(draftInvoice("FAC-001", nil), draftInvoice("FAC-002", nil))
	svc := NewInvoiceService(repo, &mockApiLogRepo{}, &mockLogger{})
	ctx := context.Background()

	page, err := svc.List(ctx, port.InvoiceFilter{Status: entity.InvoiceStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, defaultPageSize, page.Limit)

	page, err = svc.List(ctx, port.InvoiceFilter{Status: entity.InvoiceStatusCertified, Limit: 10000})
	require.NoError(t, err)
	assert.Empty(t, page.Invoices)
	assert.NotNil(t, page.Invoices)
	assert.Equal(t, maxPageSize, page.Limit)

	_, err = svc.List(ctx, port.InvoiceFilter{Status: "PENDING"})
	assert.ErrorIs(t, err, workflow.ErrInvalidState)
}

func TestInvoiceService_APILogs(t *testing.T) {
	logs := &mockApiLogRepo{}
	require.NoError(t, logs.Append(context.Background(), &entity.FneApiLog{InvoiceID: 7, Endpoint: "/external/invoices/sign"}))
	svc := NewInvoiceService(newMockInvoiceRepo(), logs, &mockLogger{})

	got, err := svc.APILogs(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.APILogs(context.Background(), 8)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
