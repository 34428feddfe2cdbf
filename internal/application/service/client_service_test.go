package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnev4/fnev4/internal/domain/entity"
)

func newClientService(clients *mockClientRepo) ClientService {
	return NewClientService(clients, &mockSessionRepo{}, &mockVatRepo{}, &mockLogger{})
}

func TestClientService_Create(t *testing.T) {
	clients := newMockClientRepo(b2bClient())
	svc := newClientService(clients)
	ctx := context.Background()

	c, err := svc.Create(ctx, ClientInput{Code: "G001", Name: "Ministère de la Santé", NCC: "1234567a"})
	require.NoError(t, err)
	assert.Equal(t, entity.TemplateB2G, c.Template)
	assert.Equal(t, "1234567A", c.NCC)
	assert.Equal(t, "XOF", c.DefaultCurrency)
	assert.True(t, c.IsActive)

	_, err = svc.Create(ctx, ClientInput{Code: "C001", Name: "DOUBLON"})
	assert.ErrorIs(t, err, ErrClientExists)

	_, err = svc.Create(ctx, ClientInput{Code: "C009", Name: "SANS NCC", Template: "B2B"})
	assert.ErrorIs(t, err, ErrInvalidClient)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"NCC is required for template B2B"}, verr.Violations)
}

func TestClientService_UpdateAndDeactivate(t *testing.T) {
	clients := newMockClientRepo(b2bClient())
	svc := newClientService(clients)
	ctx := context.Background()

	c, err := svc.Update(ctx, "C001", ClientInput{Name: "SOCIETE ABC SARL", NCC: "9502363N", Template: "b to b", Email: "contact@abc.ci"})
	require.NoError(t, err)
	assert.Equal(t, "C001", c.Code)
	assert.Equal(t, entity.TemplateB2B, c.Template)
	assert.Equal(t, int64(1), c.ID)

	_, err = svc.Update(ctx, "C001", ClientInput{Name: "X", NCC: "9502363N", Template: "B2B", Email: "pas-un-email"})
	assert.ErrorIs(t, err, ErrInvalidClient)

	require.NoError(t, svc.Deactivate(ctx, "C001"))
	_, err = svc.GetByCode(ctx, "C001")
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, svc.Deactivate(ctx, "C001"), ErrClientNotFound)
}

func TestClientService_Lookups(t *testing.T) {
	svc := newClientService(newMockClientRepo())

	types, err := svc.VatTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 4)

	sessions, err := svc.ListSessions(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
}
