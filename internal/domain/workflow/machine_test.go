package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnev4/fnev4/internal/domain/entity"
)

func TestState_IsTerminal(t *testing.T) {
	assert.False(t, StateDraft.IsTerminal())
	assert.False(t, StateError.IsTerminal())
	assert.True(t, StateCertified.IsTerminal())
}

func TestParseState(t *testing.T) {
	s, err := ParseState(entity.InvoiceStatusError)
	require.NoError(t, err)
	assert.Equal(t, StateError, s)

	_, err = ParseState("PENDING")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ParseState("")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNewMachine_RejectsUnknownStates(t *testing.T) {
	_, err := NewMachine(Table{}, State(""))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = NewMachine(Table{StateDraft: {TriggerReset: State("SENT")}}, StateDraft)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = NewMachine(Table{State("SENT"): {}}, StateDraft)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInvoiceMachine_Transitions(t *testing.T) {
	tests := []struct {
		from    string
		trigger Trigger
		to      State
		allowed bool
	}{
		{entity.InvoiceStatusDraft, TriggerCertifySucceeded, StateCertified, true},
		{entity.InvoiceStatusDraft, TriggerCertifyFailed, StateError, true},
		{entity.InvoiceStatusDraft, TriggerReset, StateDraft, false},
		{entity.InvoiceStatusError, TriggerCertifySucceeded, StateCertified, true},
		{entity.InvoiceStatusError, TriggerCertifyFailed, StateError, true},
		{entity.InvoiceStatusError, TriggerReset, StateDraft, true},
		{entity.InvoiceStatusCertified, TriggerCertifySucceeded, StateCertified, false},
		{entity.InvoiceStatusCertified, TriggerCertifyFailed, StateCertified, false},
		{entity.InvoiceStatusCertified, TriggerReset, StateCertified, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.trigger.String(), func(t *testing.T) {
			m, err := NewInvoiceMachine(tt.from)
			require.NoError(t, err)

			assert.Equal(t, tt.allowed, m.CanFire(tt.trigger))

			err = m.Fire(context.Background(), tt.trigger)
			if !tt.allowed {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, State(tt.from), m.State())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, m.State())
		})
	}
}

func TestInvoiceMachine_RetryAfterFailure(t *testing.T) {
	m, err := NewInvoiceMachine(entity.InvoiceStatusDraft)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Fire(ctx, TriggerCertifyFailed))
	require.NoError(t, m.Fire(ctx, TriggerCertifyFailed))
	require.NoError(t, m.Fire(ctx, TriggerCertifySucceeded))

	assert.Equal(t, StateCertified, m.State())
	assert.Empty(t, m.PermittedTriggers())
}

func TestInvoiceMachine_Independent(t *testing.T) {
	m1, _ := NewInvoiceMachine(entity.InvoiceStatusDraft)
	m2, _ := NewInvoiceMachine(entity.InvoiceStatusDraft)

	require.NoError(t, m1.Fire(context.Background(), TriggerCertifySucceeded))
	assert.Equal(t, StateDraft, m2.State())
}

func TestNewInvoiceMachine_UnknownStatus(t *testing.T) {
	_, err := NewInvoiceMachine("SENT")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFire_TransitionError(t *testing.T) {
	m, err := NewInvoiceMachine(entity.InvoiceStatusCertified)
	require.NoError(t, err)

	err = m.Fire(context.Background(), TriggerReset)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StateCertified, te.From)
	assert.Equal(t, TriggerReset, te.Trigger)
	assert.Contains(t, err.Error(), "CERTIFIED is final")
}

func TestFire_CancelledContext(t *testing.T) {
	m, err := NewInvoiceMachine(entity.InvoiceStatusDraft)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Fire(ctx, TriggerCertifySucceeded), context.Canceled)
	assert.Equal(t, StateDraft, m.State())
}

func TestHistory(t *testing.T) {
	m, err := NewInvoiceMachine(entity.InvoiceStatusError)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Fire(ctx, TriggerReset))
	require.NoError(t, m.Fire(ctx, TriggerCertifySucceeded))

	assert.Equal(t, []Transition{
		{From: StateError, Trigger: TriggerReset, To: StateDraft},
		{From: StateDraft, Trigger: TriggerCertifySucceeded, To: StateCertified},
	}, m.History())
}

func TestPermittedTriggers_Sorted(t *testing.T) {
	m, err := NewInvoiceMachine(entity.InvoiceStatusError)
	require.NoError(t, err)
	assert.Equal(t, []Trigger{TriggerCertifyFailed, TriggerCertifySucceeded, TriggerReset}, m.PermittedTriggers())
}

func TestIsEditable(t *testing.T) {
	assert.True(t, IsEditable(entity.InvoiceStatusDraft))
	assert.True(t, IsEditable(entity.InvoiceStatusError))
	assert.False(t, IsEditable(entity.InvoiceStatusCertified))
	assert.False(t, IsEditable(""))
}
