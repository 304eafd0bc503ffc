package service

import (
	"context"
	"testing"

	"vbs_tickets/model"
	"vbs_tickets/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySingleUse(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.Create(context.Background(), &model.Ticket{
		TicketID: "VBS-AA0001", Reference: "REF-V", Phone: "233241234567",
	}))

	checkin := NewCheckin(st, nil)

	first, err := checkin.Verify(context.Background(), "VBS-AA0001", "gate-1")
	require.NoError(t, err)
	assert.True(t, first.Used)
	assert.Equal(t, "gate-1", first.VerifiedBy)
	require.NotNil(t, first.VerifiedAt)

	_, err = checkin.Verify(context.Background(), "VBS-AA0001", "gate-2")
	assert.ErrorIs(t, err, store.ErrAlreadyUsed)
}

func TestVerifyUnknownTicket(t *testing.T) {
	checkin := NewCheckin(newFakeStore(), nil)
	_, err := checkin.Verify(context.Background(), "VBS-NOPE00", "gate-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
