package service

import (
	"context"
	"testing"

	"vbs_tickets/model"
	"vbs_tickets/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByPhoneToleratesFormatting(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.Create(context.Background(), &model.Ticket{
		TicketID: "VBS-L00001", Reference: "REF-L", Phone: "233241234567",
	}))
	lookup := NewLookup(st)

	for _, query := range []string{"0241234567", "+233 24 123 4567", "233241234567"} {
		rows, err := lookup.ByPhone(context.Background(), query)
		require.NoError(t, err)
		assert.Len(t, rows, 1, "query %q missed the ticket", query)
	}

	rows, err := lookup.ByPhone(context.Background(), "0249999999")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLookupByAccessCode(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.Create(context.Background(), &model.Ticket{
		TicketID: "VBS-L00002", Reference: "REF-L2", Phone: "233241234567",
		AccessCode: "K7MNP",
	}))
	lookup := NewLookup(st)

	ticket, err := lookup.ByAccessCode(context.Background(), "0241234567", "k7mnp")
	require.NoError(t, err)
	assert.Equal(t, "VBS-L00002", ticket.TicketID)

	_, err = lookup.ByAccessCode(context.Background(), "0241234567", "WRONG")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
