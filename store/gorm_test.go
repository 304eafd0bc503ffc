package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifyUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			"unit claim lost",
			&pgconn.PgError{Code: "23505", ConstraintName: "idx_tickets_reference_unit"},
			ErrDuplicateUnit,
		},
		{
			"ticket id collision",
			&pgconn.PgError{Code: "23505", ConstraintName: "idx_tickets_ticket_id"},
			ErrDuplicateTicketID,
		},
		{
			"wrapped pg error",
			fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_tickets_reference_unit"}),
			ErrDuplicateUnit,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyUniqueViolation(tc.err), tc.want)
		})
	}

	t.Run("non unique-violation passes through", func(t *testing.T) {
		other := errors.New("connection reset")
		assert.Equal(t, other, classifyUniqueViolation(other))
		fk := &pgconn.PgError{Code: "23503"}
		assert.Equal(t, error(fk), classifyUniqueViolation(fk))
	})
}
