package helper

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	ticketIDPrefix   = "VBS-"
	ticketIDAttempts = 25

	// No 0/O, 1/I/L: codes get read out loud and typed from paper tickets.
	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	accessCodeLen      = 5

	clientReferenceLen = 20
)

var ErrTicketIDSpaceExhausted = errors.New("could not find a free ticket id")

// GenerateTicketID returns a VBS-XXXXXX id the exists check reports as free.
// The existence check is a pre-filter only; the store's unique constraint is
// the final authority and callers must retry create on a collision there.
func GenerateTicketID(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < ticketIDAttempts; i++ {
		raw := make([]byte, 3)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		candidate := ticketIDPrefix + strings.ToUpper(hex.EncodeToString(raw))
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrTicketIDSpaceExhausted
}

// GenerateAccessCode produces the 5-character human-entry code. Uniqueness is
// not checked here; the bulk-import path re-checks before accepting a code.
func GenerateAccessCode() string {
	code := make([]byte, accessCodeLen)
	if _, err := rand.Read(code); err != nil {
		// crypto/rand failing means the process is in much deeper trouble
		panic(err)
	}
	for i := range code {
		code[i] = accessCodeAlphabet[int(code[i])%len(accessCodeAlphabet)]
	}
	return string(code)
}

// GenerateClientReference returns a bounded alphanumeric idempotency token
// for outbound payment-initiation calls.
func GenerateClientReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "VBS" + raw[:clientReferenceLen-3]
}
