package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"local with leading zero", "0241234567", "233241234567"},
		{"plus country code", "+233241234567", "233241234567"},
		{"already canonical", "233241234567", "233241234567"},
		{"bare subscriber", "241234567", "233241234567"},
		{"intl dial prefix", "00233241234567", "233241234567"},
		{"spaces and dashes", "024 123-4567", "233241234567"},
		{"unrecognized shape kept as digits", "12345", "12345"},
		{"empty", "", ""},
		{"symbols only", "+- ()", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.input))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, raw := range []string{"0241234567", "+233 24 123 4567", "555123456"} {
		once := NormalizePhone(raw)
		assert.Equal(t, once, NormalizePhone(once), "normalizing %q twice changed the value", raw)
	}
}

func TestPhoneSuffix(t *testing.T) {
	assert.Equal(t, "241234567", PhoneSuffix("233241234567"))
	assert.Equal(t, "241234567", PhoneSuffix("241234567"))
	assert.Equal(t, "1234", PhoneSuffix("1234"))
}
