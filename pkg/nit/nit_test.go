package nit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/pkg/nit"
)

func TestVerificationDigit(t *testing.T) {
	cases := map[string]int{
		"890903938":   8,
		"900.123.456": 8,
		"800197268":   4,
		"1":           8,
	}
	for base, want := range cases {
		got, err := nit.VerificationDigit(base)
		require.NoError(t, err, base)
		assert.Equal(t, want, got, base)
	}

	_, err := nit.VerificationDigit("")
	assert.ErrorIs(t, err, nit.ErrInvalid)
	_, err = nit.VerificationDigit("12A4")
	assert.ErrorIs(t, err, nit.ErrInvalid)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, nit.Validate("890903938-8"))
	assert.NoError(t, nit.Validate("900.123.456-8"))

	for _, bad := range []string{"900.123.456-7", "900123456", "900123456-", "900123456-12", "abc-1"} {
		assert.ErrorIs(t, nit.Validate(bad), nit.ErrInvalid, bad)
	}
}

func TestFormat(t *testing.T) {
	got, err := nit.Format("900123456")
	require.NoError(t, err)
	assert.Equal(t, "900.123.456-8", got)

	got, err = nit.Format("12345")
	require.NoError(t, err)
	assert.Regexp(t, `^12\.345-\d$`, got)
}
