package iban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "GE29NB0000000101904917", Normalize(" ge29 nb00 0000 0101 9049 17 "))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"valid", "GE29NB0000000101904917", nil},
		{"valid with spaces", "GE29 NB00 0000 0101 9049 17", nil},
		{"bad checksum", "GE28NB0000000101904917", ErrInvalidChecksum},
		{"wrong country", "DE89370400440532013000", ErrInvalidFormat},
		{"too short", "GE29NB00000001019049", ErrInvalidFormat},
		{"letters in account part", "GE29NB00000001019049AB", ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	got, err := Build("0000000101904917")
	require.NoError(t, err)
	assert.Equal(t, "GE29NB0000000101904917", got)
	assert.NoError(t, Validate(got))

	generated, err := Build("1234567890123456")
	require.NoError(t, err)
	assert.NoError(t, Validate(generated))

	_, err = Build("123")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
