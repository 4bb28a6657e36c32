package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Sealer_RoundTrips(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	sealed, err := s.Seal("smtp-app-password")
	require.NoError(t, err)
	opened, err := s.Open(sealed)

	require.NoError(t, err)
	assert.Equal(t, "smtp-app-password", opened)
	assert.NotContains(t, sealed, "smtp-app-password")
}

func Test_Sealer_Fails_WhenKeyDiffers(t *testing.T) {
	a, _ := NewSealer(bytes.Repeat([]byte{1}, 32))
	b, _ := NewSealer(bytes.Repeat([]byte{2}, 32))
	sealed, err := a.Seal("secret")
	require.NoError(t, err)

	_, err = b.Open(sealed)

	assert.Error(t, err)
}

func Test_Sealer_RejectsBadInput(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.Error(t, err)

	s, _ := NewSealer(bytes.Repeat([]byte{1}, 32))
	_, err = s.Open("plain")
	assert.ErrorIs(t, err, ErrNotSealed)
	_, err = s.Open("enc:AAAA")
	assert.Error(t, err)
}

func Test_Mask(t *testing.T) {
	assert.Equal(t, "******rd", Mask("password"))
	assert.Equal(t, "**", Mask("ab"))
	assert.Equal(t, "", Mask(""))
}
