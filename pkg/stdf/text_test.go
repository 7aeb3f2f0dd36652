package stdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeText(t *testing.T) {
	out, err := EncodeText("plain ascii")
	require.NoError(t, err)
	assert.Equal(t, "plain ascii", out)

	out, err = EncodeText("µA")
	require.NoError(t, err)
	assert.Equal(t, "\xb5A", out)

	_, err = EncodeText("Ω")
	assert.True(t, errors.Is(err, ErrUnencodableText))
}

func TestFirstChar(t *testing.T) {
	c, err := FirstChar("", 'P')
	require.NoError(t, err)
	assert.Equal(t, byte('P'), c)

	c, err = FirstChar("Production", 'P')
	require.NoError(t, err)
	assert.Equal(t, byte('P'), c)

	c, err = FirstChar("Éval", ' ')
	require.NoError(t, err)
	assert.Equal(t, byte(0xC9), c)

	_, err = FirstChar("日本", ' ')
	assert.True(t, errors.Is(err, ErrUnencodableText))
}
