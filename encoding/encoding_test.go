package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/encoding"
)

func TestUTF8_DecodeRoundTrips(t *testing.T) {
	s, err := encoding.UTF8.Decode([]byte("héllo ☃"))
	require.NoError(t, err)
	require.Equal(t, "héllo ☃", s)
}

func TestUTF8_DecodeRejectsInvalidBytes(t *testing.T) {
	_, err := encoding.UTF8.Decode([]byte{0xff, 0xfe, 0x00})
	require.Error(t, err)
}

func TestUTF8_EncodeRoundTrips(t *testing.T) {
	b, err := encoding.UTF8.Encode("héllo")
	require.NoError(t, err)
	require.Equal(t, []byte("héllo"), b)
}

func TestLookup_EmptyAndUTF8NamesReturnUTF8Converter(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF-8", "utf8"} {
		c, err := encoding.Lookup(name)
		require.NoError(t, err)
		require.Equal(t, encoding.UTF8, c)
	}
}

func TestLookup_NamedEncodingRoundTrips(t *testing.T) {
	c, err := encoding.Lookup("ISO-8859-1")
	require.NoError(t, err)

	encoded, err := c.Encode("café")
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "café", decoded)
}

func TestLookup_UnknownNameFails(t *testing.T) {
	_, err := encoding.Lookup("not-a-real-encoding")
	require.Error(t, err)
}
