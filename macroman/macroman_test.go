package macroman

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeASCIIPassthrough(t *testing.T) {
	require.Equal(t, "MyDisk", Decode([]byte("MyDisk")))
}

func TestEncodeDecodeRoundTripASCII(t *testing.T) {
	s := "Hello.txt"
	require.Equal(t, s, Decode(Encode(s)))
}

func TestDecodeHighBitByte(t *testing.T) {
	// 0x8A is MacRoman for lowercase a with diaeresis.
	got := Decode([]byte{0x8A})
	require.Equal(t, "ä", got)
}
