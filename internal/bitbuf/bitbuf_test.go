package bitbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesMSBFirst(t *testing.T) {
	bits := FromBytes([]byte{0xA0, 0x01})
	require.Len(t, bits, 16)
	assert.Equal(t, Bits{1, 0, 1, 0, 0, 0, 0, 0}, bits[:8])
	assert.Equal(t, Bits{0, 0, 0, 0, 0, 0, 0, 1}, bits[8:])
}

func TestBytesRoundTrip(t *testing.T) {
	data := []byte{0x00, 0xff, 0x5a, 0xc3, 0x81}
	assert.Equal(t, data, FromBytes(data).Bytes())
}

func TestBytesZeroPadsTail(t *testing.T) {
	bits := Bits{1, 1, 1}
	assert.Equal(t, []byte{0xE0}, bits.Bytes())
	assert.Empty(t, Bits{}.Bytes())
}

func TestPadTo(t *testing.T) {
	bits := Bits{1, 0, 1, 1, 1}
	padded := bits.PadTo(4)
	assert.Equal(t, Bits{1, 0, 1, 1, 1, 0, 0, 0}, padded)
	assert.Len(t, bits, 5, "receiver must not change")

	exact := Bits{1, 0, 1, 1}
	assert.Equal(t, exact, exact.PadTo(4))
}

func TestTruncateTo(t *testing.T) {
	bits := Bits{1, 1, 1, 1, 1, 1, 1, 0, 1}
	assert.Equal(t, Bits{1, 1, 1, 1, 1, 1, 1}, bits.TruncateTo(7))
	assert.Empty(t, Bits{1, 0}.TruncateTo(7))
}

func TestFit(t *testing.T) {
	bits := Bits{1, 1, 0}
	assert.Equal(t, Bits{1, 1, 0, 0, 0}, bits.Fit(5))
	assert.Equal(t, Bits{1, 1}, bits.Fit(2))
	assert.Empty(t, bits.Fit(-1))
}

func TestThreshold(t *testing.T) {
	got := Threshold([]float64{0.5, 0.51, -1, 2, 0.49}, 0.5)
	assert.Equal(t, Bits{0, 1, 0, 1, 0}, got)
}

func TestFloats(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 1}, Bits{1, 0, 1}.Floats())
}
