package fieldcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIIntBlankIsNull(t *testing.T) {
	v, warn := ASCIIInt([]byte("        "), 0, 8)
	assert.Nil(t, warn)
	assert.True(t, v.Null)
}

func TestASCIIIntAllZeroIsZeroNotNull(t *testing.T) {
	v, warn := ASCIIInt([]byte("0000"), 0, 4)
	assert.Nil(t, warn)
	require.False(t, v.Null)
	assert.Equal(t, int64(0), v.Int)
}

func TestASCIIIntParsesLeadingZeros(t *testing.T) {
	v, warn := ASCIIInt([]byte("0042"), 0, 4)
	require.Nil(t, warn)
	require.False(t, v.Null)
	assert.Equal(t, int64(42), v.Int)
}

func TestASCIIIntNonDigitProducesWarning(t *testing.T) {
	v, warn := ASCIIInt([]byte("12AB"), 0, 4)
	require.NotNil(t, warn)
	assert.True(t, v.Null)
}

func TestASCIIRealDividesByScale(t *testing.T) {
	v, warn := ASCIIReal([]byte("00125"), 0, 5, 1)
	require.Nil(t, warn)
	assert.InDelta(t, 12.5, v.Real, 0.0001)
}

func TestASCIIDateTimeParsesEightDigitDate(t *testing.T) {
	tm, null, warn := ASCIIDateTime([]byte("20250615"), 0, 8)
	require.Nil(t, warn)
	require.False(t, null)
	assert.Equal(t, 2025, tm.Year())
	assert.Equal(t, 6, int(tm.Month()))
	assert.Equal(t, 15, tm.Day())
}

func TestASCIIDateTimeBlankIsNull(t *testing.T) {
	_, null, warn := ASCIIDateTime([]byte("        "), 0, 8)
	assert.Nil(t, warn)
	assert.True(t, null)
}

func TestTextTrimsTrailingSpacesAndDecodesASCII(t *testing.T) {
	got := Text([]byte("HELLO   "), 0, 8)
	assert.Equal(t, "HELLO", got)
}

func TestTextNeverErrorsOnArbitraryBytes(t *testing.T) {
	// 0xFF 0xFE is not a valid Shift-JIS lead byte pair; the fallback
	// path must still return something rather than panicking.
	assert.NotPanics(t, func() {
		Text([]byte{0xFF, 0xFE, 0x41}, 0, 3)
	})
}

func TestSliceNeverPanicsOnShortBuffer(t *testing.T) {
	assert.NotPanics(t, func() {
		ASCIIInt([]byte("12"), 5, 10)
	})
}
