package iso8583

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBitmap(t *testing.T) {
	t.Run("primary only", func(t *testing.T) {
		bitmap := EncodeBitmap([]int{2, 3, 4, 11, 41, 42})
		assert.Equal(t, "7020000000C00000", bitmap)
		assert.Len(t, bitmap, 16)
	})

	t.Run("secondary sets bit 1", func(t *testing.T) {
		bitmap := EncodeBitmap([]int{2, 128})
		assert.Len(t, bitmap, 32)
		assert.Equal(t, "C000000000000000", bitmap[:16])
		assert.Equal(t, "0000000000000001", bitmap[16:])
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, "0000000000000000", EncodeBitmap(nil))
	})

	t.Run("upper case", func(t *testing.T) {
		bitmap := EncodeBitmap([]int{41, 42})
		assert.Equal(t, "0000000000C00000", bitmap)
	})
}

func TestPresentFields(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := []int{2, 3, 4, 11, 41, 42}
		got, err := PresentFields(EncodeBitmap(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("secondary round trip", func(t *testing.T) {
		want := []int{2, 55, 70, 128}
		got, err := PresentFields(EncodeBitmap(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got, err := PresentFields("7020000000c00000")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 4, 11, 41, 42}, got)
	})

	t.Run("continuation bits excluded", func(t *testing.T) {
		// Bit 1 plus an occupied secondary half.
		got, err := PresentFields("8000000000000000" + "4000000000000000")
		require.NoError(t, err)
		assert.Equal(t, []int{66}, got)
	})

	t.Run("non-hex input", func(t *testing.T) {
		_, err := PresentFields("70200000ZZC00000")
		assert.ErrorIs(t, err, ErrInvalidBitmap)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := PresentFields("7020")
		assert.ErrorIs(t, err, ErrInvalidBitmap)
	})

	t.Run("indicator mismatch", func(t *testing.T) {
		_, err := PresentFields("8000000000000000")
		assert.ErrorIs(t, err, ErrInvalidBitmap)

		_, err = PresentFields("7000000000000000" + "4000000000000000")
		assert.ErrorIs(t, err, ErrInvalidBitmap)
	})
}

// Property: for any accepted field set, the emitted bitmap decodes to
// exactly that set.
func TestBitmapPresenceLaw(t *testing.T) {
	sets := [][]int{
		{2},
		{2, 64},
		{66, 128},
		{2, 3, 4, 11, 22, 24, 25, 35, 41, 42, 55},
		{64, 66},
		{128},
	}
	for _, want := range sets {
		got, err := PresentFields(EncodeBitmap(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func BenchmarkEncodeBitmap(b *testing.B) {
	fields := []int{2, 3, 4, 11, 22, 24, 25, 41, 42, 55, 128}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeBitmap(fields)
	}
}

func BenchmarkPresentFields(b *testing.B) {
	bitmap := EncodeBitmap([]int{2, 3, 4, 11, 22, 24, 25, 41, 42, 55, 128})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PresentFields(bitmap); err != nil {
			b.Fatal(err)
		}
	}
}
