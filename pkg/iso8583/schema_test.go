package iso8583

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionOverlays(t *testing.T) {
	r := NewRegistry()

	t.Run("base definition", func(t *testing.T) {
		def, ok := r.Definition(2, V1987, "")
		require.True(t, ok)
		assert.Equal(t, LLVar, def.Type)
		assert.Equal(t, 19, def.MaxLength)
	})

	t.Run("version overlay wins over base", func(t *testing.T) {
		def, ok := r.Definition(52, V1993, "")
		require.True(t, ok)
		assert.Equal(t, 16, def.MaxLength)

		def, ok = r.Definition(52, V1987, "")
		require.True(t, ok)
		assert.Equal(t, 8, def.MaxLength)
	})

	t.Run("network overlay wins over version", func(t *testing.T) {
		def, ok := r.Definition(55, V1993, Mastercard)
		require.True(t, ok)
		assert.Equal(t, 510, def.MaxLength)

		def, ok = r.Definition(55, V1993, "")
		require.True(t, ok)
		assert.Equal(t, 255, def.MaxLength)
	})

	t.Run("continuation markers are not data fields", func(t *testing.T) {
		_, ok := r.Definition(1, V1987, "")
		assert.False(t, ok)
		_, ok = r.Definition(65, V1987, "")
		assert.False(t, ok)
	})

	t.Run("cached lookup is stable", func(t *testing.T) {
		first, ok := r.Definition(48, V1987, Mastercard)
		require.True(t, ok)
		second, ok := r.Definition(48, V1987, Mastercard)
		require.True(t, ok)
		assert.Equal(t, first, second)
	})
}

func TestRequiredFields(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []int{2, 3, 4, 11, 14, 22, 24, 25}, r.RequiredFields(Visa))
	assert.Equal(t, []int{2, 3, 4, 11, 22, 24, 25}, r.RequiredFields(Mastercard))
	assert.Equal(t, []int{2, 3, 4, 11, 22, 25, 49}, r.RequiredFields(UnionPay))
	assert.Nil(t, r.RequiredFields(Network("BOGUS")))
}

func TestDetectNetwork(t *testing.T) {
	cases := []struct {
		pan  string
		want Network
		ok   bool
	}{
		{"4111111111111111", Visa, true},
		{"4111111111111", Visa, true},          // 13 digits
		{"4111111111111111111", Visa, true},    // 19 digits
		{"41111111111111", "", false},          // 14 digits is not a Visa length
		{"5105105105105100", Mastercard, true}, // 51 prefix
		{"5500005555555559", Mastercard, true}, // 55 prefix
		{"2221000000000009", Mastercard, true}, // low end of 2-series
		{"2720990000000007", Mastercard, true}, // high end of 2-series
		{"2121000000000000", "", false},        // outside 2221-2720
		{"340000000000009", Amex, true},
		{"370000000000002", Amex, true},
		{"34000000000000", "", false}, // Amex must be 15
		{"6011000000000004", Discover, true},
		{"6445000000000000", Discover, true},
		{"6500000000000002", Discover, true},
		{"3530111333300000", JCB, true}, // 3530 within 3528-3589
		{"3528000000000007", JCB, true}, // low end of the JCB range
		{"6212345678901232", UnionPay, true},
		{"9999999999999999", "", false},
		{"4111a11111111111", "", false}, // non-digit PAN
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := DetectNetwork(tc.pan)
		assert.Equal(t, tc.ok, ok, "pan %q", tc.pan)
		assert.Equal(t, tc.want, got, "pan %q", tc.pan)
	}
}

func TestDetectNetworkUnionPayPrefix(t *testing.T) {
	// A 62 PAN whose next digits (221) echo the low end of the
	// Mastercard 2-series still resolves to UnionPay: the 2221-2720 row
	// compares the first four digits, and 6221 lies outside it.
	got, ok := DetectNetwork("6221260000000000")
	require.True(t, ok)
	assert.Equal(t, UnionPay, got)
}

func BenchmarkDefinitionCached(b *testing.B) {
	r := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := r.Definition(55, V1993, Mastercard); !ok {
			b.Fatal("missing definition")
		}
	}
}
