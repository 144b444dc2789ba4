package iso8583

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583/emv"
)

func s1Message() *Message {
	msg := NewMessage("0100")
	for num, value := range s1Fields() {
		msg.Fields[num] = value
	}
	return msg
}

func TestBuilderBuild(t *testing.T) {
	builder := NewBuilder()

	t.Run("minimal authorization wire", func(t *testing.T) {
		wire, err := builder.Build(s1Message())
		require.NoError(t, err)
		assert.Equal(t, s1Wire, string(wire))
	})

	t.Run("bitmap derivation", func(t *testing.T) {
		wire, err := builder.Build(s1Message())
		require.NoError(t, err)

		bitmap := string(wire[4:20])
		assert.Len(t, bitmap, 16)
		assert.Equal(t, strings.ToUpper(bitmap), bitmap)

		present, err := PresentFields(bitmap)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 4, 11, 41, 42}, present)
	})

	t.Run("round trip", func(t *testing.T) {
		wire, err := builder.Build(s1Message())
		require.NoError(t, err)

		msg, err := NewParser().Parse(wire)
		require.NoError(t, err)
		assert.Equal(t, s1Fields(), msg.Fields)
		assert.Equal(t, "0100", msg.MTI)
	})

	t.Run("idempotent rebuild", func(t *testing.T) {
		msg, err := NewParser().Parse([]byte(s1Wire))
		require.NoError(t, err)
		// Detection stamped a network; rebuild without the required-set
		// overlay to exercise the canonical-form law.
		msg.Network = ""
		wire, err := builder.Build(msg)
		require.NoError(t, err)
		assert.Equal(t, s1Wire, string(wire))
	})

	t.Run("canonicalises padding", func(t *testing.T) {
		msg := s1Message()
		msg.Fields[4] = "1000"
		msg.Fields[41] = "TERM1"
		wire, err := builder.Build(msg)
		require.NoError(t, err)

		parsed, err := NewParser().Parse(wire)
		require.NoError(t, err)
		assert.Equal(t, "000000001000", parsed.Fields[4])
		assert.Equal(t, "TERM1   ", parsed.Fields[41])
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := builder.Build(s1Message())
		require.NoError(t, err)
		second, err := builder.Build(s1Message())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("input draft not mutated", func(t *testing.T) {
		msg := s1Message()
		msg.Fields[4] = "1000"
		_, err := builder.Build(msg)
		require.NoError(t, err)
		assert.Equal(t, "1000", msg.Fields[4])
		assert.Empty(t, msg.Bitmap)
	})
}

func TestBuilderSecondaryBitmap(t *testing.T) {
	builder := NewBuilder()

	msg := s1Message()
	msg.Fields[128] = "0123456789ABCDEF"

	wire, err := builder.Build(msg)
	require.NoError(t, err)

	bitmap := string(wire[4:36])
	assert.Len(t, bitmap, 32)
	assert.Equal(t, byte('F'), bitmap[0]) // bit 1 set alongside 2,3,4

	parsed, err := NewParser().Parse(wire)
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF", parsed.Fields[128])

	parsed.Network = ""
	assert.Empty(t, NewValidator().Validate(parsed))
}

func TestBuilderRefusals(t *testing.T) {
	builder := NewBuilder()

	t.Run("network required field missing", func(t *testing.T) {
		msg := NewMessage("0100")
		msg.Network = Mastercard
		msg.Fields[2] = "5105105105105100"
		msg.Fields[3] = "000000"
		msg.Fields[4] = "000000001000"
		msg.Fields[11] = "123456"
		msg.Fields[24] = "100"
		msg.Fields[25] = "00"

		_, err := builder.Build(msg)
		var be *BuildError
		require.ErrorAs(t, err, &be)
		require.Len(t, be.Diagnostics, 1)
		assert.Equal(t, 22, be.Diagnostics[0].Field)
		assert.Equal(t, RuleRequired, be.Diagnostics[0].Rule)
	})

	t.Run("luhn failure refused", func(t *testing.T) {
		msg := s1Message()
		msg.Fields[2] = "4111111111111112"
		_, err := builder.Build(msg)
		var be *BuildError
		require.ErrorAs(t, err, &be)
		require.Len(t, be.Diagnostics, 1)
		assert.Equal(t, 2, be.Diagnostics[0].Field)
		assert.Equal(t, RuleLuhn, be.Diagnostics[0].Rule)
	})

	t.Run("oversized value refused", func(t *testing.T) {
		msg := s1Message()
		msg.Fields[3] = "0000000"
		_, err := builder.Build(msg)
		var be *BuildError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 3, be.Diagnostics[0].Field)
	})

	t.Run("continuation marker in fields map", func(t *testing.T) {
		msg := s1Message()
		msg.Fields[1] = "FFFF"
		_, err := builder.Build(msg)
		var be *BuildError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 1, be.Diagnostics[0].Field)
	})

	t.Run("invalid MTI refused", func(t *testing.T) {
		msg := s1Message()
		msg.MTI = "0700"
		_, err := builder.Build(msg)
		var be *BuildError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, RuleMTI, be.Diagnostics[0].Rule)
	})
}

func TestBuilderEMV(t *testing.T) {
	builder := NewBuilder()

	tags := emv.NewTagList()
	tags.Set("9F26", "1234567890ABCDEF")
	tags.Set("9F27", "80")

	msg := s1Message()
	msg.EMV = tags

	wire, err := builder.Build(msg)
	require.NoError(t, err)

	parsed, err := NewParser().Parse(wire)
	require.NoError(t, err)
	require.NotNil(t, parsed.EMV)
	assert.Equal(t, []string{"9F26", "9F27"}, parsed.EMV.Tags())
	cryptogram, _ := parsed.EMV.Get("9F26")
	assert.Equal(t, "1234567890ABCDEF", cryptogram)
}

func BenchmarkBuild(b *testing.B) {
	builder := NewBuilder()
	msg := s1Message()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Build(msg); err != nil {
			b.Fatal(err)
		}
	}
}
