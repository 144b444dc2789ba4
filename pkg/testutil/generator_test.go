package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583"
)

var allNetworks = []iso8583.Network{
	iso8583.Visa,
	iso8583.Mastercard,
	iso8583.Amex,
	iso8583.Discover,
	iso8583.JCB,
	iso8583.UnionPay,
}

func TestGeneratePAN(t *testing.T) {
	gen := NewSeededGenerator(42)

	for _, network := range allNetworks {
		for i := 0; i < 50; i++ {
			pan := gen.GeneratePAN(network)
			detected, ok := iso8583.DetectNetwork(pan)
			require.True(t, ok, "pan %q", pan)
			assert.Equal(t, network, detected, "pan %q", pan)
		}
	}
}

func TestGenerateAuthorization(t *testing.T) {
	gen := NewSeededGenerator(7)
	builder := iso8583.NewBuilder()
	validator := iso8583.NewValidator()

	for _, network := range allNetworks {
		t.Run(string(network), func(t *testing.T) {
			msg := gen.GenerateAuthorization(network)
			assert.Equal(t, "0100", msg.MTI)
			assert.Equal(t, network, msg.Network)

			wire, err := builder.Build(msg)
			require.NoError(t, err)

			parsed, err := iso8583.NewParser().Parse(wire)
			require.NoError(t, err)
			parsed.Network = network
			assert.Empty(t, validator.Validate(parsed))
		})
	}
}

func TestGenerateSTAN(t *testing.T) {
	gen := NewSeededGenerator(1)
	stan := gen.GenerateSTAN()
	assert.Len(t, stan, 6)
}

func TestGenerateRRN(t *testing.T) {
	gen := NewTestDataGenerator()
	rrn := gen.GenerateRRN()
	assert.Len(t, rrn, 12)
	assert.NotEqual(t, rrn, gen.GenerateRRN())
}
