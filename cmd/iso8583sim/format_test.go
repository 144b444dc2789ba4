package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583"
)

func sampleMessage(t *testing.T) *iso8583.Message {
	t.Helper()
	wire := "0100" + "7020000000C00000" +
		"164111111111111111" + "000000" + "000000001000" + "123456" +
		"TERM0001" + "MERCHANT123456 "
	msg, err := iso8583.NewParser().Parse([]byte(wire))
	require.NoError(t, err)
	return msg
}

func TestRenderMessageJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMessage(&buf, sampleMessage(t), "json"))

	var out jsonMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "0100", out.MTI)
	assert.Equal(t, "VISA", out.Network)
	assert.Equal(t, "4111111111111111", out.Fields["2"])
}

func TestRenderMessageTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMessage(&buf, sampleMessage(t), "table"))
	assert.Contains(t, buf.String(), "Primary Account Number (PAN)")
	assert.Contains(t, buf.String(), "TERM0001")
}

func TestRenderMessageRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMessage(&buf, sampleMessage(t), "raw"))
	assert.Contains(t, buf.String(), "2=4111111111111111\n")
}

func TestRenderDiagnostics(t *testing.T) {
	diags := []iso8583.Diagnostic{
		{Field: 2, Rule: iso8583.RuleLuhn, Message: "PAN fails Luhn checksum"},
	}

	var buf bytes.Buffer
	require.NoError(t, renderDiagnostics(&buf, diags, "table"))
	assert.Contains(t, buf.String(), "pan_luhn")

	buf.Reset()
	require.NoError(t, renderDiagnostics(&buf, nil, "table"))
	assert.Contains(t, buf.String(), "valid")
}

func TestLoadDraft(t *testing.T) {
	path := t.TempDir() + "/fields.json"
	require.NoError(t, os.WriteFile(path, []byte(`{"2":"4111111111111111","11":"123456"}`), 0o600))

	msg, err := loadDraft("0100", path)
	require.NoError(t, err)
	assert.Equal(t, "0100", msg.MTI)
	assert.Equal(t, "4111111111111111", msg.Fields[2])

	require.NoError(t, os.WriteFile(path, []byte(`{"x":"1"}`), 0o600))
	_, err = loadDraft("0100", path)
	assert.Error(t, err)
}
