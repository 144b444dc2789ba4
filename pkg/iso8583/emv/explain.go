package emv

import (
	"encoding/hex"
	"strconv"
	"strings"
)

type tvrFlag struct {
	mask byte
	desc string
}

var tvrFlags = [5][]tvrFlag{
	{
		{0x80, "Offline data authentication not performed"},
		{0x40, "SDA failed"},
		{0x20, "ICC data missing"},
		{0x10, "Card appears on terminal exception file"},
		{0x08, "DDA failed"},
		{0x04, "CDA failed"},
	},
	{
		{0x80, "ICC and terminal have different application versions"},
		{0x40, "Expired application"},
		{0x20, "Application not yet effective"},
		{0x10, "Requested service not allowed for card product"},
		{0x08, "New card"},
	},
	{
		{0x80, "Cardholder verification was not successful"},
		{0x40, "Unrecognized CVM"},
		{0x20, "PIN try limit exceeded"},
		{0x10, "PIN entry required and PIN pad not present or not working"},
		{0x08, "PIN entry required, PIN pad present, but PIN was not entered"},
		{0x04, "Online PIN entered"},
	},
	{
		{0x80, "Transaction exceeds floor limit"},
		{0x40, "Lower consecutive offline limit exceeded"},
		{0x20, "Upper consecutive offline limit exceeded"},
		{0x10, "Transaction selected randomly for online processing"},
		{0x08, "Merchant forced transaction online"},
	},
	{
		{0x80, "Default TDOL used"},
		{0x40, "Issuer authentication failed"},
		{0x20, "Script processing failed before final GENERATE AC"},
		{0x10, "Script processing failed after final GENERATE AC"},
	},
}

// ExplainTVR decodes a Terminal Verification Results value (tag 95)
// into the list of set condition flags. Short input is right-padded
// with zero bytes.
func ExplainTVR(tvrHex string) []string {
	if len(tvrHex) < 10 {
		tvrHex = tvrHex + strings.Repeat("0", 10-len(tvrHex))
	}
	raw, err := hex.DecodeString(tvrHex[:10])
	if err != nil {
		return nil
	}
	var set []string
	for i, flags := range tvrFlags {
		for _, f := range flags {
			if raw[i]&f.mask != 0 {
				set = append(set, f.desc)
			}
		}
	}
	return set
}

// ExplainCID describes the cryptogram type carried in Cryptogram
// Information Data (tag 9F27).
func ExplainCID(cidHex string) string {
	v, err := strconv.ParseUint(cidHex, 16, 8)
	if err != nil {
		return "Unknown"
	}
	switch (v >> 6) & 0x03 {
	case 0:
		return "AAC (Application Authentication Cryptogram) - Transaction declined"
	case 1:
		return "TC (Transaction Certificate) - Transaction approved offline"
	case 2:
		return "ARQC (Authorization Request Cryptogram) - Online authorization requested"
	default:
		return "RFU (Reserved for Future Use)"
	}
}
