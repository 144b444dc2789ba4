package iso8583

import (
	"fmt"
	"sort"
	"time"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583/emv"
)

// Version identifies the ISO 8583 protocol revision a message follows.
type Version string

const (
	V1987 Version = "1987"
	V1993 Version = "1993"
	V2003 Version = "2003"
)

// Network identifies the card scheme that overlays field requirements
// on top of the base schema.
type Network string

const (
	Visa       Network = "VISA"
	Mastercard Network = "MASTERCARD"
	Amex       Network = "AMEX"
	Discover   Network = "DISCOVER"
	JCB        Network = "JCB"
	UnionPay   Network = "UNIONPAY"
)

// Message represents a parsed or drafted ISO 8583 message. Field values
// are stored as the exact wire substrings: padded for fixed fields,
// upper-case hex for binary fields. The codec never strips padding on
// decode; trimming is the caller's responsibility.
type Message struct {
	MTI     string
	Fields  map[int]string
	Bitmap  string
	Network Network
	Version Version
	EMV     *emv.TagList
	Raw     string
}

// NewMessage creates an empty draft with the given MTI.
func NewMessage(mti string) *Message {
	return &Message{
		MTI:     mti,
		Fields:  make(map[int]string),
		Version: V1987,
	}
}

// SetField sets a data field value. Field numbers 1 and 65 are bitmap
// continuation markers and are rejected, as is anything outside 2..128.
func (m *Message) SetField(num int, value string) error {
	if num < 2 || num > 128 || num == 65 {
		return fmt.Errorf("%w: %d is not a data field", ErrUnknownField, num)
	}
	if m.Fields == nil {
		m.Fields = make(map[int]string)
	}
	m.Fields[num] = value
	return nil
}

// GetField retrieves a field value.
func (m *Message) GetField(num int) (string, bool) {
	v, ok := m.Fields[num]
	return v, ok
}

// HasField reports whether a data field is present.
func (m *Message) HasField(num int) bool {
	_, ok := m.Fields[num]
	return ok
}

// FieldNumbers returns the present data field numbers in ascending
// order. Field 0 (legacy MTI slot) and the continuation markers are
// excluded.
func (m *Message) FieldNumbers() []int {
	nums := make([]int, 0, len(m.Fields))
	for n := range m.Fields {
		if n < 2 || n == 65 {
			continue
		}
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := &Message{
		MTI:     m.MTI,
		Fields:  make(map[int]string, len(m.Fields)),
		Bitmap:  m.Bitmap,
		Network: m.Network,
		Version: m.Version,
		Raw:     m.Raw,
	}
	for k, v := range m.Fields {
		c.Fields[k] = v
	}
	if m.EMV != nil {
		c.EMV = m.EMV.Clone()
	}
	return c
}

// Response derives a response draft from a request: the MTI function
// digit is bumped to the response value and the customary echo fields
// (2, 3, 4, 11, 37, 41, 42) are copied. Additional response fields are
// merged on top.
func (m *Message) Response(extra map[int]string) (*Message, error) {
	if len(m.MTI) != 4 {
		return nil, ErrInvalidMTI
	}
	mti := []byte(m.MTI)
	switch mti[2] {
	case '0':
		mti[2] = '1'
	case '2':
		mti[2] = '3'
	case '8':
		mti[2] = '9'
	}
	resp := NewMessage(string(mti))
	resp.Version = m.Version
	resp.Network = m.Network
	for _, n := range []int{2, 3, 4, 11, 37, 41, 42} {
		if v, ok := m.Fields[n]; ok {
			resp.Fields[n] = v
		}
	}
	for n, v := range extra {
		if err := resp.SetField(n, v); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Reversal derives a reversal draft from an original transaction. The
// MTI class digit becomes 4, field 7 is stamped with the current
// transmission time, field 39 is set to approval, and field 90 carries
// the original data elements (original MTI + STAN, zero-filled to 42).
func (m *Message) Reversal(extra map[int]string) (*Message, error) {
	if len(m.MTI) != 4 {
		return nil, ErrInvalidMTI
	}
	rev := NewMessage(m.MTI[:1] + "4" + m.MTI[2:])
	rev.Version = m.Version
	rev.Network = m.Network
	for n, v := range m.Fields {
		rev.Fields[n] = v
	}
	stan := m.Fields[11]
	for len(stan) < 6 {
		stan = "0" + stan
	}
	orig := m.MTI + stan
	for len(orig) < 42 {
		orig += "0"
	}
	rev.Fields[7] = time.Now().UTC().Format("0102150405")
	rev.Fields[39] = "00"
	rev.Fields[90] = orig
	for n, v := range extra {
		if err := rev.SetField(n, v); err != nil {
			return nil, err
		}
	}
	return rev, nil
}

// NetworkManagement creates an 0800 draft carrying the given network
// management information code in field 70.
func NetworkManagement(infoCode string) *Message {
	msg := NewMessage("0800")
	for len(infoCode) < 3 {
		infoCode = "0" + infoCode
	}
	msg.Fields[70] = infoCode
	msg.Fields[7] = time.Now().UTC().Format("0102150405")
	msg.Fields[11] = "000001"
	return msg
}

func (m *Message) String() string {
	return fmt.Sprintf("MTI: %s, Network: %s, Fields: %v", m.MTI, m.Network, m.FieldNumbers())
}
