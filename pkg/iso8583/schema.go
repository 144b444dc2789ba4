package iso8583

import (
	"sort"
	"sync"
)

// FieldType is the data class of a field, using the conventional ISO
// 8583 letter codes.
type FieldType string

const (
	Numeric      FieldType = "n"
	Alpha        FieldType = "a"
	Alphanumeric FieldType = "an"
	AlphaSpecial FieldType = "ans"
	Binary       FieldType = "b"
	Track2       FieldType = "z"
	LLVar        FieldType = "llvar"
	LLLVar       FieldType = "lllvar"
)

// PadDirection controls which side padding is applied to on encode.
type PadDirection int

const (
	PadNone PadDirection = iota
	PadLeft
	PadRight
)

// FieldDefinition is the schema entry for one field number. MaxLength
// is in characters for textual types and in bytes for binary. MinLength
// applies to variable-length fields only.
type FieldDefinition struct {
	Type         FieldType
	MaxLength    int
	MinLength    int
	PadChar      byte
	PadDirection PadDirection
	Description  string
}

// IsVariable reports whether the field carries a decimal length prefix
// on the wire.
func (d FieldDefinition) IsVariable() bool {
	return d.Type == LLVar || d.Type == LLLVar
}

func n(length int, desc string) FieldDefinition {
	return FieldDefinition{Type: Numeric, MaxLength: length, PadChar: '0', PadDirection: PadLeft, Description: desc}
}

func an(length int, desc string) FieldDefinition {
	return FieldDefinition{Type: Alphanumeric, MaxLength: length, PadChar: ' ', PadDirection: PadRight, Description: desc}
}

func ans(length int, desc string) FieldDefinition {
	return FieldDefinition{Type: AlphaSpecial, MaxLength: length, PadChar: ' ', PadDirection: PadRight, Description: desc}
}

func b(bytes int, desc string) FieldDefinition {
	return FieldDefinition{Type: Binary, MaxLength: bytes, Description: desc}
}

func llvar(max int, desc string) FieldDefinition {
	return FieldDefinition{Type: LLVar, MaxLength: max, Description: desc}
}

func lllvar(max int, desc string) FieldDefinition {
	return FieldDefinition{Type: LLLVar, MaxLength: max, Description: desc}
}

// baseFields is the ISO 8583:1987 dictionary for fields 2..128.
// Fields 1 and 65 are bitmap continuation markers, never data fields.
var baseFields = map[int]FieldDefinition{
	2:   llvar(19, "Primary Account Number (PAN)"),
	3:   n(6, "Processing Code"),
	4:   n(12, "Amount, Transaction"),
	5:   n(12, "Amount, Settlement"),
	6:   n(12, "Amount, Cardholder Billing"),
	7:   n(10, "Transmission Date & Time (MMDDhhmmss)"),
	8:   n(8, "Amount, Cardholder Billing Fee"),
	9:   n(8, "Conversion Rate, Settlement"),
	10:  n(8, "Conversion Rate, Cardholder Billing"),
	11:  n(6, "Systems Trace Audit Number (STAN)"),
	12:  n(6, "Time, Local Transaction (hhmmss)"),
	13:  n(4, "Date, Local Transaction (MMDD)"),
	14:  n(4, "Date, Expiration (YYMM)"),
	15:  n(4, "Date, Settlement (MMDD)"),
	16:  n(4, "Date, Conversion (MMDD)"),
	17:  n(4, "Date, Capture (MMDD)"),
	18:  n(4, "Merchant Type / Merchant Category Code"),
	19:  n(3, "Acquiring Institution Country Code"),
	20:  n(3, "PAN Extended Country Code"),
	21:  n(3, "Forwarding Institution Country Code"),
	22:  n(3, "Point of Service Entry Mode"),
	23:  n(3, "Card Sequence Number"),
	24:  n(3, "Function Code"),
	25:  n(2, "Point of Service Condition Code"),
	26:  n(2, "Point of Service PIN Capture Code"),
	27:  n(1, "Authorization ID Response Length"),
	28:  n(9, "Amount, Transaction Fee"),
	29:  n(9, "Amount, Settlement Fee"),
	30:  n(9, "Amount, Transaction Processing Fee"),
	31:  n(9, "Amount, Settlement Processing Fee"),
	32:  llvar(11, "Acquiring Institution ID Code"),
	33:  llvar(11, "Forwarding Institution ID Code"),
	34:  llvar(28, "PAN Extended"),
	35:  llvar(37, "Track 2 Data"),
	36:  lllvar(104, "Track 3 Data"),
	37:  an(12, "Retrieval Reference Number"),
	38:  an(6, "Authorization ID Response"),
	39:  n(2, "Response Code"),
	40:  n(3, "Service Restriction Code"),
	41:  an(8, "Card Acceptor Terminal ID"),
	42:  an(15, "Card Acceptor ID Code"),
	43:  ans(40, "Card Acceptor Name/Location"),
	44:  llvar(25, "Additional Response Data"),
	45:  llvar(76, "Track 1 Data"),
	46:  lllvar(999, "Additional Data - ISO"),
	47:  lllvar(999, "Additional Data - National"),
	48:  lllvar(999, "Additional Data - Private"),
	49:  n(3, "Currency Code, Transaction"),
	50:  n(3, "Currency Code, Settlement"),
	51:  n(3, "Currency Code, Cardholder Billing"),
	52:  b(8, "PIN Data"),
	53:  n(16, "Security Related Control Information"),
	54:  lllvar(120, "Additional Amounts"),
	55:  lllvar(999, "ICC System Related Data"),
	56:  llvar(35, "Reserved ISO"),
	57:  lllvar(999, "Reserved National"),
	58:  lllvar(999, "Reserved National"),
	59:  lllvar(999, "Reserved National"),
	60:  lllvar(999, "Reserved National"),
	61:  lllvar(999, "Reserved Private"),
	62:  lllvar(999, "Reserved Private"),
	63:  lllvar(999, "Reserved Private"),
	64:  b(8, "Message Authentication Code (MAC)"),
	66:  n(1, "Settlement Code"),
	67:  n(2, "Extended Payment Code"),
	68:  n(3, "Receiving Institution Country Code"),
	69:  n(3, "Settlement Institution Country Code"),
	70:  n(3, "Network Management Information Code"),
	71:  n(4, "Message Number"),
	72:  n(4, "Last Message Number"),
	73:  n(6, "Action Date (YYMMDD)"),
	74:  n(10, "Credits, Number"),
	75:  n(10, "Credits, Reversal Number"),
	76:  n(10, "Debits, Number"),
	77:  n(10, "Debits, Reversal Number"),
	78:  n(10, "Transfer, Number"),
	79:  n(10, "Transfer, Reversal Number"),
	80:  n(10, "Inquiries, Number"),
	81:  n(10, "Authorizations, Number"),
	82:  n(12, "Credits, Processing Fee Amount"),
	83:  n(12, "Credits, Transaction Fee Amount"),
	84:  n(12, "Debits, Processing Fee Amount"),
	85:  n(12, "Debits, Transaction Fee Amount"),
	86:  n(16, "Credits, Amount"),
	87:  n(16, "Credits, Reversal Amount"),
	88:  n(16, "Debits, Amount"),
	89:  n(16, "Debits, Reversal Amount"),
	90:  n(42, "Original Data Elements"),
	91:  an(1, "File Update Code"),
	92:  n(2, "File Security Code"),
	93:  n(5, "Response Indicator"),
	94:  an(7, "Service Indicator"),
	95:  an(42, "Replacement Amounts"),
	96:  b(8, "Message Security Code"),
	97:  b(17, "Amount, Net Settlement"),
	98:  ans(25, "Payee"),
	99:  llvar(11, "Settlement Institution ID Code"),
	100: llvar(11, "Receiving Institution ID Code"),
	101: llvar(17, "File Name"),
	102: llvar(28, "Account Identification 1"),
	103: llvar(28, "Account Identification 2"),
	104: lllvar(100, "Transaction Description"),
	105: lllvar(999, "Reserved for ISO Use"),
	106: lllvar(999, "Reserved for ISO Use"),
	107: lllvar(999, "Reserved for ISO Use"),
	108: lllvar(999, "Reserved for ISO Use"),
	109: lllvar(999, "Reserved for ISO Use"),
	110: lllvar(999, "Reserved for ISO Use"),
	111: lllvar(999, "Reserved for ISO Use"),
	112: lllvar(999, "Reserved for National Use"),
	113: lllvar(999, "Reserved for National Use"),
	114: lllvar(999, "Reserved for National Use"),
	115: lllvar(999, "Reserved for National Use"),
	116: lllvar(999, "Reserved for National Use"),
	117: lllvar(999, "Reserved for National Use"),
	118: lllvar(999, "Reserved for National Use"),
	119: lllvar(999, "Reserved for National Use"),
	120: lllvar(999, "Reserved for Private Use"),
	121: lllvar(999, "Reserved for Private Use"),
	122: lllvar(999, "Reserved for Private Use"),
	123: lllvar(999, "Reserved for Private Use"),
	124: lllvar(999, "Reserved for Private Use"),
	125: lllvar(999, "Reserved for Private Use"),
	126: lllvar(999, "Reserved for Private Use"),
	127: lllvar(999, "Reserved for Private Use"),
	128: b(8, "Message Authentication Code"),
}

// versionFields holds per-revision overrides of the base dictionary.
var versionFields = map[Version]map[int]FieldDefinition{
	V1987: {},
	V1993: {
		43: llvar(99, "Card Acceptor Name/Location (1993)"),
		52: b(16, "PIN Data (1993)"),
		53: lllvar(48, "Security Related Control Information (1993)"),
		54: lllvar(255, "Additional Amounts (1993)"),
		55: lllvar(255, "ICC System Related Data (1993)"),
	},
	V2003: {
		43: llvar(99, "Card Acceptor Name/Location (2003)"),
		52: b(32, "PIN Data (2003)"),
		53: lllvar(96, "Security Related Control Information (2003)"),
		54: lllvar(512, "Additional Amounts (2003)"),
		55: lllvar(999, "ICC System Related Data (2003)"),
		56: lllvar(999, "Original Data Elements (2003)"),
		57: lllvar(999, "Authorization Life Cycle Code (2003)"),
		58: lllvar(999, "Authorizing Agent Institution ID (2003)"),
		59: lllvar(999, "Transport Data (2003)"),
	},
}

// networkFields holds per-scheme overrides applied on top of the
// version overlay.
var networkFields = map[Network]map[int]FieldDefinition{
	Visa: {
		44:  llvar(99, "Additional Response Data (Visa)"),
		46:  lllvar(204, "Fee Amounts (Visa)"),
		60:  lllvar(999, "Advice Echo Data (Visa)"),
		62:  lllvar(999, "Card Issuer Data (Visa)"),
		63:  lllvar(999, "Network Data (Visa)"),
		104: lllvar(999, "Transaction Specific Data (Visa)"),
		120: lllvar(999, "Record Data (Visa)"),
		121: lllvar(999, "Issuer Authorization Data (Visa)"),
		123: lllvar(999, "Verification Data (Visa)"),
		125: lllvar(999, "POS Configuration Data (Visa)"),
	},
	Mastercard: {
		34:  llvar(28, "PAN Extended (Mastercard)"),
		48:  lllvar(999, "Additional Data - Private (Mastercard)"),
		55:  lllvar(510, "ICC System Related Data (Mastercard)"),
		56:  lllvar(999, "Original Data Elements (Mastercard)"),
		58:  llvar(11, "Authorizing Agent Institution ID (Mastercard)"),
		63:  lllvar(999, "Network Data (Mastercard)"),
		95:  b(28, "Card Issuer Reference Data (Mastercard)"),
		122: lllvar(999, "Card Issuer Reference Data (Mastercard)"),
		126: lllvar(999, "Switch Private Data (Mastercard)"),
	},
	Amex: {
		44:  llvar(99, "Additional Response Data (Amex)"),
		48:  lllvar(999, "Transaction Level Data (Amex)"),
		61:  lllvar(999, "Other Terminal Data (Amex)"),
		63:  lllvar(999, "Card Level Results (Amex)"),
		112: lllvar(999, "Additional Data (Amex)"),
		124: lllvar(999, "Sundry Data (Amex)"),
	},
	Discover: {
		44:  llvar(99, "Additional Response Data (Discover)"),
		62:  lllvar(999, "Network Specific Data (Discover)"),
		95:  b(28, "Card Issuer Reference Data (Discover)"),
		111: lllvar(999, "Network Details (Discover)"),
	},
	JCB: {
		55:  lllvar(255, "ICC System Related Data (JCB)"),
		61:  lllvar(999, "Internal Data (JCB)"),
		62:  lllvar(999, "Private Data (JCB)"),
		114: lllvar(999, "Regional Data (JCB)"),
	},
	UnionPay: {
		33:  llvar(28, "Forwarding Institution ID (UnionPay)"),
		48:  lllvar(999, "Additional Data - Private (UnionPay)"),
		60:  lllvar(999, "Reserved National (UnionPay)"),
		63:  lllvar(999, "Additional Data (UnionPay)"),
		113: lllvar(999, "UnionPay Reserved"),
	},
}

// requiredFields lists the fields a scheme demands in every message.
var requiredFields = map[Network][]int{
	Visa:       {2, 3, 4, 11, 14, 22, 24, 25},
	Mastercard: {2, 3, 4, 11, 22, 24, 25},
	Amex:       {2, 3, 4, 11, 22, 25},
	Discover:   {2, 3, 4, 11, 22},
	JCB:        {2, 3, 4, 11, 22, 25},
	UnionPay:   {2, 3, 4, 11, 22, 25, 49},
}

type defKey struct {
	field   int
	version Version
	network Network
}

// Registry resolves effective field definitions from the base table
// and the version and network overlays. Composite lookups are cached
// per (field, version, network); the registry is safe for concurrent
// use.
type Registry struct {
	base     map[int]FieldDefinition
	versions map[Version]map[int]FieldDefinition
	networks map[Network]map[int]FieldDefinition
	required map[Network][]int

	mu    sync.RWMutex
	cache map[defKey]FieldDefinition
}

// NewRegistry creates a registry over the standard tables.
func NewRegistry() *Registry {
	return &Registry{
		base:     baseFields,
		versions: versionFields,
		networks: networkFields,
		required: requiredFields,
		cache:    make(map[defKey]FieldDefinition, 256),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry over the standard
// schema tables.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Definition returns the effective definition for a field: network
// overlay first, then version overlay, then base.
func (r *Registry) Definition(field int, version Version, network Network) (FieldDefinition, bool) {
	key := defKey{field, version, network}

	r.mu.RLock()
	def, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return def, true
	}

	def, ok = r.resolve(field, version, network)
	if !ok {
		return FieldDefinition{}, false
	}

	r.mu.Lock()
	r.cache[key] = def
	r.mu.Unlock()
	return def, true
}

func (r *Registry) resolve(field int, version Version, network Network) (FieldDefinition, bool) {
	if network != "" {
		if overlay, ok := r.networks[network]; ok {
			if def, ok := overlay[field]; ok {
				return def, true
			}
		}
	}
	if overlay, ok := r.versions[version]; ok {
		if def, ok := overlay[field]; ok {
			return def, true
		}
	}
	def, ok := r.base[field]
	return def, ok
}

// RequiredFields returns the scheme's mandatory field set in ascending
// order. The returned slice is a copy.
func (r *Registry) RequiredFields(network Network) []int {
	req, ok := r.required[network]
	if !ok {
		return nil
	}
	out := make([]int, len(req))
	copy(out, req)
	sort.Ints(out)
	return out
}

// panRule matches a PAN prefix range [lo, hi] (digit strings of equal
// width) to a network, with the scheme's accepted PAN lengths.
type panRule struct {
	lo, hi  string
	network Network
	lengths []int // nil means minLen..maxLen
	minLen  int
	maxLen  int
}

var panRules = []panRule{
	{lo: "4", hi: "4", network: Visa, lengths: []int{13, 16, 19}},
	{lo: "51", hi: "55", network: Mastercard, lengths: []int{16}},
	{lo: "2221", hi: "2720", network: Mastercard, lengths: []int{16}},
	{lo: "34", hi: "34", network: Amex, lengths: []int{15}},
	{lo: "37", hi: "37", network: Amex, lengths: []int{15}},
	{lo: "6011", hi: "6011", network: Discover, minLen: 16, maxLen: 19},
	{lo: "644", hi: "649", network: Discover, minLen: 16, maxLen: 19},
	{lo: "65", hi: "65", network: Discover, minLen: 16, maxLen: 19},
	{lo: "3528", hi: "3589", network: JCB, minLen: 16, maxLen: 19},
	{lo: "62", hi: "62", network: UnionPay, minLen: 16, maxLen: 19},
}

func (rule panRule) lengthOK(n int) bool {
	if rule.lengths != nil {
		for _, l := range rule.lengths {
			if n == l {
				return true
			}
		}
		return false
	}
	return n >= rule.minLen && n <= rule.maxLen
}

// DetectNetwork identifies the card scheme from the PAN's leading
// digits. The longest matching prefix wins; the match must also
// satisfy the scheme's PAN length bounds.
func (r *Registry) DetectNetwork(pan string) (Network, bool) {
	for _, c := range pan {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	best := -1
	for i, rule := range panRules {
		w := len(rule.lo)
		if len(pan) < w {
			continue
		}
		prefix := pan[:w]
		if prefix < rule.lo || prefix > rule.hi {
			continue
		}
		if best < 0 || w > len(panRules[best].lo) {
			best = i
		}
	}
	if best < 0 || !panRules[best].lengthOK(len(pan)) {
		return "", false
	}
	return panRules[best].network, true
}

// DetectNetwork identifies the card scheme of a PAN using the standard
// prefix table.
func DetectNetwork(pan string) (Network, bool) {
	return defaultRegistry.DetectNetwork(pan)
}
