package iso8583

import (
	"fmt"
	"sort"
)

// Rule names carried by diagnostics.
const (
	RuleMTI       = "mti"
	RuleBitmap    = "bitmap"
	RuleCharClass = "char_class"
	RuleLength    = "length"
	RuleLuhn      = "pan_luhn"
	RuleRequired  = "required"
	RuleSchema    = "schema"
)

// Diagnostic is one non-fatal validation finding. Field is 0 for
// message-level findings (MTI, bitmap).
type Diagnostic struct {
	Field   int
	Rule    string
	Message string
}

func (d Diagnostic) String() string {
	if d.Field > 0 {
		return fmt.Sprintf("field %d (%s): %s", d.Field, d.Rule, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Rule, d.Message)
}

// Validator checks messages against the schema and reports all
// findings at once rather than failing on the first. It holds only the
// immutable registry and is safe for concurrent use.
type Validator struct {
	registry *Registry
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorRegistry substitutes a custom schema registry.
func WithValidatorRegistry(r *Registry) ValidatorOption {
	return func(v *Validator) { v.registry = r }
}

// NewValidator creates a validator over the standard registry.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{registry: defaultRegistry}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every check and returns the collected diagnostics; an
// empty slice means the message is clean. The message is not mutated.
func (v *Validator) Validate(msg *Message) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, v.checkMTI(msg.MTI)...)

	if msg.Bitmap != "" {
		diags = append(diags, v.checkBitmap(msg)...)
	}

	version := msg.Version
	if version == "" {
		version = V1987
	}

	for _, num := range msg.FieldNumbers() {
		value := msg.Fields[num]
		def, ok := v.registry.Definition(num, version, msg.Network)
		if !ok {
			diags = append(diags, Diagnostic{Field: num, Rule: RuleSchema, Message: "no definition in effective schema"})
			continue
		}
		if !charClassOK(value, def.Type) {
			diags = append(diags, Diagnostic{
				Field:   num,
				Rule:    RuleCharClass,
				Message: fmt.Sprintf("value does not match class %q", def.Type),
			})
		}
		diags = append(diags, v.checkLength(num, value, def)...)
	}

	if pan, ok := msg.Fields[2]; ok {
		if !isDigits(pan) || !luhnOK(pan) {
			diags = append(diags, Diagnostic{Field: 2, Rule: RuleLuhn, Message: "PAN fails Luhn checksum"})
		}
	}

	// The required-field overlay applies once a network is known, i.e.
	// carried on the message (caller-supplied, or stamped by the parser
	// after detection). A draft with no network is validated against
	// the base schema only.
	if msg.Network != "" {
		diags = append(diags, v.checkRequired(msg)...)
	}

	return diags
}

func (v *Validator) checkRequired(msg *Message) []Diagnostic {
	var diags []Diagnostic
	for _, req := range v.registry.RequiredFields(msg.Network) {
		if _, ok := msg.Fields[req]; !ok {
			diags = append(diags, Diagnostic{
				Field:   req,
				Rule:    RuleRequired,
				Message: fmt.Sprintf("field required by %s is missing", msg.Network),
			})
		}
	}
	return diags
}

func (v *Validator) checkMTI(mti string) []Diagnostic {
	if len(mti) != 4 || !isDigits(mti) {
		return []Diagnostic{{Rule: RuleMTI, Message: "MTI must be exactly four decimal digits"}}
	}
	var diags []Diagnostic
	if mti[0] > '2' {
		diags = append(diags, Diagnostic{Rule: RuleMTI, Message: "MTI version digit must be 0, 1 or 2"})
	}
	if mti[1] == '0' || mti[1] == '7' {
		diags = append(diags, Diagnostic{Rule: RuleMTI, Message: "MTI class digit must not be 0 or 7"})
	}
	return diags
}

func (v *Validator) checkBitmap(msg *Message) []Diagnostic {
	present, err := PresentFields(msg.Bitmap)
	if err != nil {
		return []Diagnostic{{Rule: RuleBitmap, Message: err.Error()}}
	}
	want := msg.FieldNumbers()
	if !equalInts(present, want) {
		return []Diagnostic{{
			Rule:    RuleBitmap,
			Message: fmt.Sprintf("bitmap fields %v do not match present fields %v", present, want),
		}}
	}
	return nil
}

func (v *Validator) checkLength(num int, value string, def FieldDefinition) []Diagnostic {
	if def.IsVariable() {
		if len(value) > def.MaxLength {
			return []Diagnostic{{
				Field:   num,
				Rule:    RuleLength,
				Message: fmt.Sprintf("length %d exceeds maximum %d", len(value), def.MaxLength),
			}}
		}
		if def.MinLength > 0 && len(value) < def.MinLength {
			return []Diagnostic{{
				Field:   num,
				Rule:    RuleLength,
				Message: fmt.Sprintf("length %d below minimum %d", len(value), def.MinLength),
			}}
		}
		return nil
	}
	if len(value) != wireWidth(def) {
		return []Diagnostic{{
			Field:   num,
			Rule:    RuleLength,
			Message: fmt.Sprintf("length %d, want exactly %d", len(value), wireWidth(def)),
		}}
	}
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// luhnOK verifies the mod-10 checksum: traverse digits right to left,
// double every second digit (subtracting 9 when the double exceeds 9),
// and check the sum is a multiple of 10.
func luhnOK(pan string) bool {
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidProcessingCode reports whether a field 3 value is a well-formed
// six-digit processing code.
func ValidProcessingCode(code string) bool {
	return len(code) == 6 && isDigits(code)
}
