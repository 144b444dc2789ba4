package iso8583

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583/emv"
)

// Builder encodes Message drafts into wire bytes. A Builder holds only
// immutable configuration and is safe for concurrent use.
type Builder struct {
	registry  *Registry
	version   Version
	validator *Validator
	logger    *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderRegistry substitutes a custom schema registry.
func WithBuilderRegistry(r *Registry) BuilderOption {
	return func(b *Builder) { b.registry = r }
}

// WithBuilderVersion sets the revision assumed for drafts that do not
// carry one.
func WithBuilderVersion(v Version) BuilderOption {
	return func(b *Builder) { b.version = v }
}

// WithBuilderLogger attaches a logger.
func WithBuilderLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a builder over the standard registry.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		registry: defaultRegistry,
		version:  V1987,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.validator = NewValidator(WithValidatorRegistry(b.registry))
	return b
}

// Build validates a draft and emits its wire form: MTI, derived bitmap,
// then field bodies in ascending field number. The draft itself is not
// mutated. A draft with any validation diagnostic is refused with a
// *BuildError; the builder never emits a known-invalid message.
func (b *Builder) Build(msg *Message) ([]byte, error) {
	version := msg.Version
	if version == "" {
		version = b.version
	}

	// Canonicalise field values first (padding, case) so validation
	// sees the exact bytes that would go on the wire.
	draft := &Message{
		MTI:     msg.MTI,
		Fields:  make(map[int]string, len(msg.Fields)),
		Network: msg.Network,
		Version: version,
	}

	var diags []Diagnostic
	nums := make([]int, 0, len(msg.Fields))
	for num := range msg.Fields {
		if num < 2 || num == 65 || num > 128 {
			if num != 0 { // legacy MTI slot is tolerated, never emitted
				diags = append(diags, Diagnostic{Field: num, Rule: RuleSchema, Message: "not a data field"})
			}
			continue
		}
		nums = append(nums, num)
	}
	sort.Ints(nums)

	for _, num := range nums {
		def, ok := b.registry.Definition(num, version, msg.Network)
		if !ok {
			diags = append(diags, Diagnostic{Field: num, Rule: RuleSchema, Message: "no definition in effective schema"})
			continue
		}
		value, err := formatValue(num, msg.Fields[num], def)
		if err != nil {
			diags = append(diags, Diagnostic{Field: num, Rule: RuleLength, Message: err.Error()})
			continue
		}
		draft.Fields[num] = value
	}

	if field55, ok := draft.Fields[55]; ok && msg.EMV == nil {
		// Sanity-parse caller-supplied ICC data so a bad field 55 is
		// caught here rather than by the receiving side.
		if _, err := emv.Parse(field55); err != nil {
			diags = append(diags, Diagnostic{Field: 55, Rule: RuleCharClass, Message: err.Error()})
		}
	} else if msg.EMV != nil {
		encoded, err := emv.Build(msg.EMV)
		if err != nil {
			diags = append(diags, Diagnostic{Field: 55, Rule: RuleCharClass, Message: err.Error()})
		} else {
			if _, present := draft.Fields[55]; !present {
				draft.Fields[55] = encoded
				nums = append(nums, 55)
				sort.Ints(nums)
			}
		}
	}

	diags = append(diags, b.validator.Validate(draft)...)
	if len(diags) > 0 {
		b.logger.Debug("build refused", zap.Int("diagnostics", len(diags)))
		return nil, &BuildError{Diagnostics: diags}
	}

	var body strings.Builder
	for _, num := range nums {
		def, _ := b.registry.Definition(num, version, msg.Network)
		wire, err := encodeField(num, draft.Fields[num], def)
		if err != nil {
			return nil, &BuildError{Diagnostics: []Diagnostic{{Field: num, Rule: RuleLength, Message: err.Error()}}}
		}
		body.WriteString(wire)
	}

	bitmap := EncodeBitmap(nums)
	out := msg.MTI + bitmap + body.String()
	b.logger.Debug("built message",
		zap.String("mti", msg.MTI),
		zap.String("bitmap", bitmap),
		zap.Int("length", len(out)))
	return []byte(out), nil
}
