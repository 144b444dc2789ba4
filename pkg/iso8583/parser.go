package iso8583

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583/emv"
)

// Parser decodes wire messages into Message values. A Parser holds only
// immutable configuration and is safe for concurrent use; per-call
// state lives on the stack.
type Parser struct {
	registry *Registry
	version  Version
	network  Network
	pool     *MessagePool
	logger   *zap.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserRegistry substitutes a custom schema registry.
func WithParserRegistry(r *Registry) ParserOption {
	return func(p *Parser) { p.registry = r }
}

// WithParserVersion sets the protocol revision the parser assumes.
func WithParserVersion(v Version) ParserOption {
	return func(p *Parser) { p.version = v }
}

// WithParserNetwork pins the card scheme instead of detecting it from
// field 2.
func WithParserNetwork(n Network) ParserOption {
	return func(p *Parser) { p.network = n }
}

// WithParserPool makes the parser acquire result messages from a pool.
func WithParserPool(pool *MessagePool) ParserOption {
	return func(p *Parser) { p.pool = pool }
}

// WithParserLogger attaches a logger for per-field debug tracing.
func WithParserLogger(logger *zap.Logger) ParserOption {
	return func(p *Parser) { p.logger = logger }
}

// NewParser creates a parser for the given options, defaulting to the
// standard registry, version 1987, no pinned network, and no logging.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		registry: defaultRegistry,
		version:  V1987,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes a framed ISO 8583 payload. The input is never mutated;
// on any failure the partial message is abandoned and a *ParseError is
// returned.
func (p *Parser) Parse(data []byte) (*Message, error) {
	return p.parse(string(data), p.network)
}

// ParseWithNetwork decodes a payload under a caller-supplied card
// scheme, overriding both detection and the parser's configured
// network.
func (p *Parser) ParseWithNetwork(data []byte, network Network) (*Message, error) {
	return p.parse(string(data), network)
}

func (p *Parser) parse(raw string, network Network) (*Message, error) {
	if len(raw) < 4 {
		return nil, &ParseError{Err: ErrTruncatedMTI}
	}
	mti := raw[:4]
	if !isDigits(mti) {
		return nil, &ParseError{Err: fmt.Errorf("%w: %q is not decimal", ErrInvalidMTI, mti)}
	}
	pos := 4

	if len(raw) < pos+primaryBitmapHexLen {
		return nil, &ParseError{Err: fmt.Errorf("%w: truncated primary bitmap", ErrInvalidBitmap)}
	}
	bitmapLen := primaryBitmapHexLen
	if hasSecondaryIndicator(raw[pos:]) {
		if len(raw) < pos+fullBitmapHexLen {
			return nil, &ParseError{Err: fmt.Errorf("%w: truncated secondary bitmap", ErrInvalidBitmap)}
		}
		bitmapLen = fullBitmapHexLen
	}
	bitmap := strings.ToUpper(raw[pos : pos+bitmapLen])
	pos += bitmapLen

	present, err := PresentFields(bitmap)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	p.logger.Debug("parsed header",
		zap.String("mti", mti),
		zap.String("bitmap", bitmap),
		zap.Ints("fields", present))

	msg := p.newMessage()
	msg.MTI = mti
	msg.Bitmap = bitmap
	msg.Version = p.version
	msg.Raw = raw

	for _, num := range present {
		def, ok := p.registry.Definition(num, p.version, network)
		if !ok {
			return nil, &ParseError{Field: num, Err: ErrUnknownField}
		}
		value, next, err := decodeField(raw, pos, num, def)
		if err != nil {
			return nil, err
		}
		msg.Fields[num] = value
		pos = next
	}

	if pos != len(raw) {
		return nil, &ParseError{Err: fmt.Errorf("%w: %d bytes", ErrTrailingGarbage, len(raw)-pos)}
	}

	if network == "" {
		if pan, ok := msg.Fields[2]; ok {
			if detected, ok := p.registry.DetectNetwork(pan); ok {
				network = detected
				p.logger.Debug("detected network", zap.String("network", string(detected)))
			}
		}
	}
	msg.Network = network

	if icc, ok := msg.Fields[55]; ok {
		tags, err := emv.Parse(icc)
		if err != nil {
			return nil, &ParseError{Field: 55, Err: err}
		}
		msg.EMV = tags
	}

	return msg, nil
}

// ParseLines decodes one hex-framed message per line, skipping blank
// lines. Only a trailing carriage return is removed from a line, so pad
// spaces at the end of the last field are kept. The first failure
// aborts with the offending line number.
func (p *Parser) ParseLines(data string) ([]*Message, error) {
	var messages []*Message
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		msg, err := p.Parse([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (p *Parser) newMessage() *Message {
	if p.pool != nil {
		return p.pool.Acquire()
	}
	return NewMessage("")
}
