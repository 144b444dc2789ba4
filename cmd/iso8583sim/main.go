// Command iso8583sim is the CLI surface over the ISO 8583 codec:
// parse, build, validate and generate messages. The codec does all the
// work; this layer only shuttles hex and JSON in and out.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bassrehab/ISO8583-Simulator/pkg/config"
	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583"
	"github.com/bassrehab/ISO8583-Simulator/pkg/monitoring"
	"github.com/bassrehab/ISO8583-Simulator/pkg/testutil"
)

// Exit codes of the CLI contract.
const (
	exitOK         = 0
	exitParseFail  = 1
	exitValidation = 2
	exitBuildFail  = 3
	exitIO         = 4
)

// exitError carries the process exit code alongside the cause.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

var (
	flagConfig      string
	flagFormat      string
	flagNetwork     string
	flagVersion     string
	flagVerbose     bool
	flagMetricsAddr string

	logger  *zap.Logger
	cfg     *config.Config
	metrics *monitoring.Metrics
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitIO)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "iso8583sim",
		Short:         "ISO 8583 message simulator - parse, build and validate ISO 8583 messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "YAML config file")
	pf.StringVarP(&flagFormat, "format", "f", "", "output format (table, json, raw)")
	pf.StringVarP(&flagNetwork, "network", "n", "", "card network (VISA, MASTERCARD, AMEX, DISCOVER, JCB, UNIONPAY)")
	pf.StringVarP(&flagVersion, "version", "v", "", "ISO 8583 version (1987, 1993, 2003)")
	pf.BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newParseCmd(),
		newBuildCmd(),
		newValidateCmd(),
		newGenerateCmd(),
		newVersionCmd(),
	)
	return root
}

func setup(cmd *cobra.Command) error {
	var err error
	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return &exitError{code: exitIO, err: err}
		}
	} else {
		logger = zap.NewNop()
	}

	cfg = config.Default()
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return &exitError{code: exitIO, err: err}
		}
	}
	if flagFormat == "" {
		flagFormat = cfg.OutputFormat
	}
	if flagVersion == "" {
		flagVersion = cfg.DefaultVersion
	}
	if flagNetwork == "" {
		flagNetwork = cfg.DefaultNetwork
	}
	if flagMetricsAddr == "" {
		flagMetricsAddr = cfg.MetricsAddr
	}

	switch flagFormat {
	case "table", "json", "raw":
	default:
		return &exitError{code: exitIO, err: fmt.Errorf("unknown format %q", flagFormat)}
	}

	reg := prometheus.NewRegistry()
	metrics = monitoring.NewMetrics("iso8583sim", reg)
	if flagMetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

func isoVersion() iso8583.Version {
	switch flagVersion {
	case "1993":
		return iso8583.V1993
	case "2003":
		return iso8583.V2003
	default:
		return iso8583.V1987
	}
}

func isoNetwork() iso8583.Network {
	return iso8583.Network(strings.ToUpper(flagNetwork))
}

func newParser() *iso8583.Parser {
	opts := []iso8583.ParserOption{
		iso8583.WithParserVersion(isoVersion()),
		iso8583.WithParserLogger(logger),
	}
	if flagNetwork != "" {
		opts = append(opts, iso8583.WithParserNetwork(isoNetwork()))
	}
	return iso8583.NewParser(opts...)
}

// readMessageArg resolves the message text: a literal argument, or
// stdin when the argument is absent or "-".
func readMessageArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", &exitError{code: exitIO, err: err}
	}
	return strings.TrimSpace(string(data)), nil
}

func newParseCmd() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parse a raw ISO 8583 message (argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := newParser()

			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return &exitError{code: exitIO, err: err}
				}
				msgs, err := parser.ParseLines(string(data))
				if err != nil {
					metrics.ParseErrors.WithLabelValues(errorKind(err)).Inc()
					return &exitError{code: exitParseFail, err: err}
				}
				for _, msg := range msgs {
					metrics.ParseTotal.WithLabelValues(networkLabel(msg.Network)).Inc()
					if err := renderMessage(cmd.OutOrStdout(), msg, flagFormat); err != nil {
						return &exitError{code: exitIO, err: err}
					}
				}
				return nil
			}

			raw, err := readMessageArg(args)
			if err != nil {
				return err
			}
			start := time.Now()
			msg, err := parser.Parse([]byte(raw))
			if err != nil {
				metrics.ParseErrors.WithLabelValues(errorKind(err)).Inc()
				return &exitError{code: exitParseFail, err: err}
			}
			metrics.ParseTotal.WithLabelValues(networkLabel(msg.Network)).Inc()
			metrics.ParseDuration.WithLabelValues(networkLabel(msg.Network)).Observe(time.Since(start).Seconds())
			metrics.MessageSize.WithLabelValues("in").Observe(float64(len(raw)))
			return renderMessage(cmd.OutOrStdout(), msg, flagFormat)
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "parse one message per line from a file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [message]",
		Short: "Parse and validate a message, reporting every diagnostic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readMessageArg(args)
			if err != nil {
				return err
			}
			msg, err := newParser().Parse([]byte(raw))
			if err != nil {
				metrics.ParseErrors.WithLabelValues(errorKind(err)).Inc()
				return &exitError{code: exitParseFail, err: err}
			}
			validator := iso8583.NewValidator()
			diags := validator.Validate(msg)
			metrics.ValidateTotal.Inc()
			metrics.DiagnosticsSum.Add(float64(len(diags)))

			if err := renderDiagnostics(cmd.OutOrStdout(), diags, flagFormat); err != nil {
				return &exitError{code: exitIO, err: err}
			}
			if len(diags) > 0 {
				return &exitError{code: exitValidation, err: fmt.Errorf("%d validation diagnostics", len(diags))}
			}
			return nil
		},
	}
	return cmd
}

func newBuildCmd() *cobra.Command {
	var (
		mti        string
		fieldsFile string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a wire message from an MTI and a JSON field map",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := loadDraft(mti, fieldsFile)
			if err != nil {
				return err
			}
			if flagNetwork != "" {
				msg.Network = isoNetwork()
			}
			msg.Version = isoVersion()

			builder := iso8583.NewBuilder(
				iso8583.WithBuilderVersion(isoVersion()),
				iso8583.WithBuilderLogger(logger),
			)
			start := time.Now()
			wire, err := builder.Build(msg)
			if err != nil {
				metrics.BuildErrors.Inc()
				var be *iso8583.BuildError
				if errors.As(err, &be) {
					_ = renderDiagnostics(cmd.OutOrStdout(), be.Diagnostics, flagFormat)
				}
				return &exitError{code: exitBuildFail, err: err}
			}
			metrics.BuildTotal.WithLabelValues(networkLabel(msg.Network)).Inc()
			metrics.BuildDuration.WithLabelValues(networkLabel(msg.Network)).Observe(time.Since(start).Seconds())
			metrics.MessageSize.WithLabelValues("out").Observe(float64(len(wire)))
			fmt.Fprintln(cmd.OutOrStdout(), string(wire))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mti, "mti", "m", "0100", "message type indicator")
	cmd.Flags().StringVar(&fieldsFile, "fields", "", "JSON file mapping field numbers to values")
	_ = cmd.MarkFlagRequired("fields")
	return cmd
}

// loadDraft reads a JSON object of field-number → value into a draft.
func loadDraft(mti, path string) (*iso8583.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &exitError{code: exitIO, err: err}
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &exitError{code: exitIO, err: fmt.Errorf("decode field map: %w", err)}
	}
	msg := iso8583.NewMessage(mti)
	for key, value := range raw {
		num, err := strconv.Atoi(key)
		if err != nil {
			return nil, &exitError{code: exitIO, err: fmt.Errorf("field key %q is not a number", key)}
		}
		if err := msg.SetField(num, value); err != nil {
			return nil, &exitError{code: exitBuildFail, err: err}
		}
	}
	return msg, nil
}

func newGenerateCmd() *cobra.Command {
	var (
		network string
		count   int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample authorization messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testutil.NewTestDataGenerator()
			if seed != 0 {
				gen = testutil.NewSeededGenerator(seed)
			}
			builder := iso8583.NewBuilder(iso8583.WithBuilderLogger(logger))

			net := iso8583.Network(strings.ToUpper(network))
			for i := 0; i < count; i++ {
				msg := gen.GenerateAuthorization(net)
				wire, err := builder.Build(msg)
				if err != nil {
					metrics.BuildErrors.Inc()
					return &exitError{code: exitBuildFail, err: err}
				}
				metrics.BuildTotal.WithLabelValues(networkLabel(net)).Inc()
				fmt.Fprintln(cmd.OutOrStdout(), string(wire))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&network, "card-network", "N", "VISA", "scheme to generate for")
	cmd.Flags().IntVar(&count, "count", 1, "number of messages")
	cmd.Flags().Int64Var(&seed, "seed", 0, "fixed RNG seed (0 uses the clock)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "iso8583sim v1.0.0")
		},
	}
}

func networkLabel(n iso8583.Network) string {
	if n == "" {
		return "unknown"
	}
	return string(n)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, iso8583.ErrTruncatedMTI):
		return "truncated_mti"
	case errors.Is(err, iso8583.ErrInvalidMTI):
		return "invalid_mti"
	case errors.Is(err, iso8583.ErrInvalidBitmap):
		return "invalid_bitmap"
	case errors.Is(err, iso8583.ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, iso8583.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, iso8583.ErrInvalidCharClass):
		return "invalid_char_class"
	case errors.Is(err, iso8583.ErrTrailingGarbage):
		return "trailing_garbage"
	default:
		return "other"
	}
}

// sortedFieldKeys is shared by the renderers.
func sortedFieldKeys(fields map[int]string) []int {
	keys := make([]int, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
