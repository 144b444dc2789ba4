package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583"
	"github.com/bassrehab/ISO8583-Simulator/pkg/iso8583/emv"
)

// jsonMessage is the JSON projection of a parsed message.
type jsonMessage struct {
	MTI     string            `json:"mti"`
	Bitmap  string            `json:"bitmap,omitempty"`
	Network string            `json:"network,omitempty"`
	Version string            `json:"version"`
	Fields  map[string]string `json:"fields"`
	EMV     []jsonTag         `json:"emv,omitempty"`
}

type jsonTag struct {
	Tag   string `json:"tag"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func renderMessage(w io.Writer, msg *iso8583.Message, format string) error {
	switch format {
	case "json":
		out := jsonMessage{
			MTI:     msg.MTI,
			Bitmap:  msg.Bitmap,
			Network: string(msg.Network),
			Version: string(msg.Version),
			Fields:  make(map[string]string, len(msg.Fields)),
		}
		for _, num := range sortedFieldKeys(msg.Fields) {
			out.Fields[strconv.Itoa(num)] = msg.Fields[num]
		}
		if msg.EMV != nil {
			for _, tv := range msg.EMV.Items() {
				out.EMV = append(out.EMV, jsonTag{Tag: tv.Tag, Name: emv.TagName(tv.Tag), Value: tv.Value})
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "raw":
		for _, num := range sortedFieldKeys(msg.Fields) {
			if _, err := fmt.Fprintf(w, "%d=%s\n", num, msg.Fields[num]); err != nil {
				return err
			}
		}
		return nil

	default:
		return renderMessageTable(w, msg)
	}
}

func renderMessageTable(w io.Writer, msg *iso8583.Message) error {
	fmt.Fprintf(w, "MTI:     %s\n", msg.MTI)
	fmt.Fprintf(w, "Bitmap:  %s\n", msg.Bitmap)
	fmt.Fprintf(w, "Version: %s\n", msg.Version)
	if msg.Network != "" {
		fmt.Fprintf(w, "Network: %s\n", msg.Network)
	}
	fmt.Fprintln(w)

	registry := iso8583.DefaultRegistry()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tDESCRIPTION\tLEN\tVALUE")
	for _, num := range sortedFieldKeys(msg.Fields) {
		desc := ""
		if def, ok := registry.Definition(num, msg.Version, msg.Network); ok {
			desc = def.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", num, desc, len(msg.Fields[num]), msg.Fields[num])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if msg.EMV != nil && msg.EMV.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "EMV (field 55):")
		etw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(etw, "TAG\tNAME\tVALUE")
		for _, tv := range msg.EMV.Items() {
			fmt.Fprintf(etw, "%s\t%s\t%s\n", tv.Tag, emv.TagName(tv.Tag), tv.Value)
		}
		if err := etw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func renderDiagnostics(w io.Writer, diags []iso8583.Diagnostic, format string) error {
	switch format {
	case "json":
		type jsonDiag struct {
			Field   int    `json:"field"`
			Rule    string `json:"rule"`
			Message string `json:"message"`
		}
		out := make([]jsonDiag, len(diags))
		for i, d := range diags {
			out[i] = jsonDiag{Field: d.Field, Rule: d.Rule, Message: d.Message}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "raw":
		for _, d := range diags {
			if _, err := fmt.Fprintln(w, d.String()); err != nil {
				return err
			}
		}
		return nil

	default:
		if len(diags) == 0 {
			_, err := fmt.Fprintln(w, "message is valid")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tRULE\tPROBLEM")
		for _, d := range diags {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", d.Field, d.Rule, d.Message)
		}
		return tw.Flush()
	}
}
