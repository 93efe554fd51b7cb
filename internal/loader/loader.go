// Package loader reads delimited text, XLSX workbooks and JSON record arrays into
// tables, inferring a kind for every column.
package loader

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// Options controls how source files are read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (.tsv is tab, otherwise ',').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selection for .xlsx. SheetName wins; SheetIndex is 1-based.
	SheetName  string
	SheetIndex int
	// MissingTokens are cell values read as missing, compared after trimming.
	MissingTokens []string
}

// DefaultMissingTokens mirrors the usual NA spellings.
var DefaultMissingTokens = []string{"", "NA", "NaN", "null", "NULL", "nil", "None"}

func DefaultOptions() Options {
	return Options{MissingTokens: DefaultMissingTokens}
}

// Load reads path according to its extension.
func Load(path string, opt Options) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return LoadCSV(path, opt)
	case ".xlsx":
		return LoadXLSX(path, opt)
	case ".json":
		return LoadJSON(path, opt)
	default:
		return nil, table.Invalid("load", path, "unsupported file type %q (use .csv, .tsv, .txt, .xlsx or .json)", filepath.Ext(path))
	}
}

// fromRecords builds a table from a header and string rows. Short rows are padded
// with missing cells; cells beyond the header are ignored.
func fromRecords(header []string, rows [][]string, opt Options) (*table.Table, error) {
	names := dedupeHeader(header)
	missing := missingSet(opt)
	cols := make([]*table.Column, len(names))
	for j, name := range names {
		raw := make([]*string, len(rows))
		for i, row := range rows {
			if j >= len(row) {
				continue
			}
			if _, miss := missing[strings.TrimSpace(row[j])]; miss {
				continue
			}
			v := row[j]
			raw[i] = &v
		}
		kind, cells := inferColumn(raw, opt)
		c, err := table.NewColumn(name, kind, cells)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return table.New(cols...)
}

func missingSet(opt Options) map[string]struct{} {
	tokens := opt.MissingTokens
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	set := make(map[string]struct{}, len(tokens)+1)
	set[""] = struct{}{}
	for _, t := range tokens {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	return set
}

// dedupeHeader trims names, replaces empty ones with "Unnamed: i" and suffixes
// repeats with .1, .2, ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			for n := 1; ; n++ {
				cand := fmt.Sprintf("%s.%d", name, n)
				if !used[cand] {
					name = cand
					break
				}
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// inferColumn picks the narrowest kind covering every present cell:
// integer, float, boolean (true/false only), datetime, then text.
func inferColumn(raw []*string, opt Options) (table.Kind, []any) {
	candidates := []struct {
		kind  table.Kind
		parse func(string) (any, bool)
	}{
		{table.KindInteger, func(s string) (any, bool) { return parseInteger(s, opt) }},
		{table.KindFloat, func(s string) (any, bool) { return parseFloat(s, opt) }},
		{table.KindBool, parseStrictBool},
		{table.KindDatetime, func(s string) (any, bool) { return table.ParseTime(s) }},
	}
	present := 0
	for _, p := range raw {
		if p != nil {
			present++
		}
	}
	cells := make([]any, len(raw))
	if present > 0 {
	next:
		for _, cand := range candidates {
			for i, p := range raw {
				if p == nil {
					cells[i] = nil
					continue
				}
				v, ok := cand.parse(strings.TrimSpace(*p))
				if !ok {
					continue next
				}
				cells[i] = v
			}
			return cand.kind, cells
		}
	}
	for i, p := range raw {
		if p == nil {
			cells[i] = nil
		} else {
			cells[i] = *p
		}
	}
	return table.KindText, cells
}

func parseInteger(s string, opt Options) (any, bool) {
	raw := s
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(opt.ThousandsSeparator), "")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func parseFloat(s string, opt Options) (any, bool) {
	f, ok := parseNumeric(s, opt)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return f, true
}

func parseStrictBool(s string) (any, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return nil, false
}

// parseNumeric reads s as a number honouring the decimal and thousands separators.
// Percent signs are dropped. With no decimal separator configured the last of ',' or
// '.' is taken as the decimal mark.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
