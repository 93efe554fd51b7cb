package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// LoadJSON reads a JSON array of flat objects. Column order follows the first
// appearance of each key; absent keys are missing cells.
func LoadJSON(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()
	return ReadJSON(f, opt)
}

// ReadJSON decodes records from r. Numbers, booleans and strings keep their JSON
// kind where a whole column agrees; string columns go through the same inference
// as CSV cells. Nested values are kept as their JSON text.
func ReadJSON(r io.Reader, opt Options) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var keys []string
	index := map[string]int{}
	var records []map[string]any
	for dec.More() {
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
		rec, err := readObject(dec, func(k string) {
			if _, ok := index[k]; !ok {
				index[k] = len(keys)
				keys = append(keys, k)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}

	names := dedupeHeader(keys)
	missing := missingSet(opt)
	cols := make([]*table.Column, len(keys))
	for j, key := range keys {
		vals := make([]any, len(records))
		for i, rec := range records {
			v := rec[key]
			if s, ok := v.(string); ok {
				if _, miss := missing[strings.TrimSpace(s)]; miss {
					v = nil
				}
			}
			vals[i] = v
		}
		kind, cells := inferJSONColumn(vals, opt)
		c, err := table.NewColumn(names[j], kind, cells)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return table.New(cols...)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return table.Invalid("load json", fmt.Sprint(tok), "expected %q", string(want))
	}
	return nil
}

func readObject(dec *json.Decoder, seen func(string)) (map[string]any, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	rec := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		v, err := scalar(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		seen(key)
		rec[key] = v
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return rec, nil
}

// scalar returns nil, bool, json.Number or string. Objects and arrays come back as
// their compact text.
func scalar(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}
	var v any
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func inferJSONColumn(vals []any, opt Options) (table.Kind, []any) {
	var nums, bools, strs, present int
	for _, v := range vals {
		switch v.(type) {
		case nil:
			continue
		case json.Number:
			nums++
		case bool:
			bools++
		case string:
			strs++
		}
		present++
	}
	cells := make([]any, len(vals))
	switch {
	case present > 0 && nums == present:
		allInt := true
		for _, v := range vals {
			if n, ok := v.(json.Number); ok {
				if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
					allInt = false
					break
				}
			}
		}
		for i, v := range vals {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if allInt {
				cells[i], _ = n.Int64()
			} else {
				cells[i], _ = n.Float64()
			}
		}
		if allInt {
			return table.KindInteger, cells
		}
		return table.KindFloat, cells
	case present > 0 && bools == present:
		copy(cells, vals)
		return table.KindBool, cells
	case strs == present:
		raw := make([]*string, len(vals))
		for i, v := range vals {
			if s, ok := v.(string); ok {
				raw[i] = &s
			}
		}
		return inferColumn(raw, opt)
	}
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
		case json.Number:
			cells[i] = x.String()
		default:
			cells[i] = table.FormatValue(x)
		}
	}
	return table.KindText, cells
}
