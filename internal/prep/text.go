package prep

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

var (
	nonAlnumSpace = regexp.MustCompile(`[^A-Za-z0-9\s\p{Zs}]`)
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	nonNameChar   = regexp.MustCompile(`[^a-z0-9_]`)
)

// CleanText removes every character outside [A-Za-z0-9] and whitespace (Unicode
// space separators included) from the named text columns, then trims surrounding
// whitespace. Missing cells stay missing.
func CleanText(t *table.Table, columns []string) (*table.Table, error) {
	for _, n := range columns {
		c, ok := t.Column(n)
		if !ok {
			return nil, table.Invalid("clean text", n, "no such column")
		}
		if c.Kind() != table.KindText {
			return nil, table.Invalid("clean text", n, "column is %s, not text", c.Kind())
		}
	}
	out := t
	for _, n := range columns {
		c, _ := t.Column(n)
		cells := c.Values()
		for i, v := range cells {
			if s, ok := v.(string); ok {
				cells[i] = strings.TrimSpace(nonAlnumSpace.ReplaceAllString(s, ""))
			}
		}
		col, err := table.NewColumn(n, table.KindText, cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StandardizeName trims, lower-cases, joins whitespace runs with "_" and drops any
// remaining character outside [a-z0-9_]. An empty result becomes "column".
func StandardizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = nonNameChar.ReplaceAllString(s, "")
	if s == "" {
		return "column"
	}
	return s
}

// StandardizeColumnNames applies StandardizeName to every column. When two columns
// map to the same name the first keeps it and later ones get "_2", "_3", ...,
// skipping any name another column produces on its own.
func StandardizeColumnNames(t *table.Table) (*table.Table, error) {
	names := t.Names()
	base := make([]string, len(names))
	natural := make(map[string]struct{}, len(names))
	for i, n := range names {
		base[i] = StandardizeName(n)
		natural[base[i]] = struct{}{}
	}
	used := make(map[string]struct{}, len(names))
	out := make([]string, len(names))
	for i, b := range base {
		name := b
		if _, taken := used[name]; taken {
			for k := 2; ; k++ {
				cand := fmt.Sprintf("%s_%d", b, k)
				_, isNatural := natural[cand]
				_, isUsed := used[cand]
				if !isNatural && !isUsed {
					name = cand
					break
				}
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return t.WithNames(out)
}

// RenameColumns renames columns by old -> new mapping. Unknown old names and
// renames that would produce duplicate names are rejected.
func RenameColumns(t *table.Table, mapping map[string]string) (*table.Table, error) {
	if _, err := requireColumns(t, "rename columns", keys(mapping)); err != nil {
		return nil, err
	}
	names := t.Names()
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		if nn, ok := mapping[n]; ok {
			if strings.TrimSpace(nn) == "" {
				return nil, table.Invalid("rename columns", n, "new name is empty")
			}
			names[i] = nn
		}
		if _, dup := seen[names[i]]; dup {
			return nil, table.Invalid("rename columns", names[i], "name would be duplicated")
		}
		seen[names[i]] = struct{}{}
	}
	return t.WithNames(names)
}
