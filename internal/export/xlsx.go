package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// SheetName is the name of the single sheet WriteXLSX produces.
const SheetName = "Sheet1"

const (
	xmlHeader  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	nsMain     = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkgRel   = "http://schemas.openxmlformats.org/package/2006/relationships"
	ctWorkbook = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctSheet    = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
)

var xlsxParts = []struct{ name, body string }{
	{"[Content_Types].xml", xmlHeader +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="` + ctWorkbook + `"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="` + ctSheet + `"/>` +
		`</Types>`},
	{"_rels/.rels", xmlHeader +
		`<Relationships xmlns="` + nsPkgRel + `">` +
		`<Relationship Id="rId1" Type="` + nsRel + `/officeDocument" Target="xl/workbook.xml"/>` +
		`</Relationships>`},
	{"xl/workbook.xml", xmlHeader +
		`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">` +
		`<sheets><sheet name="` + SheetName + `" sheetId="1" r:id="rId1"/></sheets>` +
		`</workbook>`},
	{"xl/_rels/workbook.xml.rels", xmlHeader +
		`<Relationships xmlns="` + nsPkgRel + `">` +
		`<Relationship Id="rId1" Type="` + nsRel + `/worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`},
}

// WriteXLSX writes t as a one-sheet workbook. The header is row 1. Numbers are
// numeric cells, booleans are boolean cells, text and datetimes are inline strings
// (datetimes in FormatTime layout, so no style part is needed). Missing cells and
// non-finite floats are left empty.
func WriteXLSX(w io.Writer, t *table.Table) error {
	zw := zip.NewWriter(w)
	for _, p := range xlsxParts {
		if err := writePart(zw, p.name, p.body); err != nil {
			return err
		}
	}
	fw, err := zw.Create("xl/worksheets/sheet1.xml")
	if err != nil {
		return fmt.Errorf("create worksheet: %w", err)
	}
	if err := writeSheet(fw, t); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close xlsx: %w", err)
	}
	return nil
}

func writePart(zw *zip.Writer, name, body string) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	_, err = io.WriteString(fw, body)
	return err
}

func writeSheet(w io.Writer, t *table.Table) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<worksheet xmlns="` + nsMain + `"><sheetData>`)
	b.WriteString(`<row r="1">`)
	for j, name := range t.Names() {
		inlineCell(&b, cellRef(j, 1), name)
	}
	b.WriteString(`</row>`)
	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		r := i + 2
		fmt.Fprintf(&b, `<row r="%d">`, r)
		for j, c := range cols {
			ref := cellRef(j, r)
			switch v := c.Value(i).(type) {
			case nil:
			case int64:
				fmt.Fprintf(&b, `<c r="%s"><v>%d</v></c>`, ref, v)
			case float64:
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				fmt.Fprintf(&b, `<c r="%s"><v>%s</v></c>`, ref, strconv.FormatFloat(v, 'g', -1, 64))
			case bool:
				n := 0
				if v {
					n = 1
				}
				fmt.Fprintf(&b, `<c r="%s" t="b"><v>%d</v></c>`, ref, n)
			default:
				inlineCell(&b, ref, table.FormatValue(v))
			}
		}
		b.WriteString(`</row>`)
	}
	b.WriteString(`</sheetData></worksheet>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func inlineCell(b *strings.Builder, ref, s string) {
	fmt.Fprintf(b, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">`, ref)
	_ = xml.EscapeText(b, []byte(s))
	b.WriteString(`</t></is></c>`)
}

// cellRef renders a 0-based column and 1-based row as an A1 reference.
func cellRef(col, row int) string {
	var letters []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters) + strconv.Itoa(row)
}
