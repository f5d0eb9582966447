package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// BOM prefixes every CSV so that spreadsheet apps detect UTF-8.
const BOM = "\uFEFF"

type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes the BOM, the header & the rows. Cells are quoted only when needed.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return errors.Wrap(err, "writing BOM")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	return nil
}

// WriteQuotedCSV writes the BOM & the rows with every cell quoted and embedded quotes doubled.
func WriteQuotedCSV(w io.Writer, rows [][]string) error {
	var buf bytes.Buffer
	buf.WriteString(BOM)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "writing custom csv")
}
