// Package export writes tables to CSV, Parquet and database destinations.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

const (
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// CSVOptions controls CSV output.
type CSVOptions struct {
	// Encoding is auto, utf-8 or latin-1. Auto writes UTF-8 unless some
	// header or cell is not valid UTF-8, in which case the file is Latin-1.
	Encoding string
	// Delimiter defaults to a comma.
	Delimiter rune
}

// ParseEncoding validates an encoding name; empty means auto.
func ParseEncoding(s string) (string, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "", EncodingAuto:
		return EncodingAuto, nil
	case EncodingUTF8, "utf8":
		return EncodingUTF8, nil
	case EncodingLatin1, "latin1", "iso-8859-1":
		return EncodingLatin1, nil
	}
	return "", fmt.Errorf("unsupported encoding %q (use auto|utf-8|latin-1)", s)
}

// WriteCSV writes the header and every row of t without an index column and
// returns the encoding used. Missing cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table, opt CSVOptions) (string, error) {
	enc, err := ParseEncoding(opt.Encoding)
	if err != nil {
		return "", err
	}
	if enc == EncodingAuto {
		enc = EncodingUTF8
		if !validUTF8(t) {
			enc = EncodingLatin1
		}
	}
	conv := func(s string) string { return s }
	if enc == EncodingLatin1 {
		conv = toLatin1
	}

	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	header := t.ColumnNames()
	for i, h := range header {
		header[i] = conv(h)
	}
	if err := writeRecord(w, cw, header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			rec[j] = conv(c.Format(i))
		}
		if err := writeRecord(w, cw, rec); err != nil {
			return "", fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return enc, nil
}

// CSVFile writes t to path atomically and returns the encoding used.
func CSVFile(path string, t *table.Table, opt CSVOptions) (string, error) {
	var buf bytes.Buffer
	enc, err := WriteCSV(&buf, t, opt)
	if err != nil {
		return "", err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return enc, nil
}

// writeRecord writes rec through cw, except that a lone empty field is
// written as "" so that readers do not skip it as a blank line.
func writeRecord(w io.Writer, cw *csv.Writer, rec []string) error {
	if len(rec) != 1 || rec[0] != "" {
		return cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

func validUTF8(t *table.Table) bool {
	for _, c := range t.Columns {
		if !utf8.ValidString(c.Name) {
			return false
		}
		if c.Kind != table.KindText {
			continue
		}
		for _, v := range c.Cells {
			if v.Valid && !utf8.ValidString(v.Str) {
				return false
			}
		}
	}
	return true
}

// toLatin1 encodes valid UTF-8 as Latin-1, replacing runes outside the
// charset with '?'. Strings that are not valid UTF-8 are assumed to be
// Latin-1 bytes already and pass through unchanged.
func toLatin1(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
