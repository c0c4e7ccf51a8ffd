package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns data as UTF-8. Input that is not valid UTF-8 is decoded
// as Latin-1, which accepts every byte sequence.
func decodeText(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", err
	}
	return out, EncodingLatin1, nil
}

func parseRecords(data []byte, delim rune, strict bool) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.ReuseRecord = false
	if strict {
		r.FieldsPerRecord = 0
	} else {
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
	}
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func recordsTable(name string, recs [][]string) *table.Table {
	if len(recs) == 0 {
		return &table.Table{Name: name}
	}
	return table.FromRecords(name, recs[0], recs[1:])
}

func (l *Loader) readDelimited(name, src string, format Format, data []byte, delim rune) (*Result, error) {
	text, enc, err := decodeText(data)
	if err != nil {
		return nil, loadErr(KindEncoding, src, err)
	}
	recs, err := parseRecords(text, delim, false)
	if err != nil {
		return nil, &ParseError{Source: src, Format: format, Err: err}
	}
	res := &Result{Table: recordsTable(name, recs), Format: format, Encoding: enc}
	if enc == EncodingLatin1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not valid UTF-8: decoded as Latin-1", name))
	}
	return res, nil
}

// readText reads .txt files as comma separated, falling back to tabs when the
// comma parse fails or finds a single column while tabs find more.
func (l *Loader) readText(name, src string, data []byte) (*Result, error) {
	if l.Options.Delimiter != 0 {
		return l.readDelimited(name, src, FormatText, data, l.Options.Delimiter)
	}
	text, enc, err := decodeText(data)
	if err != nil {
		return nil, loadErr(KindEncoding, src, err)
	}
	res := &Result{Format: FormatText, Encoding: enc}
	if enc == EncodingLatin1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not valid UTF-8: decoded as Latin-1", name))
	}
	commaRecs, commaErr := parseRecords(text, ',', true)
	if commaErr == nil && width(commaRecs) > 1 {
		res.Table = recordsTable(name, commaRecs)
		return res, nil
	}
	tabRecs, tabErr := parseRecords(text, '\t', false)
	switch {
	case tabErr == nil && (commaErr != nil || width(tabRecs) > 1):
		res.Table = recordsTable(name, tabRecs)
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s read as tab separated", name))
		return res, nil
	case commaErr == nil:
		res.Table = recordsTable(name, commaRecs)
		return res, nil
	}
	return nil, &ParseError{Source: src, Format: FormatText, Err: fmt.Errorf("comma: %v; tab: %w", commaErr, tabErr)}
}

func width(recs [][]string) int {
	if len(recs) == 0 {
		return 0
	}
	return len(recs[0])
}
