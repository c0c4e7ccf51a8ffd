package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datascrub-cli/internal/config"
	"github.com/KaramelBytes/datascrub-cli/internal/session"
	"github.com/KaramelBytes/datascrub-cli/internal/source"
)

// sourceFlags are the flags shared by every command that reads a source.
type sourceFlags struct {
	table      string
	query      string
	limit      int
	format     string
	sheetName  string
	sheetIndex int
	delimiter  string
	clean      bool
}

func (f *sourceFlags) bind(c *cobra.Command) {
	fl := c.Flags()
	fl.StringVar(&f.table, "table", "", "database: table to read (default: first table)")
	fl.StringVar(&f.query, "query", "", "database: SQL query to run instead of reading a table")
	fl.IntVar(&f.limit, "limit", 0, "database: maximum rows to fetch (default from config, 0 = unlimited)")
	fl.StringVar(&f.format, "format", "", "file format override: csv|tsv|txt|xlsx|parquet|gz|lz4|zip")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fl.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.delimiter, "delimiter", "", "field delimiter: ',' | ';' | '|' | 'tab'")
	fl.BoolVar(&f.clean, "clean", false, "normalize the table before reporting")
}

// conf is the loaded configuration, or the defaults when none was loaded.
func conf() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "\t", "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

func (f *sourceFlags) descriptor(c *cobra.Command, raw string) (source.Descriptor, error) {
	format, err := source.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	limit := f.limit
	if !c.Flags().Changed("limit") {
		limit = conf().DBRowLimit
	}
	return source.ParseDescriptor(raw, format, f.table, f.query, limit)
}

func (f *sourceFlags) loader() (*source.Loader, error) {
	delim, err := parseDelimiter(f.delimiter)
	if err != nil {
		return nil, err
	}
	return source.NewLoader(nil, source.Options{
		SheetName:  f.sheetName,
		SheetIndex: f.sheetIndex,
		Delimiter:  delim,
		DBTimeout:  time.Duration(conf().DBTimeoutSec) * time.Second,
	}), nil
}

// openSession loads raw into a new session, printing load warnings to
// stderr and normalizing the table when --clean is set.
func (f *sourceFlags) openSession(c *cobra.Command, raw string) (*session.Session, error) {
	d, err := f.descriptor(c, raw)
	if err != nil {
		return nil, err
	}
	l, err := f.loader()
	if err != nil {
		return nil, err
	}
	s, err := session.Open(c.Context(), l, d)
	if err != nil {
		return nil, err
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(c.ErrOrStderr(), "⚠ Warning: %s\n", w)
	}
	if f.clean {
		s.Clean()
	}
	return s, nil
}
