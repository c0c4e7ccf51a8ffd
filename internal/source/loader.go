package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// Options tunes how sources are read.
type Options struct {
	// SheetName selects a worksheet by name; it wins over SheetIndex.
	SheetName string
	// SheetIndex is 1-based; 0 means the first sheet.
	SheetIndex int
	// Delimiter overrides the field separator for delimited text.
	Delimiter rune
	// DBTimeout bounds connecting to and querying a database.
	DBTimeout time.Duration
}

// Result is a loaded table plus what the loader learned on the way.
type Result struct {
	Table  *table.Table
	Format Format
	// Encoding is "utf-8" or "latin-1" for text sources, empty otherwise.
	Encoding string
	// LowConfidence marks files of unknown extension read as delimited text.
	LowConfidence bool
	Warnings      []string
}

// Loader reads descriptors into tables.
type Loader struct {
	Logger  *slog.Logger
	Options Options
}

// NewLoader returns a loader with the given options; a nil logger discards output.
func NewLoader(logger *slog.Logger, opt Options) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{Logger: logger, Options: opt}
}

// Load reads the source named by d.
func (l *Loader) Load(ctx context.Context, d Descriptor) (*Result, error) {
	if l.Logger == nil {
		l.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()
	var (
		res *Result
		err error
	)
	switch d := d.(type) {
	case LocalFile:
		res, err = l.loadFile(d)
	case DatabaseQuery:
		res, err = l.loadDatabase(ctx, d)
	default:
		return nil, ErrValidation("unsupported source descriptor %T", d)
	}
	if err != nil {
		l.Logger.Debug("load failed", "source", d.String(), "error", err)
		return nil, err
	}
	l.Logger.Info("loaded source",
		"source", d.String(),
		"format", string(res.Format),
		"rows", res.Table.NumRows(),
		"columns", res.Table.NumCols(),
		"duration", time.Since(start))
	for _, w := range res.Warnings {
		l.Logger.Warn(w, "source", d.String())
	}
	return res, nil
}

func (l *Loader) loadFile(f LocalFile) (*Result, error) {
	st, err := os.Stat(f.Path)
	if err != nil {
		return nil, loadErr(KindUnreadable, f.Path, err)
	}
	if st.IsDir() {
		return nil, loadErr(KindUnreadable, f.Path, fmt.Errorf("is a directory"))
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, loadErr(KindUnreadable, f.Path, err)
	}
	return l.decode(filepath.Base(f.Path), f.Path, f.EffectiveFormat(), data)
}

// decode dispatches on format; name is the table name, src identifies the
// file in errors.
func (l *Loader) decode(name, src string, format Format, data []byte) (*Result, error) {
	switch format {
	case FormatCSV:
		return l.readDelimited(name, src, format, data, l.delimiterOr(','))
	case FormatTSV:
		return l.readDelimited(name, src, format, data, l.delimiterOr('\t'))
	case FormatText:
		return l.readText(name, src, data)
	case FormatXLSX:
		return l.readXLSX(name, src, data)
	case FormatParquet:
		return readParquet(name, src, data)
	case FormatGzip, FormatLZ4, FormatZip:
		return l.readCompressed(name, src, format, data)
	default:
		res, err := l.readDelimited(name, src, FormatCSV, data, l.delimiterOr(','))
		if err != nil {
			return nil, err
		}
		res.Format = FormatUnknown
		res.LowConfidence = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("unrecognized extension for %s: read as CSV (low confidence)", filepath.Base(src)))
		return res, nil
	}
}

func (l *Loader) delimiterOr(def rune) rune {
	if l.Options.Delimiter != 0 {
		return l.Options.Delimiter
	}
	return def
}
