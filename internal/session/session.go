// Package session holds the state of one working session: the source that
// was loaded, its raw table and the cleaned table derived from it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/datascrub-cli/internal/clean"
	"github.com/KaramelBytes/datascrub-cli/internal/export"
	"github.com/KaramelBytes/datascrub-cli/internal/logging"
	"github.com/KaramelBytes/datascrub-cli/internal/source"
	"github.com/KaramelBytes/datascrub-cli/internal/table"
	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

// Session is explicit context passed between operations instead of globals.
type Session struct {
	ID            string
	Source        source.Descriptor
	Raw           *table.Table
	Cleaned       *table.Table
	Stats         *clean.Stats
	Format        source.Format
	Encoding      string
	LowConfidence bool
	LoadedAt      time.Time
	Warnings      []string

	logger *slog.Logger
}

// Open loads d and starts a session around the result.
func Open(ctx context.Context, l *source.Loader, d source.Descriptor) (*Session, error) {
	id := uuid.NewString()
	ctx = logging.WithSession(ctx, id)
	logger := logging.FromContext(ctx)

	sl := *l
	sl.Logger = logger
	res, err := sl.Load(ctx, d)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:            id,
		Source:        d,
		Raw:           res.Table,
		Format:        res.Format,
		Encoding:      res.Encoding,
		LowConfidence: res.LowConfidence,
		LoadedAt:      time.Now(),
		Warnings:      res.Warnings,
		logger:        logger,
	}, nil
}

// Active is the cleaned table once Clean has run, the raw table before.
func (s *Session) Active() *table.Table {
	if s.Cleaned != nil {
		return s.Cleaned
	}
	return s.Raw
}

// Clean normalizes the raw table; repeated calls reuse the first result.
func (s *Session) Clean() clean.Stats {
	if s.Cleaned != nil && s.Stats != nil {
		return *s.Stats
	}
	out, st := clean.NormalizeWithStats(s.Raw, s.logger)
	s.Cleaned = out
	s.Stats = &st
	s.logger.Info("normalized",
		"rows_in", st.RowsIn,
		"rows_out", st.RowsOut,
		"numeric_columns", len(st.NumericColumns),
		"date_columns", len(st.DateColumns))
	return st
}

// HandoffPath is where Handoff writes in dir; an empty dir means the system
// temp directory.
func (s *Session) HandoffPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("datascrub-%s.csv", s.ID))
}

// Handoff writes the active table as CSV so that a later process can pick
// the session up with Resume. It returns the file path.
func (s *Session) Handoff(dir string, opt export.CSVOptions) (string, error) {
	path := s.HandoffPath(dir)
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("handoff dir: %w", err)
	}
	enc, err := export.CSVFile(path, s.Active(), opt)
	if err != nil {
		return "", fmt.Errorf("handoff: %w", err)
	}
	s.logger.Debug("handoff written", "path", path, "encoding", enc)
	return path, nil
}

// Resume opens a handoff file like any other CSV source.
func Resume(ctx context.Context, l *source.Loader, path string) (*Session, error) {
	return Open(ctx, l, source.LocalFile{Path: path, Format: source.FormatCSV})
}
