package export

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// WriteDatabase replaces the destination table with the contents of t: any
// existing table is dropped, a new one is created from the column kinds and
// the rows are inserted in batches inside one transaction.
func WriteDatabase(ctx context.Context, db *gorm.DB, name string, t *table.Table) error {
	if !validTableName(name) {
		return fmt.Errorf("invalid destination table name %q", name)
	}
	if t.NumCols() == 0 {
		return fmt.Errorf("cannot write a table without columns to %s", name)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(name) {
			if err := tx.Migrator().DropTable(name); err != nil {
				return fmt.Errorf("drop %s: %w", name, err)
			}
		}
		if err := tx.Exec(createTableSQL(tx, name, t)).Error; err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		rows := make([]map[string]any, 0, DefaultBatchSize)
		flush := func() error {
			if len(rows) == 0 {
				return nil
			}
			if err := tx.Table(name).Create(rows).Error; err != nil {
				return fmt.Errorf("insert into %s: %w", name, err)
			}
			rows = rows[:0]
			return nil
		}
		for i := 0; i < t.NumRows(); i++ {
			row := make(map[string]any, t.NumCols())
			for _, c := range t.Columns {
				row[c.Name] = sqlValue(c.Kind, c.Cells[i])
			}
			rows = append(rows, row)
			if len(rows) == DefaultBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
}

func createTableSQL(db *gorm.DB, name string, t *table.Table) string {
	dialect := db.Dialector.Name()
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = db.Statement.Quote(c.Name) + " " + sqlType(dialect, c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", db.Statement.Quote(name), strings.Join(cols, ", "))
}

func sqlType(dialect string, k table.Kind) string {
	switch k {
	case table.KindNumber:
		switch dialect {
		case "mysql":
			return "DOUBLE"
		case "sqlite":
			return "REAL"
		}
		return "DOUBLE PRECISION"
	case table.KindTime:
		if dialect == "postgres" {
			return "TIMESTAMP"
		}
		return "DATETIME"
	case table.KindBool:
		return "BOOLEAN"
	}
	return "TEXT"
}

func sqlValue(k table.Kind, v table.Value) any {
	if !v.Valid {
		return nil
	}
	switch k {
	case table.KindNumber:
		return v.Num
	case table.KindTime:
		return v.Time
	case table.KindBool:
		return v.Bool
	}
	return v.Str
}

func validTableName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
