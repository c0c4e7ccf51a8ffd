package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// DefaultDBTimeout bounds database work when Options.DBTimeout is unset.
const DefaultDBTimeout = 30 * time.Second

// OpenDatabase connects to the backend named by a connection string.
func OpenDatabase(conn string) (*gorm.DB, Dialect, error) {
	dialect, dsn, err := ParseConnString(conn)
	if err != nil {
		return nil, "", err
	}
	var dialector gorm.Dialector
	switch dialect {
	case DialectMySQL:
		dialector = mysql.Open(dsn)
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, dialect, loadErr(KindUnreachable, RedactConnString(conn), err)
	}
	return db, dialect, nil
}

// CloseDatabase releases the pool behind db.
func CloseDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (l *Loader) loadDatabase(ctx context.Context, q DatabaseQuery) (*Result, error) {
	src := RedactConnString(q.ConnString)
	timeout := l.Options.DBTimeout
	if timeout <= 0 {
		timeout = DefaultDBTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, dialect, err := OpenDatabase(q.ConnString)
	if err != nil {
		return nil, err
	}
	defer CloseDatabase(db)
	db = db.WithContext(ctx)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, loadErr(KindUnreachable, src, err)
		}
	}

	stmt, name, clientLimit, err := l.buildSelect(db, dialect, q)
	if err != nil {
		if errors.Is(err, ErrNoTablesFound) {
			return nil, loadErr(KindNoTables, src, err)
		}
		return nil, loadErr(KindQuery, src, err)
	}
	l.Logger.Debug("querying database", "dialect", string(dialect), "target", name, "client_limit", clientLimit)

	rows, err := db.Raw(stmt).Rows()
	if err != nil {
		return nil, loadErr(KindQuery, src, err)
	}
	defer rows.Close()

	tbl, truncated, err := scanRows(name, rows, clientLimit)
	if err != nil {
		return nil, loadErr(KindQuery, src, err)
	}
	res := &Result{Table: tbl, Format: FormatDatabase}
	if truncated {
		res.Warnings = append(res.Warnings, fmt.Sprintf("query result truncated to %d rows", clientLimit))
	}
	return res, nil
}

// buildSelect picks the statement: a user query runs verbatim and is
// truncated client-side, a table (named or the first one found) is selected
// with LIMIT pushed down when the dialect supports it.
func (l *Loader) buildSelect(db *gorm.DB, dialect Dialect, q DatabaseQuery) (stmt, name string, clientLimit int, err error) {
	if strings.TrimSpace(q.Query) != "" {
		return q.Query, "query", max(q.Limit, 0), nil
	}
	name = q.Table
	if name == "" {
		tables, err := db.Migrator().GetTables()
		if err != nil {
			return "", "", 0, err
		}
		if len(tables) == 0 {
			return "", "", 0, ErrNoTablesFound
		}
		name = tables[0]
		l.Logger.Debug("no table given, using first table", "table", name)
	}
	if !validIdentifier(name) {
		return "", "", 0, fmt.Errorf("invalid table name %q", name)
	}
	stmt = "SELECT * FROM " + db.Statement.Quote(name)
	if q.Limit > 0 {
		if dialect.SupportsLimit() {
			stmt += " LIMIT " + strconv.Itoa(q.Limit)
		} else {
			clientLimit = q.Limit
		}
	}
	return stmt, name, clientLimit, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '.' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// scanRows reads at most limit rows (limit <= 0 means all) and reports
// whether more were available.
func scanRows(name string, rows *sql.Rows, limit int) (*table.Table, bool, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, false, err
	}
	var (
		out       [][]any
		truncated bool
	)
	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			truncated = true
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, err
		}
		for i, v := range vals {
			vals[i] = driverValue(types[i].DatabaseTypeName(), v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return table.FromValues(name, cols, out), truncated, nil
}

// driverValue turns raw bytes and numeric strings into Go values according
// to the column's declared type.
func driverValue(dbType string, v any) any {
	var s string
	switch x := v.(type) {
	case []byte:
		s = string(x)
	case string:
		s = x
	default:
		return v
	}
	if numericType(dbType) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return s
}

func numericType(dbType string) bool {
	t := strings.ToUpper(dbType)
	for _, p := range []string{"INT", "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL", "SERIAL"} {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
