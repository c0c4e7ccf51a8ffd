// Package source loads tabular sources (files and databases) into tables.
package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Format names a local file format.
type Format string

const (
	FormatAuto    Format = ""
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatText    Format = "txt"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
	FormatGzip    Format = "gz"
	FormatLZ4     Format = "lz4"
	FormatZip     Format = "zip"
	FormatUnknown Format = "unknown"

	// FormatDatabase marks results read through a DatabaseQuery.
	FormatDatabase Format = "database"
)

// InferFormat maps a file extension to a format; unrecognized extensions
// yield FormatUnknown.
func InferFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".txt":
		return FormatText
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".parquet", ".pq":
		return FormatParquet
	case ".gz", ".gzip":
		return FormatGzip
	case ".lz4":
		return FormatLZ4
	case ".zip":
		return FormatZip
	}
	return FormatUnknown
}

// ParseFormat validates a user-declared format name. An empty name means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatAuto, FormatCSV, FormatTSV, FormatText, FormatXLSX, FormatParquet, FormatGzip, FormatLZ4, FormatZip:
		return f, nil
	case "xlsm":
		return FormatXLSX, nil
	case "pq":
		return FormatParquet, nil
	}
	return FormatAuto, fmt.Errorf("unsupported format: %s (use csv|tsv|txt|xlsx|parquet|gz|lz4|zip)", s)
}

// Descriptor identifies a source. It is either LocalFile or DatabaseQuery.
type Descriptor interface {
	fmt.Stringer
	isDescriptor()
}

// LocalFile is a file on disk. Format is declared or, when FormatAuto, inferred.
type LocalFile struct {
	Path   string
	Format Format
}

func (LocalFile) isDescriptor()    {}
func (f LocalFile) String() string { return f.Path }

// EffectiveFormat returns the declared format or the one inferred from the path.
func (f LocalFile) EffectiveFormat() Format {
	if f.Format != FormatAuto {
		return f.Format
	}
	return InferFormat(f.Path)
}

// DatabaseQuery reads a table or query result from a database. Query takes
// priority over Table; Limit <= 0 means no limit.
type DatabaseQuery struct {
	ConnString string
	Table      string
	Query      string
	Limit      int
}

func (DatabaseQuery) isDescriptor() {}

// String describes the query without credentials.
func (q DatabaseQuery) String() string {
	target := q.Table
	if q.Query != "" {
		target = "query"
	}
	if target == "" {
		target = "first table"
	}
	return fmt.Sprintf("%s (%s)", RedactConnString(q.ConnString), target)
}

// ParseDescriptor turns raw user input into a descriptor once, before loading.
// Inputs with a URL scheme other than file:// are database connections and
// must belong to an accepted backend family.
func ParseDescriptor(raw string, format Format, tableName, query string, limit int) (Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrValidation("empty source")
	}
	if scheme, ok := urlScheme(raw); ok && scheme != "file" {
		if _, _, err := ParseConnString(raw); err != nil {
			return nil, err
		}
		return DatabaseQuery{ConnString: raw, Table: tableName, Query: query, Limit: limit}, nil
	}
	return LocalFile{Path: strings.TrimPrefix(raw, "file://"), Format: format}, nil
}

func urlScheme(raw string) (string, bool) {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return "", false
	}
	scheme := strings.ToLower(raw[:i])
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return "", false
		}
	}
	return scheme, true
}

// Dialect is a supported database backend.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SupportsLimit reports whether "LIMIT n" can be appended to a SELECT.
func (d Dialect) SupportsLimit() bool {
	switch d {
	case DialectMySQL, DialectPostgres, DialectSQLite:
		return true
	}
	return false
}

// ParseConnString accepts SQLAlchemy-style URLs (mysql+pymysql://...,
// postgresql+psycopg2://..., sqlite:///file.db) as well as plain driver URLs
// and returns the dialect with a DSN for the matching gorm driver.
func ParseConnString(conn string) (Dialect, string, error) {
	scheme, ok := urlScheme(conn)
	if !ok {
		return "", "", ErrValidation("invalid connection string: missing scheme")
	}
	family := scheme
	if i := strings.Index(family, "+"); i >= 0 {
		family = family[:i]
	}
	switch family {
	case "mysql", "mariadb":
		dsn, err := mysqlDSN(conn)
		return DialectMySQL, dsn, err
	case "postgres", "postgresql":
		dsn, err := postgresDSN(conn)
		return DialectPostgres, dsn, err
	case "sqlite", "sqlite3":
		return DialectSQLite, sqlitePath(conn), nil
	case "oracle":
		return "", "", ErrValidation("oracle connections are not supported: no Oracle driver is bundled (use mysql or postgresql)")
	}
	return "", "", ErrValidation("unsupported database backend %q: only MySQL and PostgreSQL (or local sqlite files) are accepted", family)
}

func mysqlDSN(conn string) (string, error) {
	u, err := url.Parse(conn)
	if err != nil {
		return "", ErrValidation("invalid mysql connection string: %v", err)
	}
	host := u.Host
	if host == "" {
		return "", ErrValidation("invalid mysql connection string: missing host")
	}
	if u.Port() == "" {
		host += ":3306"
	}
	var cred string
	if u.User != nil {
		cred = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cred += ":" + pw
		}
		cred += "@"
	}
	q := u.Query()
	q.Set("parseTime", "true")
	return fmt.Sprintf("%stcp(%s)/%s?%s", cred, host, strings.TrimPrefix(u.Path, "/"), q.Encode()), nil
}

func postgresDSN(conn string) (string, error) {
	u, err := url.Parse(conn)
	if err != nil {
		return "", ErrValidation("invalid postgresql connection string: %v", err)
	}
	if u.Host == "" {
		return "", ErrValidation("invalid postgresql connection string: missing host")
	}
	u.Scheme = "postgres"
	return u.String(), nil
}

// sqlitePath follows the SQLAlchemy convention: sqlite:///rel.db is relative,
// sqlite:////abs.db is absolute, and an empty path is an in-memory database.
func sqlitePath(conn string) string {
	rest := conn[strings.Index(conn, "://")+3:]
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return ":memory:"
	}
	return rest
}

// RedactConnString hides the password of a connection URL.
func RedactConnString(conn string) string {
	u, err := url.Parse(conn)
	if err != nil || u.User == nil {
		return conn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
