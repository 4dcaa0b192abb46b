package telemetry

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

// OpenDB opens an instrumented connection pool. For sqlite, dsn is a file
// path; foreign keys and a busy timeout are enabled on every connection.
func OpenDB(driverName, dsn string) (*sql.DB, error) {
	switch driverName {
	case "postgres":
		return otelsql.Open("postgres", dsn,
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		)
	case "sqlite":
		return otelsql.Open("sqlite", "file:"+dsn+"?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)",
			otelsql.WithAttributes(semconv.DBSystemKey.String("sqlite")),
		)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
}
