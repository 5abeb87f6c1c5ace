package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenStdlib 仅用于目录表迁移（database/sql + pgx 驱动）。
func OpenStdlib(dsn string) (*sql.DB, error) {
	if err := validateCatalogDSN(dsn); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_DSN: %w", err)
	}
	return sql.Open("pgx", dsn)
}
