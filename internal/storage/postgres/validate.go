package postgres

import (
	"fmt"
	"net/url"
	"strings"
)

// validateCatalogDSN 校验目录库 DSN。gorm 与 pgx 对坏 DSN 的报错各不相同，
// 这里在建连前统一给出指向 POSTGRES_DSN 的明确错误。
func validateCatalogDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return fmt.Errorf("catalog dsn is empty")
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("catalog dsn is not a valid URI: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("catalog dsn must use scheme postgres:// or postgresql:// (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("catalog dsn missing host")
	}
	return nil
}
