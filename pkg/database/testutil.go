package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a pgxmock pool for repository tests. The returned pool
// satisfies DBTX, so it can stand in for a real *pgxpool.Pool in any
// repository constructor. Verify with ExpectationsWereMet at the end of
// each test.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
}
