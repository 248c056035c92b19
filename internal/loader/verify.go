package loader

import (
	"context"
	"database/sql"
	"fmt"
)

// VerifyResult holds the row count check for a single table.
type VerifyResult struct {
	Table         string
	ExpectedCount int64
	TableCount    int64
	Match         bool
	ErrorMessage  string
}

// verifyCount compares the table's row count, as seen inside tx, with the
// number of records inserted.
func (l *Loader) verifyCount(ctx context.Context, tx *sql.Tx, table string, expected int64) (*VerifyResult, error) {
	query := "SELECT COUNT(*) FROM " + l.quote(table)

	var count int64
	if err := tx.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	result := &VerifyResult{
		Table:         table,
		ExpectedCount: expected,
		TableCount:    count,
		Match:         count == expected,
	}
	if !result.Match {
		result.ErrorMessage = fmt.Sprintf("count mismatch: records=%d, table=%d", expected, count)
	}
	return result, nil
}
