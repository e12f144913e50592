// Package schema creates the Dept and Emp tables on an empty database.
// The DDL is portable across sqlite3, PostgreSQL and MySQL and idempotent;
// it is not versioned.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/Skryldev/hrdao/db"
)

//go:embed schema.sql
var ddl string

// Statements returns the DDL statements in execution order.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ensure creates any missing table.
func Ensure(ctx context.Context, q db.Querier) error {
	for _, stmt := range Statements() {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
