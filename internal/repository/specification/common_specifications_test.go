package specification

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ai-canvas-be/internal/entity"
)

// dryRunDB builds SQL without touching a database.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func buildQuery(t *testing.T, specs ...Specification) *gorm.Statement {
	t.Helper()
	query := dryRunDB(t).Model(&entity.CanvasMessage{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	var out []entity.CanvasMessage
	tx := query.Find(&out)
	return tx.Statement
}

func TestPaginationLimitsQuery(t *testing.T) {
	threadID := uuid.New()
	stmt := buildQuery(t,
		ByThreadID{ThreadID: threadID},
		OrderBy{Field: "created_at", Desc: false},
		Pagination{Limit: 50, Offset: 100},
	)

	sql := stmt.SQL.String()
	if !strings.Contains(sql, "thread_id") {
		t.Errorf("missing thread filter in %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY created_at ASC") {
		t.Errorf("missing ordering in %q", sql)
	}
	if !strings.Contains(sql, "LIMIT") || !strings.Contains(sql, "OFFSET") {
		t.Errorf("missing pagination in %q", sql)
	}
}

func TestPaginationZeroLimitIsUnbounded(t *testing.T) {
	stmt := buildQuery(t, Pagination{Limit: 0, Offset: 100})

	sql := stmt.SQL.String()
	if strings.Contains(sql, "LIMIT") || strings.Contains(sql, "OFFSET") {
		t.Errorf("unbounded listing must not paginate, got %q", sql)
	}
}

func TestOrderByDescending(t *testing.T) {
	stmt := buildQuery(t, OrderBy{Field: "created_at", Desc: true})

	if !strings.Contains(stmt.SQL.String(), "ORDER BY created_at DESC") {
		t.Errorf("missing descending order in %q", stmt.SQL.String())
	}
}
