package db

import (
	"testing"
	"time"

	"github.com/culinara/culinara/internal/feed"
)

func TestCompilePredicate(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		pred     feed.Predicate
		wantSQL  string
		wantArgs []interface{}
	}{
		{"all", feed.All, "1 = 1", nil},
		{"empty and", feed.And{}, "1 = 1", nil},
		{"empty or", feed.Or{}, "1 = 0", nil},
		{
			"contains escapes wildcards",
			feed.Contains(feed.FieldTitle, `50%_Off\`),
			`LOWER(posts.title) LIKE ? ESCAPE '\'`,
			[]interface{}{`%50\%\_off\\%`},
		},
		{
			"created at or before",
			feed.CreatedAtOrBefore(cutoff),
			"posts.created_at <= ?",
			[]interface{}{cutoff},
		},
		{
			"or of leaves",
			feed.Or{feed.Equals(feed.FieldAuthorID, "u1"), feed.Not{P: feed.Equals(feed.FieldTitle, "x")}},
			"(posts.author_id = ?) OR (NOT (posts.title = ?))",
			[]interface{}{"u1", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compilePredicate(tt.pred)
			if err != nil {
				t.Fatalf("compilePredicate() error = %v", err)
			}
			if got.sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", got.sql, tt.wantSQL)
			}
			if len(got.args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", got.args, tt.wantArgs)
			}
			for i := range got.args {
				if got.args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d = %v, want %v", i, got.args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestCompilePredicateRejectsUnsupported(t *testing.T) {
	if _, err := compilePredicate(feed.Leaf{Field: feed.FieldAuthorID, Op: feed.OpContains, Value: "x"}); err == nil {
		t.Error("expected error for contains on author id")
	}
	if _, err := compilePredicate(feed.Leaf{Field: feed.FieldCreatedAt, Op: feed.OpLTE, Value: "yesterday"}); err == nil {
		t.Error("expected error for non-time created_at value")
	}
}
