package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/culinara/culinara/internal/feed"
)

// clause is a parameterised SQL boolean expression over the posts table
type clause struct {
	sql  string
	args []interface{}
}

var (
	clauseTrue  = clause{sql: "1 = 1"}
	clauseFalse = clause{sql: "1 = 0"}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compilePredicate turns a feed predicate into a WHERE clause
func compilePredicate(p feed.Predicate) (clause, error) {
	if p == nil || p == feed.All {
		return clauseTrue, nil
	}

	switch v := p.(type) {
	case feed.Leaf:
		return compileLeaf(v)
	case feed.And:
		if len(v) == 0 {
			return clauseTrue, nil
		}
		return compileJunction(v, " AND ")
	case feed.Or:
		if len(v) == 0 {
			return clauseFalse, nil
		}
		return compileJunction(v, " OR ")
	case feed.Not:
		inner, err := compilePredicate(v.P)
		if err != nil {
			return clause{}, err
		}
		return clause{sql: "NOT (" + inner.sql + ")", args: inner.args}, nil
	}
	return clause{}, fmt.Errorf("unsupported predicate %T", p)
}

func compileJunction(ps []feed.Predicate, sep string) (clause, error) {
	parts := make([]string, 0, len(ps))
	var args []interface{}
	for _, p := range ps {
		c, err := compilePredicate(p)
		if err != nil {
			return clause{}, err
		}
		parts = append(parts, "("+c.sql+")")
		args = append(args, c.args...)
	}
	return clause{sql: strings.Join(parts, sep), args: args}, nil
}

func compileLeaf(l feed.Leaf) (clause, error) {
	switch l.Field {
	case feed.FieldTitle:
		return compareText("posts.title", l)
	case feed.FieldShortDescription:
		return compareText("posts.short_description", l)
	case feed.FieldContent:
		return compareText("posts.content", l)
	case feed.FieldTagName:
		inner, err := compareText("tags.name", l)
		if err != nil {
			return clause{}, err
		}
		return clause{
			sql: "EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id " +
				"WHERE post_tags.post_id = posts.id AND " + inner.sql + ")",
			args: inner.args,
		}, nil
	case feed.FieldAuthorUsername:
		inner, err := compareText("users.username", l)
		if err != nil {
			return clause{}, err
		}
		return clause{
			sql:  "EXISTS (SELECT 1 FROM users WHERE users.id = posts.author_id AND " + inner.sql + ")",
			args: inner.args,
		}, nil
	case feed.FieldAuthorID:
		if l.Op != feed.OpEquals {
			break
		}
		return clause{sql: "posts.author_id = ?", args: []interface{}{l.Value}}, nil
	case feed.FieldCreatedAt:
		return compareTime("posts.created_at", l)
	case feed.FieldLikedBy:
		return clause{
			sql:  "EXISTS (SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?)",
			args: []interface{}{l.Value},
		}, nil
	case feed.FieldAuthorFollowedBy:
		return clause{
			sql:  "posts.author_id IN (SELECT user_following.following_id FROM user_following WHERE user_following.follower_id = ?)",
			args: []interface{}{l.Value},
		}, nil
	case feed.FieldTagFollowedBy:
		return clause{
			sql: "EXISTS (SELECT 1 FROM post_tags JOIN user_followed_tags ON user_followed_tags.tag_id = post_tags.tag_id " +
				"WHERE post_tags.post_id = posts.id AND user_followed_tags.user_id = ?)",
			args: []interface{}{l.Value},
		}, nil
	}
	return clause{}, fmt.Errorf("unsupported predicate %s", l)
}

func compareText(column string, l feed.Leaf) (clause, error) {
	s, ok := l.Value.(string)
	if !ok {
		return clause{}, fmt.Errorf("predicate %s needs a string value", l)
	}
	switch l.Op {
	case feed.OpContains:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		return clause{sql: "LOWER(" + column + `) LIKE ? ESCAPE '\'`, args: []interface{}{pattern}}, nil
	case feed.OpEquals:
		return clause{sql: column + " = ?", args: []interface{}{s}}, nil
	}
	return clause{}, fmt.Errorf("unsupported predicate %s", l)
}

func compareTime(column string, l feed.Leaf) (clause, error) {
	t, ok := l.Value.(time.Time)
	if !ok {
		return clause{}, fmt.Errorf("predicate %s needs a time value", l)
	}
	var op string
	switch l.Op {
	case feed.OpLTE:
		op = "<="
	case feed.OpGTE:
		op = ">="
	case feed.OpEquals:
		op = "="
	default:
		return clause{}, fmt.Errorf("unsupported predicate %s", l)
	}
	return clause{sql: column + " " + op + " ?", args: []interface{}{t.UTC()}}, nil
}

// orderClause maps a feed ordering to ORDER BY. likes_count is the alias
// selected by PostStore.
func orderClause(o feed.Ordering) string {
	switch o {
	case feed.OrderRecent:
		return "posts.created_at DESC, posts.id DESC"
	case feed.OrderEngagementOldest:
		return "likes_count DESC, posts.created_at ASC, posts.id DESC"
	default:
		return "likes_count DESC, posts.created_at DESC, posts.id DESC"
	}
}
