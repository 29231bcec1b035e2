package feed

import (
	"fmt"
	"strings"
	"time"
)

// Field names a post attribute or relation a predicate can test
type Field int

const (
	FieldTitle Field = iota + 1
	FieldShortDescription
	FieldContent
	FieldTagName
	FieldAuthorUsername
	FieldAuthorID
	FieldCreatedAt
	// Relation fields take a user id as their value.
	FieldLikedBy
	FieldAuthorFollowedBy
	FieldTagFollowedBy
)

var fieldNames = map[Field]string{
	FieldTitle:            "title",
	FieldShortDescription: "short_description",
	FieldContent:          "content",
	FieldTagName:          "tags.name",
	FieldAuthorUsername:   "author.username",
	FieldAuthorID:         "author.id",
	FieldCreatedAt:        "created_at",
	FieldLikedBy:          "liked_by",
	FieldAuthorFollowedBy: "author.followed_by",
	FieldTagFollowedBy:    "tags.followed_by",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// TextFields are the fields searched by free-text queries
var TextFields = []Field{
	FieldTitle,
	FieldShortDescription,
	FieldContent,
	FieldTagName,
	FieldAuthorUsername,
}

// Op is a comparison applied by a Leaf
type Op int

const (
	// OpContains is a case-insensitive substring match.
	OpContains Op = iota + 1
	OpEquals
	OpLTE
	OpGTE
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "icontains"
	case OpEquals:
		return "="
	case OpLTE:
		return "<="
	case OpGTE:
		return ">="
	default:
		return "?"
	}
}

// Predicate is a boolean expression over posts. Implementations are All, Leaf,
// And, Or and Not.
type Predicate interface {
	fmt.Stringer
	predicate()
}

type all struct{}

// All matches every post
var All Predicate = all{}

func (all) predicate()     {}
func (all) String() string { return "TRUE" }

// Leaf compares one field against a value
type Leaf struct {
	Field Field
	Op    Op
	Value interface{}
}

func (Leaf) predicate() {}

func (l Leaf) String() string {
	switch v := l.Value.(type) {
	case time.Time:
		return fmt.Sprintf("%s %s %s", l.Field, l.Op, v.UTC().Format(time.RFC3339))
	case string:
		return fmt.Sprintf("%s %s %q", l.Field, l.Op, v)
	default:
		return fmt.Sprintf("%s %s %v", l.Field, l.Op, v)
	}
}

// And matches when every operand matches. An empty And matches everything.
type And []Predicate

func (And) predicate() {}

func (a And) String() string { return join(a, " AND ", "TRUE") }

// Or matches when any operand matches. An empty Or matches nothing.
type Or []Predicate

func (Or) predicate() {}

func (o Or) String() string { return join(o, " OR ", "FALSE") }

// Not negates its operand
type Not struct {
	P Predicate
}

func (Not) predicate() {}

func (n Not) String() string { return "NOT (" + n.P.String() + ")" }

func join(ps []Predicate, sep, empty string) string {
	if len(ps) == 0 {
		return empty
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = "(" + p.String() + ")"
	}
	return strings.Join(parts, sep)
}

// Contains builds a case-insensitive substring leaf
func Contains(f Field, s string) Leaf {
	return Leaf{Field: f, Op: OpContains, Value: s}
}

// Equals builds an equality leaf
func Equals(f Field, v interface{}) Leaf {
	return Leaf{Field: f, Op: OpEquals, Value: v}
}

// CreatedAtOrBefore matches posts created at or before t
func CreatedAtOrBefore(t time.Time) Leaf {
	return Leaf{Field: FieldCreatedAt, Op: OpLTE, Value: t}
}

// AnyOf ORs its operands, flattening nested Or nodes. Empty Or operands are
// dropped and an All operand absorbs the whole expression.
func AnyOf(ps ...Predicate) Predicate {
	out := make(Or, 0, len(ps))
	for _, p := range ps {
		switch v := p.(type) {
		case nil:
			continue
		case all:
			return All
		case Or:
			for _, inner := range v {
				if _, ok := inner.(all); ok {
					return All
				}
			}
			out = append(out, v...)
		default:
			out = append(out, p)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// AllOf ANDs its operands, flattening nested And nodes and dropping All.
func AllOf(ps ...Predicate) Predicate {
	out := make(And, 0, len(ps))
	for _, p := range ps {
		switch v := p.(type) {
		case nil, all:
			continue
		case And:
			for _, inner := range v {
				if _, ok := inner.(all); !ok {
					out = append(out, inner)
				}
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return All
	case 1:
		return out[0]
	}
	return out
}

// MatchText ORs a substring match of s against every text field
func MatchText(s string) Predicate {
	ps := make([]Predicate, len(TextFields))
	for i, f := range TextFields {
		ps[i] = Contains(f, s)
	}
	return AnyOf(ps...)
}

// LeafMatcher decides single leaves; Match combines its answers.
type LeafMatcher interface {
	MatchLeaf(l Leaf) bool
}

// LeafMatcherFunc adapts a function to LeafMatcher
type LeafMatcherFunc func(l Leaf) bool

// MatchLeaf calls f(l)
func (f LeafMatcherFunc) MatchLeaf(l Leaf) bool { return f(l) }

// Match evaluates p with leaves decided by m
func Match(p Predicate, m LeafMatcher) bool {
	switch v := p.(type) {
	case all:
		return true
	case Leaf:
		return m.MatchLeaf(v)
	case And:
		for _, inner := range v {
			if !Match(inner, m) {
				return false
			}
		}
		return true
	case Or:
		for _, inner := range v {
			if Match(inner, m) {
				return true
			}
		}
		return false
	case Not:
		return !Match(v.P, m)
	default:
		return false
	}
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
