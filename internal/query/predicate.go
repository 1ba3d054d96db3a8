package query

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Op is the comparison a predicate applies to its column.
type Op int

const (
	OpEq Op = iota
	OpGte
	OpLte
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpContains:
		return "ILIKE"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// Filters maps recognized filter names to values. Keys a PredicateSet does
// not declare are ignored.
type Filters map[string]any

// Predicate declares one recognized filter key.
type Predicate struct {
	Key    string
	Column string
	Op     Op
	// Integer requires the value to be a whole number.
	Integer bool
}

// Bound pairs a lower and an upper bound key that form a range.
type Bound struct {
	Min string
	Max string
}

// PredicateSet is the fixed, ordered declaration of the filters an entity
// accepts.
type PredicateSet struct {
	preds  []Predicate
	index  map[string]int
	bounds []Bound
}

func NewPredicateSet(preds []Predicate, bounds ...Bound) (*PredicateSet, error) {
	ps := &PredicateSet{
		preds:  make([]Predicate, 0, len(preds)),
		index:  make(map[string]int, len(preds)),
		bounds: bounds,
	}

	for _, p := range preds {
		if p.Key == "" {
			return nil, fmt.Errorf("predicate for column %q has no key", p.Column)
		}
		if !identRe.MatchString(p.Column) {
			return nil, fmt.Errorf("predicate %q: invalid column %q", p.Key, p.Column)
		}
		if _, ok := ps.index[p.Key]; ok {
			return nil, fmt.Errorf("duplicate predicate key %q", p.Key)
		}
		ps.index[p.Key] = len(ps.preds)
		ps.preds = append(ps.preds, p)
	}

	for _, b := range bounds {
		lo, ok := ps.lookup(b.Min)
		if !ok || lo.Op != OpGte {
			return nil, fmt.Errorf("bound %q/%q: %q is not a >= predicate", b.Min, b.Max, b.Min)
		}
		hi, ok := ps.lookup(b.Max)
		if !ok || hi.Op != OpLte {
			return nil, fmt.Errorf("bound %q/%q: %q is not a <= predicate", b.Min, b.Max, b.Max)
		}
	}

	return ps, nil
}

// MustPredicateSet is like NewPredicateSet but panics on an invalid
// declaration. It is meant for package-level variables.
func MustPredicateSet(preds []Predicate, bounds ...Bound) *PredicateSet {
	ps, err := NewPredicateSet(preds, bounds...)
	if err != nil {
		panic(err)
	}
	return ps
}

func (ps *PredicateSet) lookup(key string) (Predicate, bool) {
	i, ok := ps.index[key]
	if !ok {
		return Predicate{}, false
	}
	return ps.preds[i], true
}

// Build returns a WHERE clause and its parameters for the recognized,
// non-nil entries of filters. With nothing to filter on it returns an empty
// clause, which callers treat as "match all rows".
func (ps *PredicateSet) Build(filters Filters) (string, []any, error) {
	return ps.BuildAfter(filters, 0)
}

// BuildAfter is Build with placeholders numbered from offset+1, for clauses
// that follow offset earlier parameters.
func (ps *PredicateSet) BuildAfter(filters Filters, offset int) (string, []any, error) {
	args := make([]any, 0, len(filters))
	if len(filters) == 0 {
		return "", args, nil
	}

	values := make(map[string]any, len(ps.preds))
	for _, p := range ps.preds {
		v, ok := filters[p.Key]
		if !ok || v == nil {
			continue
		}

		nv, err := normalize(p, v)
		if err != nil {
			return "", nil, err
		}
		values[p.Key] = nv
	}

	for _, b := range ps.bounds {
		lo, okLo := values[b.Min]
		hi, okHi := values[b.Max]
		if !okLo || !okHi {
			continue
		}
		if asFloat(lo) > asFloat(hi) {
			return "", nil, validationErrorf("%s cannot be greater than %s", b.Min, b.Max)
		}
	}

	where := make([]string, 0, len(values))
	for _, p := range ps.preds {
		v, ok := values[p.Key]
		if !ok {
			continue
		}
		where = append(where, fmt.Sprintf("%s %s $%d", p.Column, p.Op, offset+len(args)+1))
		args = append(args, v)
	}

	if len(where) == 0 {
		return "", args, nil
	}

	return "WHERE " + strings.Join(where, " AND "), args, nil
}

func normalize(p Predicate, v any) (any, error) {
	if p.Op == OpContains {
		s, ok := v.(string)
		if !ok {
			return nil, validationErrorf("%s must be text", p.Key)
		}
		return "%" + EscapeLike(s) + "%", nil
	}

	if p.Integer {
		n, err := ToInt(v)
		if err != nil {
			return nil, validationErrorf("%s must be a whole number", p.Key)
		}
		return n, nil
	}

	if p.Op == OpEq {
		return v, nil
	}

	f, err := ToFloat(v)
	if err != nil {
		return nil, validationErrorf("%s must be a number", p.Key)
	}
	return f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return math.NaN()
}

// ToFloat converts numeric values, json.Number and numeric strings.
func ToFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, err
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unsupported number type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", v)
	}
	return f, nil
}

// ToInt is ToFloat restricted to whole numbers.
func ToInt(v any) (int64, error) {
	f, err := ToFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
	return int64(f), nil
}
