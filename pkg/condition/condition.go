package condition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfill/pkg/answers"
)

// Symbolic codes and parametric prefixes accepted in a showWhen `equals`
// field.
const (
	CodeAny      = "__any__"
	CodeNone     = "__none__"
	CodeNotEmpty = "__not_empty__"
	CodeIsEmpty  = "__is_empty__"
	CodeTrue     = "__true__"
	CodeFalse    = "__false__"

	MultiValuePrefix = "__in__:"
	RangePrefix      = "__range__:"
)

// ErrMalformed reports a range whose bounds do not parse or can never be
// satisfied.
var ErrMalformed = errors.New("condition: malformed condition")

// Kind tags a parsed condition.
type Kind int

const (
	KindEquals Kind = iota
	KindAny
	KindNone
	KindNotEmpty
	KindIsEmpty
	KindTruthy
	KindFalsy
	KindOneOf
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNone:
		return "none"
	case KindNotEmpty:
		return "not_empty"
	case KindIsEmpty:
		return "is_empty"
	case KindTruthy:
		return "truthy"
	case KindFalsy:
		return "falsy"
	case KindOneOf:
		return "one_of"
	case KindRange:
		return "range"
	default:
		return "equals"
	}
}

var (
	truthyWords = []string{"true", "yes", "checked"}
	falsyWords  = []string{"false", "no", "unchecked"}
)

// Condition is the parsed form of an `equals` expression. Build it with Parse
// once when the schema loads and evaluate it with Match.
type Condition struct {
	kind    Kind
	literal string
	values  []string
	min     float64
	max     float64
	raw     string
}

// Equals builds a literal equality condition.
func Equals(literal string) Condition {
	return Condition{kind: KindEquals, literal: literal}
}

// OneOf builds a membership condition.
func OneOf(values ...string) Condition {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return Condition{kind: KindOneOf, values: out}
}

// Range builds an inclusive numeric range condition.
func Range(lo, hi float64) Condition {
	return Condition{kind: KindRange, min: lo, max: hi, raw: formatFloat(lo) + "-" + formatFloat(hi)}
}

// Parse turns the raw `equals` string into a Condition. Unknown strings are
// literal equality. A range with unparseable or inverted bounds parses into a
// condition that never matches; Problem reports it.
func Parse(raw string) Condition {
	switch raw {
	case CodeAny:
		return Condition{kind: KindAny}
	case CodeNone:
		return Condition{kind: KindNone}
	case CodeNotEmpty:
		return Condition{kind: KindNotEmpty}
	case CodeIsEmpty:
		return Condition{kind: KindIsEmpty}
	case CodeTrue:
		return Condition{kind: KindTruthy}
	case CodeFalse:
		return Condition{kind: KindFalsy}
	}

	if rest, ok := strings.CutPrefix(raw, MultiValuePrefix); ok {
		return OneOf(strings.Split(rest, ",")...)
	}
	if rest, ok := strings.CutPrefix(raw, RangePrefix); ok {
		return parseRange(rest)
	}
	return Equals(raw)
}

func parseRange(bounds string) Condition {
	bounds = strings.TrimSpace(bounds)
	// Skip index 0 so a negative minimum keeps its sign.
	lo, hi := bounds, ""
	if len(bounds) > 1 {
		if i := strings.Index(bounds[1:], "-"); i >= 0 {
			lo, hi = bounds[:i+1], bounds[i+2:]
		}
	}
	return Condition{kind: KindRange, min: parseBound(lo), max: parseBound(hi), raw: bounds}
}

// parseBound yields NaN for anything that is not a number, which no
// comparison accepts.
func parseBound(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Problem reports why a range condition can never match, or nil.
func (c Condition) Problem() error {
	if c.kind != KindRange {
		return nil
	}
	switch {
	case math.IsNaN(c.min):
		return fmt.Errorf("%w: range %q: invalid min", ErrMalformed, c.raw)
	case math.IsNaN(c.max):
		return fmt.Errorf("%w: range %q: invalid max", ErrMalformed, c.raw)
	case c.min > c.max:
		return fmt.Errorf("%w: range %q: min exceeds max", ErrMalformed, c.raw)
	}
	return nil
}

// Kind reports the condition tag.
func (c Condition) Kind() Kind {
	return c.kind
}

// Literal returns the comparison literal of an Equals condition.
func (c Condition) Literal() string {
	return c.literal
}

// Values returns the accepted values of a OneOf condition.
func (c Condition) Values() []string {
	return append([]string(nil), c.values...)
}

// Bounds returns the inclusive limits of a Range condition.
func (c Condition) Bounds() (float64, float64) {
	return c.min, c.max
}

// Match evaluates the condition against an answer. present is false when the
// question has no answer yet.
func (c Condition) Match(value answers.Value, present bool) bool {
	switch c.kind {
	case KindAny:
		return present
	case KindNone:
		return !present
	case KindNotEmpty:
		return present && !value.IsEmpty()
	case KindIsEmpty:
		return !present || value.IsEmpty()
	case KindTruthy:
		return present && value.Kind() != answers.KindMulti && containsWord(truthyWords, value.String())
	case KindFalsy:
		return present && value.Kind() != answers.KindMulti && containsWord(falsyWords, value.String())
	case KindOneOf:
		if !present {
			return false
		}
		for _, accepted := range c.values {
			if value.Contains(accepted) {
				return true
			}
		}
		return false
	case KindRange:
		if !present {
			return false
		}
		n := value.Float()
		if math.IsNaN(n) {
			return false
		}
		return n >= c.min && n <= c.max
	default:
		return present && value.Contains(c.literal)
	}
}

// String renders the condition back into its wire form.
func (c Condition) String() string {
	switch c.kind {
	case KindAny:
		return CodeAny
	case KindNone:
		return CodeNone
	case KindNotEmpty:
		return CodeNotEmpty
	case KindIsEmpty:
		return CodeIsEmpty
	case KindTruthy:
		return CodeTrue
	case KindFalsy:
		return CodeFalse
	case KindOneOf:
		return MultiValuePrefix + strings.Join(c.values, ",")
	case KindRange:
		if c.Problem() != nil {
			return RangePrefix + c.raw
		}
		return RangePrefix + formatFloat(c.min) + "-" + formatFloat(c.max)
	default:
		return c.literal
	}
}

func containsWord(words []string, s string) bool {
	for _, w := range words {
		if w == s {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
