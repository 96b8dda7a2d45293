package answers

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the shape of an answer value.
type Kind int

const (
	// KindText holds free text and single choices (select, radio).
	KindText Kind = iota
	// KindNumeric holds the raw input of a number question.
	KindNumeric
	// KindMulti holds the ordered selections of a checkbox question.
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindMulti:
		return "multi"
	default:
		return "text"
	}
}

// Value is a tagged answer. Scalars keep the raw string the user entered;
// Multi keeps the selected option values in selection order.
type Value struct {
	kind   Kind
	text   string
	values []string
}

// Text builds a text answer.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Numeric builds a number answer from its raw input.
func Numeric(s string) Value {
	return Value{kind: KindNumeric, text: s}
}

// Multi builds a checkbox answer. A call without values yields an empty list,
// which is still a present answer.
func Multi(values ...string) Value {
	out := make([]string, 0, len(values))
	out = append(out, values...)
	return Value{kind: KindMulti, values: out}
}

// Kind reports the value tag.
func (v Value) Kind() Kind {
	return v.kind
}

// String returns the scalar text. Multi values are joined with commas.
func (v Value) String() string {
	if v.kind == KindMulti {
		return strings.Join(v.values, ",")
	}
	return v.text
}

// Values returns a copy of the selections (nil for scalars).
func (v Value) Values() []string {
	if v.kind != KindMulti {
		return nil
	}
	return slices.Clone(v.values)
}

// Float converts the answer to a number. Empty or unparsable input and multi
// answers convert to NaN.
func (v Value) Float() float64 {
	if v.kind == KindMulti {
		return math.NaN()
	}
	trimmed := strings.TrimSpace(v.text)
	if trimmed == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Contains reports whether the answer equals s (scalars) or includes s
// (multi).
func (v Value) Contains(s string) bool {
	if v.kind == KindMulti {
		return slices.Contains(v.values, s)
	}
	return v.text == s
}

// Len is the number of selections for multi answers and the byte length for
// scalars.
func (v Value) Len() int {
	if v.kind == KindMulti {
		return len(v.values)
	}
	return len(v.text)
}

// IsEmpty reports the "no usable answer" predicate shared by required checks:
// an empty string or an empty selection list.
func (v Value) IsEmpty() bool {
	return v.Len() == 0
}

// Equal compares two values including their tag.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindMulti {
		return slices.Equal(v.values, other.values)
	}
	return v.text == other.text
}

// Any converts the value to its wire representation: string for scalars and
// []string for multi answers.
func (v Value) Any() any {
	if v.kind == KindMulti {
		return v.Values()
	}
	return v.text
}
