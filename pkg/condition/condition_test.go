package condition

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/answers"
)

func TestParse_Kinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Kind
	}{
		{raw: CodeAny, want: KindAny},
		{raw: CodeNone, want: KindNone},
		{raw: CodeNotEmpty, want: KindNotEmpty},
		{raw: CodeIsEmpty, want: KindIsEmpty},
		{raw: CodeTrue, want: KindTruthy},
		{raw: CodeFalse, want: KindFalsy},
		{raw: MultiValuePrefix + "a,b", want: KindOneOf},
		{raw: RangePrefix + "1-5", want: KindRange},
		{raw: "yes", want: KindEquals},
		{raw: "__unknown__", want: KindEquals},
	}

	for _, tc := range cases {
		cond := Parse(tc.raw)
		if cond.Kind() != tc.want {
			t.Fatalf("Parse(%q) kind = %s, want %s", tc.raw, cond.Kind(), tc.want)
		}
		if got := cond.String(); got != tc.raw {
			t.Fatalf("String() = %q, want %q", got, tc.raw)
		}
	}
}

func TestParse_MultiValueTrimsWhitespace(t *testing.T) {
	t.Parallel()

	cond := Parse(MultiValuePrefix + " red ,green,  blue")
	if diff := cmp.Diff([]string{"red", "green", "blue"}, cond.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !cond.Match(answers.Text("green"), true) {
		t.Fatalf("expected green to match")
	}
	if !cond.Match(answers.Text("blue"), true) {
		t.Fatalf("expected blue to match")
	}
	if cond.Match(answers.Text("purple"), true) {
		t.Fatalf("expected purple to be outside the list")
	}
	if cond.Match(answers.Text(" red "), true) {
		t.Fatalf("answers are compared exactly; padded answer must not match")
	}
	if cond.Match(answers.Value{}, false) {
		t.Fatalf("missing answer must not match")
	}
}

func TestRange_Boundaries(t *testing.T) {
	t.Parallel()

	cond := Parse(RangePrefix + "18-65")

	cases := []struct {
		input string
		want  bool
	}{
		{input: "18", want: true},
		{input: "65", want: true},
		{input: "40", want: true},
		{input: "17", want: false},
		{input: "66", want: false},
		{input: "abc", want: false},
		{input: "", want: false},
	}

	for _, tc := range cases {
		if got := cond.Match(answers.Numeric(tc.input), true); got != tc.want {
			t.Fatalf("range 18-65 with %q = %v, want %v", tc.input, got, tc.want)
		}
	}
	if cond.Match(answers.Value{}, false) {
		t.Fatalf("missing answer must be outside the range")
	}
}

func TestRange_NegativeMinimum(t *testing.T) {
	t.Parallel()

	cond := Parse(RangePrefix + "-10-10")
	lo, hi := cond.Bounds()
	if lo != -10 || hi != 10 {
		t.Fatalf("bounds = (%v, %v), want (-10, 10)", lo, hi)
	}
	if !cond.Match(answers.Numeric("-10"), true) {
		t.Fatalf("expected -10 inside")
	}
	if cond.Match(answers.Numeric("-11"), true) {
		t.Fatalf("expected -11 outside")
	}
}

func TestParse_MalformedRangeNeverMatches(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		RangePrefix + "abc",
		RangePrefix + "1-x",
		RangePrefix + "a-b",
		RangePrefix + "10-5",
		RangePrefix,
	} {
		cond := Parse(raw)
		if cond.Kind() != KindRange {
			t.Fatalf("Parse(%q) kind = %s, want range", raw, cond.Kind())
		}
		if !errors.Is(cond.Problem(), ErrMalformed) {
			t.Fatalf("Parse(%q) problem = %v, want ErrMalformed", raw, cond.Problem())
		}
		for _, input := range []string{"7", "10", "5", "-1"} {
			if cond.Match(answers.Numeric(input), true) {
				t.Fatalf("Parse(%q) matched %q", raw, input)
			}
		}
		if got := cond.String(); got != raw {
			t.Fatalf("String() = %q, want %q", got, raw)
		}
	}
	if err := Parse(RangePrefix + "5-5").Problem(); err != nil {
		t.Fatalf("single-value range should be valid: %v", err)
	}
}

func TestMatch_SymbolicCodes(t *testing.T) {
	t.Parallel()

	type probe struct {
		value   answers.Value
		present bool
	}
	missing := probe{}
	empty := probe{value: answers.Text(""), present: true}
	filled := probe{value: answers.Text("x"), present: true}
	yes := probe{value: answers.Text("yes"), present: true}
	checked := probe{value: answers.Text("checked"), present: true}
	no := probe{value: answers.Text("no"), present: true}
	unchecked := probe{value: answers.Text("unchecked"), present: true}
	noneSelected := probe{value: answers.Multi(), present: true}

	cases := []struct {
		name string
		code string
		in   probe
		want bool
	}{
		{"any missing", CodeAny, missing, false},
		{"any empty", CodeAny, empty, true},
		{"none missing", CodeNone, missing, true},
		{"none filled", CodeNone, filled, false},
		{"not empty filled", CodeNotEmpty, filled, true},
		{"not empty empty", CodeNotEmpty, empty, false},
		{"not empty missing", CodeNotEmpty, missing, false},
		{"is empty empty", CodeIsEmpty, empty, true},
		{"is empty missing", CodeIsEmpty, missing, true},
		{"is empty filled", CodeIsEmpty, filled, false},
		{"is empty no selection", CodeIsEmpty, noneSelected, true},
		{"true yes", CodeTrue, yes, true},
		{"true checked", CodeTrue, checked, true},
		{"true no", CodeTrue, no, false},
		{"true missing", CodeTrue, missing, false},
		{"false no", CodeFalse, no, true},
		{"false unchecked", CodeFalse, unchecked, true},
		{"false yes", CodeFalse, yes, false},
		{"false missing", CodeFalse, missing, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond := Parse(tc.code)
			if got := cond.Match(tc.in.value, tc.in.present); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatch_EqualsLiteral(t *testing.T) {
	t.Parallel()

	cond := Parse("Yes")
	if !cond.Match(answers.Text("Yes"), true) {
		t.Fatalf("expected exact literal to match")
	}
	if cond.Match(answers.Text("yes"), true) {
		t.Fatalf("literal equality is case-sensitive")
	}
	if !cond.Match(answers.Multi("No", "Yes"), true) {
		t.Fatalf("expected checkbox answer containing the literal to match")
	}
}
