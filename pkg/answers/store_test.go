package answers

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_ToggleRoundTripKeepsEmptyList(t *testing.T) {
	t.Parallel()

	store := New()
	store.Toggle("topics", "go", true)
	store.Toggle("topics", "go", false)

	got, ok := store.Get("topics")
	if !ok {
		t.Fatalf("expected topics key to remain after toggling off")
	}
	if got.Kind() != KindMulti {
		t.Fatalf("expected multi value, got %s", got.Kind())
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty selection, got %v", got.Values())
	}
	if !got.IsEmpty() {
		t.Fatalf("expected empty selection to report IsEmpty")
	}
}

func TestStore_ToggleKeepsSelectionOrderAndIgnoresDuplicates(t *testing.T) {
	t.Parallel()

	store := New()
	store.Toggle("topics", "rust", true)
	store.Toggle("topics", "go", true)
	store.Toggle("topics", "rust", true)

	got, _ := store.Get("topics")
	if diff := cmp.Diff([]string{"rust", "go"}, got.Values()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Payload(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("name", Text("Ada"))
	store.Set("age", Numeric("36"))
	store.Set("topics", Multi("go", "sql"))

	want := map[string]any{
		"name":   "Ada",
		"age":    "36",
		"topics": []string{"go", "sql"},
	}
	if diff := cmp.Diff(want, store.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	store := New()
	store.Toggle("topics", "go", true)
	clone := store.Clone()
	store.Toggle("topics", "sql", true)

	got, _ := clone.Get("topics")
	if diff := cmp.Diff([]string{"go"}, got.Values()); diff != "" {
		t.Fatalf("clone mutated (-want +got):\n%s", diff)
	}
}

func TestFromPayload(t *testing.T) {
	t.Parallel()

	store, err := FromPayload(map[string]any{
		"name":   "Ada",
		"topics": []any{"go"},
		"age":    float64(36),
		"skip":   nil,
	})
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 answers, got %d", store.Len())
	}
	age, _ := store.Get("age")
	if age.Float() != 36 {
		t.Fatalf("expected numeric age 36, got %v", age.Float())
	}

	if _, err := FromPayload(map[string]any{"bad": []any{1}}); err == nil {
		t.Fatalf("expected error for non-string list item")
	}
}

func TestValue_Float(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value Value
		want  float64
		nan   bool
	}{
		{name: "numeric", value: Numeric("42"), want: 42},
		{name: "padded", value: Text(" 7.5 "), want: 7.5},
		{name: "empty", value: Numeric(""), nan: true},
		{name: "text", value: Text("abc"), nan: true},
		{name: "multi", value: Multi("1"), nan: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.value.Float()
			if tc.nan {
				if !math.IsNaN(got) {
					t.Fatalf("expected NaN, got %v", got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}
