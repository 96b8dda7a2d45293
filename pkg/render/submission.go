package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formfill/pkg/formview"
)

// HiddenField is a hidden input emitted alongside the visible questions. A
// name may repeat to carry every selection of a checkbox answer.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// HiddenAnswers converts the answers of hidden questions into inputs.
func HiddenAnswers(values []formview.HiddenValue) []HiddenField {
	out := make([]HiddenField, 0, len(values))
	for _, value := range values {
		out = append(out, Hidden(value.Name, value.Value))
	}
	return out
}

// MergeHiddenFields appends fields to base. Empty names and exact duplicates
// are dropped; order is otherwise preserved.
func MergeHiddenFields(base []HiddenField, fields ...HiddenField) []HiddenField {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(base)+len(fields))
	seen := make(map[HiddenField]struct{}, len(base)+len(fields))
	for _, field := range append(append([]HiddenField(nil), base...), fields...) {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders fields by name for deterministic rendering,
// keeping the relative order of repeated names.
func SortedHiddenFields(fields []HiddenField) []HiddenField {
	out := MergeHiddenFields(nil, fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
