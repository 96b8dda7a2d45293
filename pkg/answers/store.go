package answers

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Reader is the read side evaluators depend on.
type Reader interface {
	Get(id string) (Value, bool)
}

// Store maps question ids to their current answers. A missing key means "no
// answer yet". A Store has a single owner and is not safe for concurrent use.
type Store struct {
	values map[string]Value
}

var _ Reader = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]Value)}
}

// Get returns the answer for id.
func (s *Store) Get(id string) (Value, bool) {
	if s == nil || len(s.values) == 0 {
		return Value{}, false
	}
	v, ok := s.values[id]
	return v, ok
}

// Set adds or overwrites the answer for id. Empty ids are ignored.
func (s *Store) Set(id string, value Value) {
	id = strings.TrimSpace(id)
	if s == nil || id == "" {
		return
	}
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	s.values[id] = value
}

// Toggle flips one checkbox option. Turning an option on appends it when not
// already selected; turning it off removes it. The key always remains, so an
// on/off round trip leaves an empty list behind.
func (s *Store) Toggle(id, option string, on bool) {
	current, _ := s.Get(id)
	selected := current.Values()
	if selected == nil {
		selected = []string{}
	}
	if on {
		if !slices.Contains(selected, option) {
			selected = append(selected, option)
		}
	} else {
		selected = slices.DeleteFunc(selected, func(v string) bool { return v == option })
	}
	s.Set(id, Multi(selected...))
}

// Delete removes the answer for id.
func (s *Store) Delete(id string) {
	if s == nil {
		return
	}
	delete(s.values, id)
}

// Clear discards every answer.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.values = make(map[string]Value)
}

// Len reports how many questions have an answer.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// IDs returns the answered question ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil || len(s.values) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Payload converts the store into the submission `responses` map.
func (s *Store) Payload() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for id, value := range s.values {
		out[id] = value.Any()
	}
	return out
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	out := New()
	if s == nil {
		return out
	}
	for id, value := range s.values {
		if value.kind == KindMulti {
			value = Multi(value.values...)
		}
		out.values[id] = value
	}
	return out
}

// FromPayload rebuilds a store from a decoded responses map. Strings become
// text answers and string lists become multi answers; numbers keep their
// formatted form as numeric answers.
func FromPayload(payload map[string]any) (*Store, error) {
	store := New()
	for id, raw := range payload {
		switch typed := raw.(type) {
		case nil:
			continue
		case string:
			store.Set(id, Text(typed))
		case []string:
			store.Set(id, Multi(typed...))
		case []any:
			items := make([]string, 0, len(typed))
			for _, item := range typed {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("answers: %s: unsupported list item %T", id, item)
				}
				items = append(items, str)
			}
			store.Set(id, Multi(items...))
		case float64, int, int64:
			store.Set(id, Numeric(fmt.Sprint(typed)))
		case bool:
			store.Set(id, Text(fmt.Sprint(typed)))
		default:
			return nil, fmt.Errorf("answers: %s: unsupported value %T", id, raw)
		}
	}
	return store, nil
}
