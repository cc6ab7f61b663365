package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AnswerValue holds one question's in-progress answer: either a scalar string
// (text, textarea, radio, select) or a set of chosen options (checkbox).
type AnswerValue struct {
	text    string
	choices []string
	isSet   bool
}

// TextAnswer returns a scalar answer.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{text: s}
}

// ChoiceSet returns a set answer holding the given options. Duplicates collapse.
func ChoiceSet(options ...string) AnswerValue {
	v := AnswerValue{isSet: true, choices: []string{}}
	for _, o := range options {
		v = v.With(o)
	}
	return v
}

// IsSet reports whether the value is a checkbox-style option set.
func (v AnswerValue) IsSet() bool {
	return v.isSet
}

// Text returns the scalar value. It is empty for sets.
func (v AnswerValue) Text() string {
	return v.text
}

// Has reports whether option is in the set.
func (v AnswerValue) Has(option string) bool {
	for _, c := range v.choices {
		if c == option {
			return true
		}
	}
	return false
}

// Choices returns a copy of the selected options in no particular order.
func (v AnswerValue) Choices() []string {
	return append([]string(nil), v.choices...)
}

// Len returns the number of selected options for sets and 0 or 1 for scalars.
func (v AnswerValue) Len() int {
	if v.isSet {
		return len(v.choices)
	}
	if v.text == "" {
		return 0
	}
	return 1
}

// IsEmpty reports whether the value counts as "no answer" for required checks.
func (v AnswerValue) IsEmpty() bool {
	return v.Len() == 0
}

// With returns a set that also contains option.
func (v AnswerValue) With(option string) AnswerValue {
	if v.Has(option) {
		return v
	}
	return AnswerValue{isSet: true, choices: append(v.Choices(), option)}
}

// Without returns a set that no longer contains option.
func (v AnswerValue) Without(option string) AnswerValue {
	out := AnswerValue{isSet: true, choices: make([]string, 0, len(v.choices))}
	for _, c := range v.choices {
		if c != option {
			out.choices = append(out.choices, c)
		}
	}
	return out
}

// String renders scalars as-is and sets sorted and comma-joined. Use the
// normalizer for schema-ordered checkbox output.
func (v AnswerValue) String() string {
	if !v.isSet {
		return v.text
	}
	sorted := v.Choices()
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.isSet {
		choices := v.choices
		if choices == nil {
			choices = []string{}
		}
		return json.Marshal(choices)
	}
	return json.Marshal(v.text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*v = AnswerValue{}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var choices []string
		if err := json.Unmarshal(trimmed, &choices); err != nil {
			return fmt.Errorf("answer must be a string or an array of strings: %w", err)
		}
		*v = ChoiceSet(choices...)
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*v = TextAnswer(text)
		return nil
	default:
		return fmt.Errorf("answer must be a string or an array of strings, got %s", string(trimmed))
	}
}

// AnswerMap is one respondent's in-progress answers keyed by question position.
// A missing key means "not answered yet", which is distinct from an empty string.
type AnswerMap map[int]AnswerValue

// Clone returns a shallow copy; AnswerValue is immutable so this is sufficient.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ActiveSet is the set of question positions currently visible to the respondent.
type ActiveSet map[int]struct{}

// AllActive marks every position of an n-question survey active.
func AllActive(n int) ActiveSet {
	set := make(ActiveSet, n)
	for i := 0; i < n; i++ {
		set[i] = struct{}{}
	}
	return set
}

// ActiveIndices builds a set from explicit positions.
func ActiveIndices(indices ...int) ActiveSet {
	set := make(ActiveSet, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return set
}

func (s ActiveSet) Has(index int) bool {
	_, ok := s[index]
	return ok
}

// Indices returns the active positions in ascending order.
func (s ActiveSet) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
