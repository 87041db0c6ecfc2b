// internal/models/answer.go
package models

import (
	"encoding/json"
	"fmt"
)

// AnswerKind discriminates the closed set of answer value variants.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerString
	AnswerNumber
	AnswerBool
	AnswerStringList
)

// AnswerValue is a tagged union over the value types a question can accept:
// string, number, boolean, or a list of strings (multiselect/checkbox).
type AnswerValue struct {
	Kind AnswerKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

func StringAnswer(s string) AnswerValue     { return AnswerValue{Kind: AnswerString, Str: s} }
func NumberAnswer(n float64) AnswerValue    { return AnswerValue{Kind: AnswerNumber, Num: n} }
func BoolAnswer(b bool) AnswerValue         { return AnswerValue{Kind: AnswerBool, Bool: b} }
func ListAnswer(vs ...string) AnswerValue   { return AnswerValue{Kind: AnswerStringList, List: vs} }

// IsAnswered reports whether the value counts as an answer: not empty/absent,
// and for list values, non-empty. A false boolean and a zero number are
// deliberate answers and count.
func (a AnswerValue) IsAnswered() bool {
	switch a.Kind {
	case AnswerString:
		return a.Str != ""
	case AnswerNumber, AnswerBool:
		return true
	case AnswerStringList:
		return len(a.List) > 0
	default:
		return false
	}
}

// String renders the value for display and logging.
func (a AnswerValue) String() string {
	switch a.Kind {
	case AnswerString:
		return a.Str
	case AnswerNumber:
		return fmt.Sprintf("%g", a.Num)
	case AnswerBool:
		return fmt.Sprintf("%t", a.Bool)
	case AnswerStringList:
		out, _ := json.Marshal(a.List)
		return string(out)
	default:
		return ""
	}
}

// MarshalJSON emits the underlying value, not the tag.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerString:
		return json.Marshal(a.Str)
	case AnswerNumber:
		return json.Marshal(a.Num)
	case AnswerBool:
		return json.Marshal(a.Bool)
	case AnswerStringList:
		return json.Marshal(a.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON sniffs the wire type and sets the matching variant.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*a = AnswerValue{}
	case string:
		*a = StringAnswer(v)
	case float64:
		*a = NumberAnswer(v)
	case bool:
		*a = BoolAnswer(v)
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("answer list contains non-string element: %v", item)
			}
			list = append(list, s)
		}
		*a = AnswerValue{Kind: AnswerStringList, List: list}
	default:
		return fmt.Errorf("unsupported answer value type %T", raw)
	}
	return nil
}

// GroupResponses maps question id to the answer given.
type GroupResponses map[string]AnswerValue

// ResponseSet maps group id to the responses recorded for that group.
type ResponseSet map[string]GroupResponses

// Get returns the answer for a question within a group.
func (r ResponseSet) Get(groupID, questionID string) (AnswerValue, bool) {
	group, ok := r[groupID]
	if !ok {
		return AnswerValue{}, false
	}
	v, ok := group[questionID]
	return v, ok
}

// Set records an answer, creating the group map on first write.
func (r ResponseSet) Set(groupID, questionID string, value AnswerValue) {
	group, ok := r[groupID]
	if !ok {
		group = GroupResponses{}
		r[groupID] = group
	}
	group[questionID] = value
}

// Clone returns a deep copy so callers can snapshot without aliasing.
func (r ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(r))
	for gid, group := range r {
		cp := make(GroupResponses, len(group))
		for qid, v := range group {
			if v.Kind == AnswerStringList {
				v.List = append([]string(nil), v.List...)
			}
			cp[qid] = v
		}
		out[gid] = cp
	}
	return out
}
