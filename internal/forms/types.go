package forms

import (
	"encoding/json"
	"fmt"
)

// Kind is the widget kind a form input renders as. The numeric type ids in
// the wire schema (1-17) are a fixed contract with the frontend; Kind is
// the closed set they map onto, with unknown ids routed to KindText.
type Kind int

const (
	KindText Kind = iota
	KindSelect
	KindColor
	KindDate
	KindEmail
	KindFilePDF
	KindFileImage
	KindNumber
	KindPassword
	KindRadio
	KindPhone
	KindTime
	KindURL
	KindTextarea
	KindCheckbox
	KindParagraph
)

// InputType carries the numeric type id from the backend schema.
type InputType struct {
	ID int `json:"id"`
}

// Kind maps the wire id onto a widget kind. Unknown ids fall back to text.
func (t InputType) Kind() Kind {
	switch t.ID {
	case 1:
		return KindText
	case 2:
		return KindSelect
	case 3:
		return KindColor
	case 4:
		return KindDate
	case 5:
		return KindEmail
	case 6:
		return KindFilePDF
	case 7:
		return KindFileImage
	case 8:
		return KindNumber
	case 9:
		return KindPassword
	case 10:
		return KindRadio
	case 12:
		return KindPhone
	case 13:
		return KindTime
	case 14:
		return KindURL
	case 15:
		return KindTextarea
	case 16:
		return KindCheckbox
	case 17:
		return KindParagraph
	default:
		return KindText
	}
}

// Choice reports whether the kind takes its value from an options list.
func (k Kind) Choice() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// Multi reports whether the kind holds multiple selected values.
func (k Kind) Multi() bool {
	return k == KindCheckbox
}

// FormInput is one typed input in a schema group. InputCode is unique
// across all groups of a schema and joins answers back to the schema.
type FormInput struct {
	InputCode   string    `json:"inputcode"`
	NameEnglish string    `json:"nameEnglish"`
	NameFrench  string    `json:"nameFrench,omitempty"`
	Type        InputType `json:"inputtype"`
	Mandatory   string    `json:"is_mandatory"` // "YES" | "NO"
	AllowOther  string    `json:"allow_other"`  // "YES" | "NO"
}

// IsMandatory reports whether the input must be answered.
func (i FormInput) IsMandatory() bool { return i.Mandatory == "YES" }

// AllowsOther reports whether the input carries a free-text "Other" companion.
func (i FormInput) AllowsOther() bool { return i.AllowOther == "YES" }

// InputOption is one choice for select/radio/checkbox inputs.
type InputOption struct {
	ID             int    `json:"id"`
	ContentEnglish string `json:"contentEnglish"`
}

// GroupEntry pairs an input with its options and optional pre-filled value.
type GroupEntry struct {
	Input   FormInput     `json:"input"`
	Options []InputOption `json:"options,omitempty"`
	Value   *Value        `json:"value,omitempty"`
}

// FormInputGroup is one named wizard step.
type FormInputGroup struct {
	Name    string       `json:"name"`
	Entries []GroupEntry `json:"inputs"`
}

// AnswerField is one serialized answer in the submission payload.
type AnswerField struct {
	InputCode  string `json:"input_code"`
	InputType  int    `json:"input_type"`
	InputValue string `json:"input_value"`
	InputName  string `json:"input_name"`
}

// Value is a form answer: a single string or, for multi-select inputs, a
// list of strings. It marshals to whichever shape it holds.
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// TextValue wraps a plain string answer.
func TextValue(s string) Value { return Value{Text: s} }

// ListValue wraps a multi-select answer.
func ListValue(items ...string) Value { return Value{List: items, IsList: true} }

// Empty reports whether the value counts as unanswered.
func (v Value) Empty() bool {
	if v.IsList {
		return len(v.List) == 0
	}
	return v.Text == ""
}

// Contains reports whether a list value contains s, or a text value equals
// it, using the given comparison.
func (v Value) Contains(s string, eq func(a, b string) bool) bool {
	if v.IsList {
		for _, item := range v.List {
			if eq(item, s) {
				return true
			}
		}
		return false
	}
	return eq(v.Text, s)
}

// String flattens the value for the submission payload. List values are
// joined with ", ".
func (v Value) String() string {
	if v.IsList {
		return joinComma(v.List)
	}
	return v.Text
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// MarshalJSON emits a JSON string or array depending on the value shape.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON string or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = Value{List: list, IsList: true}
		return nil
	}
	return fmt.Errorf("form value must be a string or array of strings")
}

// FormValues maps input codes to answers. "Other" companion answers are
// stored under "<inputcode>_other".
type FormValues map[string]Value

// DecodeGroups parses the stored JSONB group array of a schema.
func DecodeGroups(raw []byte) ([]FormInputGroup, error) {
	var groups []FormInputGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("decode form groups: %w", err)
	}
	return groups, nil
}

// OtherKey returns the companion value key for a choice input.
func OtherKey(inputCode string) string { return inputCode + "_other" }
