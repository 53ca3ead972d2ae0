package checklist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Condition is one of the five condition codes an operator can record for a
// boolean-kind item.
type Condition string

const (
	ConditionAdequate  Condition = "C" // Cukup
	ConditionDeficient Condition = "K" // Kurang
	ConditionLeaking   Condition = "B" // Bocor
	ConditionNormal    Condition = "N" // Normal
	ConditionBroken    Condition = "R" // Rusak, requires a defect comment
)

// Conditions lists the codes in the order they appear on the printed form.
var Conditions = []Condition{
	ConditionAdequate,
	ConditionDeficient,
	ConditionLeaking,
	ConditionNormal,
	ConditionBroken,
}

// Valid reports whether c is a known condition code.
func (c Condition) Valid() bool {
	switch c {
	case ConditionAdequate, ConditionDeficient, ConditionLeaking, ConditionNormal, ConditionBroken:
		return true
	}
	return false
}

// Defective reports whether the code denotes a defective condition.
func (c Condition) Defective() bool {
	switch c {
	case ConditionDeficient, ConditionLeaking, ConditionBroken:
		return true
	}
	return false
}

// AnswerKind tags the variants of Answer.
type AnswerKind int

const (
	AnswerCondition AnswerKind = iota
	AnswerText
	AnswerNumber
	AnswerSignature
)

// Answer is the recorded value for one item. Exactly one variant is
// populated, selected by Kind.
type Answer struct {
	Kind    AnswerKind
	Code    Condition
	Comment string
	Text    string
	Number  float64
	Image   string
}

// ConditionAnswer builds a condition answer with an optional defect comment.
func ConditionAnswer(code Condition, comment string) Answer {
	return Answer{Kind: AnswerCondition, Code: code, Comment: comment}
}

// TextAnswer builds a free-text answer.
func TextAnswer(value string) Answer {
	return Answer{Kind: AnswerText, Text: value}
}

// NumberAnswer builds a numeric answer.
func NumberAnswer(value float64) Answer {
	return Answer{Kind: AnswerNumber, Number: value}
}

// SignatureAnswer builds an answer holding an encoded signature image.
func SignatureAnswer(image string) Answer {
	return Answer{Kind: AnswerSignature, Image: image}
}

// Empty reports whether the answer carries no value.
func (a Answer) Empty() bool {
	switch a.Kind {
	case AnswerCondition:
		return a.Code == ""
	case AnswerText:
		return strings.TrimSpace(a.Text) == ""
	case AnswerSignature:
		return a.Image == ""
	}
	return false
}

// AnswerSet maps item ids to answers. Its JSON form is the legacy flat map
// the mobile client and the inspections table use: condition codes under the
// item id, defect comments under "<id>_comment", signatures under the
// signature_* keys.
type AnswerSet map[string]Answer

const commentSuffix = "_comment"

// MarshalJSON flattens the set into the legacy wire shape.
func (s AnswerSet) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s)*2)
	for id, a := range s {
		switch a.Kind {
		case AnswerCondition:
			flat[id] = string(a.Code)
			if a.Comment != "" {
				flat[id+commentSuffix] = a.Comment
			}
		case AnswerText:
			flat[id] = a.Text
		case AnswerNumber:
			flat[id] = a.Number
		case AnswerSignature:
			flat[id] = a.Image
		default:
			return nil, errors.Errorf("answer %s has unknown kind %d", id, a.Kind)
		}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON rebuilds the tagged answers from the flat wire shape.
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return errors.WithStack(err)
	}

	comments := make(map[string]string)
	for k, v := range flat {
		if strings.HasSuffix(k, commentSuffix) {
			if text, ok := v.(string); ok {
				comments[strings.TrimSuffix(k, commentSuffix)] = text
			}
		}
	}

	out := make(AnswerSet, len(flat))
	for k, v := range flat {
		if strings.HasSuffix(k, commentSuffix) {
			continue
		}
		switch val := v.(type) {
		case string:
			switch {
			case strings.HasPrefix(k, "signature_"):
				out[k] = SignatureAnswer(val)
			case Condition(val).Valid():
				out[k] = ConditionAnswer(Condition(val), comments[k])
			default:
				out[k] = TextAnswer(val)
			}
		case float64:
			out[k] = NumberAnswer(val)
		case nil:
			// skip unanswered keys
		default:
			return errors.Errorf("answer %s has unsupported value %v", k, v)
		}
	}
	*s = out
	return nil
}

// Condition returns the condition answered for an item, if any.
func (s AnswerSet) Condition(id string) (Condition, bool) {
	a, ok := s[id]
	if !ok || a.Kind != AnswerCondition || a.Code == "" {
		return "", false
	}
	return a.Code, true
}

// Comment returns the defect comment recorded alongside an item.
func (s AnswerSet) Comment(id string) string {
	if a, ok := s[id]; ok && a.Kind == AnswerCondition {
		return a.Comment
	}
	return ""
}

// Text returns the textual value for an item; condition codes read as their
// letter so callers rendering raw values need no type switch.
func (s AnswerSet) Text(id string) string {
	a, ok := s[id]
	if !ok {
		return ""
	}
	switch a.Kind {
	case AnswerText:
		return a.Text
	case AnswerCondition:
		return string(a.Code)
	case AnswerNumber:
		return fmt.Sprintf("%g", a.Number)
	case AnswerSignature:
		return a.Image
	}
	return ""
}

// Signature returns an encoded signature image stored under key, or "".
func (s AnswerSet) Signature(key string) string {
	if a, ok := s[key]; ok && a.Kind == AnswerSignature {
		return a.Image
	}
	return ""
}

// ValidationError names the field or item that blocks a transition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
