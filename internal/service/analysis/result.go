package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Label is the closed classification enumeration for a call outcome.
type Label string

const (
	LabelBooked   Label = "Booked"
	LabelUnbooked Label = "Unbooked"
	LabelNotALead Label = "Not a Lead"
	LabelExcused  Label = "Excused"
)

// Valid reports whether l is one of the four known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelBooked, LabelUnbooked, LabelNotALead, LabelExcused:
		return true
	}
	return false
}

// Booked reports whether the call outcome triggers the success path.
func (l Label) Booked() bool {
	return l == LabelBooked
}

// Entity is one extracted call fact. Entities keep the order they appear in
// the model's JSON reply.
type Entity struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result is a parsed call analysis.
type Result struct {
	Class       Label    `json:"class"`
	Explanation string   `json:"explanation"`
	Summary     string   `json:"summary"`
	Entities    []Entity `json:"entities"`
}

// MalformedAnalysisError reports a model reply that does not match the
// required JSON shape.
type MalformedAnalysisError struct {
	Reason string
	Err    error
}

func (e *MalformedAnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed analysis: %s: %v", e.Reason, e.Err)
	}
	return "malformed analysis: " + e.Reason
}

func (e *MalformedAnalysisError) Unwrap() error {
	return e.Err
}

// Top-level keys required in the model's reply, matching the prompt.
const (
	keyClass       = "Class"
	keyExplanation = "Explanation"
	keySummary     = "Summary"
	keyEntities    = "Entities"
)

// ParseAnalysis parses a raw completion reply as the fixed-shape analysis
// document. It fails closed: invalid JSON, a missing top-level key, a
// non-object Entities value, or a classification outside the four known
// labels all return a *MalformedAnalysisError. Unknown top-level keys are
// ignored.
func ParseAnalysis(raw string) (*Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, &MalformedAnalysisError{Reason: "reply is not a JSON object", Err: err}
	}

	for _, key := range []string{keyClass, keyExplanation, keySummary, keyEntities} {
		if _, ok := top[key]; !ok {
			return nil, &MalformedAnalysisError{Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	res := &Result{}

	var class string
	if err := json.Unmarshal(top[keyClass], &class); err != nil {
		return nil, &MalformedAnalysisError{Reason: "Class is not a string", Err: err}
	}
	res.Class = Label(strings.TrimSpace(class))
	if !res.Class.Valid() {
		return nil, &MalformedAnalysisError{Reason: fmt.Sprintf("unknown classification %q", class)}
	}

	if err := json.Unmarshal(top[keyExplanation], &res.Explanation); err != nil {
		return nil, &MalformedAnalysisError{Reason: "Explanation is not a string", Err: err}
	}
	if err := json.Unmarshal(top[keySummary], &res.Summary); err != nil {
		return nil, &MalformedAnalysisError{Reason: "Summary is not a string", Err: err}
	}

	entities, err := parseEntities(top[keyEntities])
	if err != nil {
		return nil, err
	}
	res.Entities = entities

	return res, nil
}

// parseEntities walks the Entities object with a token decoder so the pairs
// keep the order they appear in the reply.
func parseEntities(raw json.RawMessage) ([]Entity, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, &MalformedAnalysisError{Reason: "Entities is not a JSON object", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &MalformedAnalysisError{Reason: "Entities is not a JSON object"}
	}

	var entities []Entity
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &MalformedAnalysisError{Reason: "Entities object is truncated", Err: err}
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, &MalformedAnalysisError{Reason: "Entities contains a non-string key"}
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, &MalformedAnalysisError{Reason: fmt.Sprintf("invalid value for entity %q", name), Err: err}
		}
		entities = append(entities, Entity{Name: name, Value: stringifyEntityValue(value)})
	}

	return entities, nil
}

// stringifyEntityValue renders an entity value for display. The prompt asks
// for strings, but the model occasionally returns other scalars.
func stringifyEntityValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
