package answers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/interview/internal/schema"
)

// ErrDuplicateNumber reports a payload that lists the same question number twice.
var ErrDuplicateNumber = errors.New("duplicate question number")

// ErrEmptyPayload reports an absent entry payload.
var ErrEmptyPayload = errors.New("entry payload is missing")

// IdentifierError reports a question whose "number" is not a JSON integer.
type IdentifierError struct {
	Index int
	Value any
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("question %d: number %v is a %s, want an integer", e.Index, e.Value, e.Type())
}

// Type names the JSON type of the rejected identifier.
func (e *IdentifierError) Type() string {
	switch v := e.Value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return "non-integer number"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// EntrySchema accepts either a bare array of questions or an object with a
// "questions" array. Extra fields, including a pre-filled "answer", are
// allowed and ignored.
var EntrySchema = &schema.Schema{
	Name:        "entry-payload",
	Description: "Interview questions handed to the interview screen",
	Definition: map[string]any{
		"$defs": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"number":   map[string]any{"type": "integer"},
						"question": map[string]any{"type": "string"},
					},
					"required": []any{"number", "question"},
				},
			},
		},
		"oneOf": []any{
			map[string]any{"$ref": "#/$defs/questions"},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questions": map[string]any{"$ref": "#/$defs/questions"},
				},
				"required": []any{"questions"},
			},
		},
	},
}

type entry struct {
	Number   Number `json:"number"`
	Question string `json:"question"`
}

// ParseEntries validates payload and builds a session from it with every
// answer empty.
func ParseEntries(payload json.RawMessage) (Session, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrEmptyPayload
	}

	if err := checkIdentifiers(payload); err != nil {
		return nil, err
	}
	if err := schema.Validate(EntrySchema, payload); err != nil {
		return nil, err
	}

	var entries []entry
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	} else {
		var env struct {
			Questions []entry `json:"questions"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		entries = env.Questions
	}

	seen := make(map[Number]bool, len(entries))
	session := make(Session, 0, len(entries))
	for _, e := range entries {
		if seen[e.Number] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNumber, e.Number)
		}
		seen[e.Number] = true
		session = append(session, QuestionAnswer{Number: e.Number, Question: e.Question})
	}
	return session, nil
}

// checkIdentifiers finds the first question whose number is present but
// not an integer. Other shape problems are left to the schema.
func checkIdentifiers(payload json.RawMessage) error {
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	items, ok := doc.([]any)
	if obj, isObj := doc.(map[string]any); isObj {
		items, ok = obj["questions"].([]any)
	}
	if !ok {
		return nil
	}
	for i, item := range items {
		q, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v, present := q["number"]
		if !present {
			continue
		}
		if n, isNum := v.(json.Number); isNum {
			if _, err := n.Int64(); err == nil {
				continue
			}
		}
		return &IdentifierError{Index: i, Value: v}
	}
	return nil
}

// LoadPayloadFile reads an entry payload from a JSON or YAML file. A missing
// file yields a nil payload so the store falls back to its placeholder.
func LoadPayloadFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", path, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert YAML %s: %w", path, err)
		}
		return out, nil
	default:
		return json.RawMessage(data), nil
	}
}

// LoadAnswersFile reads prepared answers keyed by question number from a
// JSON or YAML mapping such as {"1": "A goroutine is..."}.
func LoadAnswersFile(path string) (map[Number]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return parseAnswerKeys(raw)
}

// ParseAnswerArgs parses "number=answer" pairs.
func ParseAnswerArgs(args []string) (map[Number]string, error) {
	raw := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q: want number=text", a)
		}
		raw[k] = v
	}
	return parseAnswerKeys(raw)
}

func parseAnswerKeys(raw map[string]string) (map[Number]string, error) {
	out := make(map[Number]string, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("question number %q: %w", k, err)
		}
		out[Number(n)] = v
	}
	return out, nil
}
