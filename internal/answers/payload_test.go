package answers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPayloadFile_JSON(t *testing.T) {
	path := writeFile(t, "questions.json", `{"questions":[{"number":1,"question":"Q1"}]}`)

	raw, err := LoadPayloadFile(path)
	require.NoError(t, err)

	session, err := ParseEntries(raw)
	require.NoError(t, err)
	assert.Equal(t, Session{{Number: 1, Question: "Q1"}}, session)
}

func TestLoadPayloadFile_YAML(t *testing.T) {
	path := writeFile(t, "questions.yaml", `
questions:
  - number: 1
    question: What is a goroutine?
  - number: 2
    question: When would you use a buffered channel?
`)

	raw, err := LoadPayloadFile(path)
	require.NoError(t, err)

	session, err := ParseEntries(raw)
	require.NoError(t, err)
	assert.Equal(t, []Number{1, 2}, session.Numbers())
	assert.Equal(t, "What is a goroutine?", session[0].Question)
}

func TestLoadPayloadFile_MissingFileIsNilPayload(t *testing.T) {
	raw, err := LoadPayloadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = ParseEntries(raw)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestLoadPayloadFile_BadYAML(t *testing.T) {
	path := writeFile(t, "questions.yml", "questions: [1, 2\n")
	_, err := LoadPayloadFile(path)
	assert.Error(t, err)
}

func TestParseEntries_DuplicateNumber(t *testing.T) {
	_, err := ParseEntries([]byte(`[{"number":1,"question":"a"},{"number":1,"question":"b"}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateNumber))
}

func TestParseEntries_NonIntegerIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		index    int
		wantType string
	}{
		{"string id", `[{"number":1,"question":"a"},{"number":"q2","question":"b"}]`, 1, "string"},
		{"numeric string", `{"questions":[{"number":"1","question":"a"}]}`, 0, "string"},
		{"fraction", `[{"number":1.5,"question":"a"}]`, 0, "non-integer number"},
		{"null", `[{"number":null,"question":"a"}]`, 0, "null"},
		{"object", `[{"number":{"id":1},"question":"a"}]`, 0, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntries([]byte(tt.payload))
			var idErr *IdentifierError
			require.ErrorAs(t, err, &idErr)
			assert.Equal(t, tt.index, idErr.Index)
			assert.Equal(t, tt.wantType, idErr.Type())
			assert.Contains(t, err.Error(), tt.wantType)
		})
	}
}

func TestParseEntries_MissingNumberLeftToSchema(t *testing.T) {
	_, err := ParseEntries([]byte(`[{"question":"a"}]`))
	require.Error(t, err)
	var idErr *IdentifierError
	assert.False(t, errors.As(err, &idErr))
}

func TestLoadAnswersFile(t *testing.T) {
	yamlPath := writeFile(t, "answers.yaml", `
1: A lightweight thread managed by the Go runtime.
2: |
  When the producer should not block
  on every send.
`)
	got, err := LoadAnswersFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, map[Number]string{
		1: "A lightweight thread managed by the Go runtime.",
		2: "When the producer should not block\non every send.\n",
	}, got)

	jsonPath := writeFile(t, "answers.json", `{"3": "hello"}`)
	got, err = LoadAnswersFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, map[Number]string{3: "hello"}, got)

	_, err = LoadAnswersFile(writeFile(t, "bad.yaml", `one: text`))
	assert.ErrorContains(t, err, `question number "one"`)
}

func TestParseAnswerArgs(t *testing.T) {
	got, err := ParseAnswerArgs([]string{"1=hello", "2=a=b", "3="})
	require.NoError(t, err)
	assert.Equal(t, map[Number]string{1: "hello", 2: "a=b", 3: ""}, got)

	_, err = ParseAnswerArgs([]string{"hello"})
	assert.Error(t, err)
}
