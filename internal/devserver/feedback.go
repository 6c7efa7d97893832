package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/llm"
	"github.com/abhisek/interview/internal/schema"
)

// Feedback is the body returned by the generate endpoint.
type Feedback struct {
	Overall string           `json:"overall"`
	Score   int              `json:"score"`
	Answers []AnswerFeedback `json:"answers"`
}

// AnswerFeedback reviews one answer.
type AnswerFeedback struct {
	Number      answers.Number `json:"number"`
	Score       int            `json:"score"`
	Strengths   string         `json:"strengths"`
	Improvement string         `json:"improvement"`
}

// FeedbackSchema is the structured output requested from the model.
var FeedbackSchema = &schema.Schema{
	Name:        "interview-feedback",
	Description: "Feedback on a candidate's interview answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall": map[string]any{
				"type":        "string",
				"description": "Two or three sentences summarizing the whole interview",
			},
			"score": map[string]any{
				"type":        "integer",
				"description": "Overall score from 0 (no usable answers) to 10 (excellent)",
				"minimum":     0,
				"maximum":     10,
			},
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"number":      map[string]any{"type": "integer"},
						"score":       map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
						"strengths":   map[string]any{"type": "string"},
						"improvement": map[string]any{"type": "string"},
					},
					"required":             []any{"number", "score", "strengths", "improvement"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"overall", "score", "answers"},
		"additionalProperties": false,
	},
}

// GenerateRequestSchema validates the generate endpoint's request body.
var GenerateRequestSchema = &schema.Schema{
	Name: "generate-feedback-request",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"number":   map[string]any{"type": "integer"},
						"question": map[string]any{"type": "string"},
						"answer":   map[string]any{"type": "string"},
					},
					"required": []any{"number", "question", "answer"},
				},
			},
		},
		"required": []any{"data"},
	},
}

const systemPrompt = `You are an experienced technical interviewer reviewing a candidate's written answers.
Judge each answer on correctness, depth and clarity. An empty answer scores 0.
Be specific and constructive. Refer to answers by their question number.`

// Generator produces feedback for a session.
type Generator interface {
	Generate(ctx context.Context, session answers.Session) (json.RawMessage, error)
}

// LLMGenerator asks a model for structured feedback.
type LLMGenerator struct {
	Provider  llm.Provider
	MaxTokens int
}

func (g LLMGenerator) Generate(ctx context.Context, session answers.Session) (json.RawMessage, error) {
	maxTokens := g.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	resp, err := g.Provider.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildPrompt(session)),
		Schema:      FeedbackSchema,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}

func buildPrompt(session answers.Session) string {
	var b strings.Builder
	b.WriteString("Review these interview answers.\n")
	for _, qa := range session {
		fmt.Fprintf(&b, "\n## Question %d\n%s\n\n### Answer\n", qa.Number, qa.Question)
		if strings.TrimSpace(qa.Answer) == "" {
			b.WriteString("(no answer)\n")
		} else {
			b.WriteString(qa.Answer)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// OfflineGenerator scores answers without a model: answered questions earn
// points by length. It keeps `interview serve` usable with no API key.
type OfflineGenerator struct{}

func (OfflineGenerator) Generate(_ context.Context, session answers.Session) (json.RawMessage, error) {
	fb := Feedback{Answers: make([]AnswerFeedback, 0, len(session))}
	total := 0
	for _, qa := range session {
		words := len(strings.Fields(qa.Answer))
		af := AnswerFeedback{Number: qa.Number}
		switch {
		case words == 0:
			af.Strengths = "None yet."
			af.Improvement = "Answer the question."
		case words < 20:
			af.Score = 4
			af.Strengths = fmt.Sprintf("Answered in %d words.", words)
			af.Improvement = "Add detail and an example."
		default:
			af.Score = 7
			af.Strengths = fmt.Sprintf("Detailed answer of %d words.", words)
			af.Improvement = "Tighten the structure."
		}
		total += af.Score
		fb.Answers = append(fb.Answers, af)
	}
	if len(session) > 0 {
		fb.Score = int(math.Round(float64(total) / float64(len(session))))
	}
	fb.Overall = fmt.Sprintf("%d of %d questions answered.", session.Answered(), len(session))
	return json.Marshal(fb)
}
