package eval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loresearch/lore-search/internal/provider"
)

// Completer is the completion side of the text provider.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts provider.CompletionOptions) (*provider.CompletionResponse, error)
}

const (
	judgeFactualSystemPrompt = "You are an expert evaluator. Evaluate if the generated text is factually " +
		"consistent with the source context. Rate on a scale of 0-1 and provide clear reasoning."

	judgeCreativitySystemPrompt = "You are an expert evaluator for Rick & Morty content. Evaluate creativity, " +
		"humor, originality, and entertainment value. Rate on a scale of 0-1."
)

const judgeFactualUserPrompt = `Evaluate the factual consistency of this generated text:

Source Context:
%s

Generated Text:
%s

Respond ONLY in strict JSON with this exact schema:
{
  "score": float,
  "reasoning": "string",
  "issues": ["string", ...]
}`

const judgeCreativityUserPrompt = `Evaluate the creativity and entertainment value of this Rick & Morty themed text:

%s

Respond only in JSON:
{
  "score": float,
  "reasoning": "string",
  "strengths": ["string"],
  "improvements": ["string"]
}`

// Judge produces qualitative scores through a second model call, independent
// of the heuristic metrics.
type Judge struct {
	completer   Completer
	temperature float64
	maxTokens   int
}

// NewJudge creates an LLM judge over the completion provider.
func NewJudge(completer Completer, temperature float64, maxTokens int) *Judge {
	return &Judge{
		completer:   completer,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// FactualConsistency asks the judge to grade the text against its source
// context.
func (j *Judge) FactualConsistency(ctx context.Context, generated, sourceContext string) (JudgeVerdict, error) {
	return j.call(ctx, judgeFactualSystemPrompt,
		fmt.Sprintf(judgeFactualUserPrompt, sourceContext, generated))
}

// Creativity asks the judge to grade creativity and entertainment value.
func (j *Judge) Creativity(ctx context.Context, generated string) (JudgeVerdict, error) {
	return j.call(ctx, judgeCreativitySystemPrompt,
		fmt.Sprintf(judgeCreativityUserPrompt, generated))
}

func (j *Judge) call(ctx context.Context, system, user string) (JudgeVerdict, error) {
	resp, err := j.completer.Complete(ctx, system, user, provider.CompletionOptions{
		Temperature:  j.temperature,
		MaxTokens:    j.maxTokens,
		JSONResponse: true,
	})
	if err != nil {
		return JudgeVerdict{}, err
	}
	return parseVerdict(resp.Text), nil
}

// parseVerdict decodes the judge's JSON. Malformed output is recovered
// locally with a zero-score verdict, never surfaced as an error.
func parseVerdict(text string) JudgeVerdict {
	var verdict JudgeVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return JudgeVerdict{Score: 0.0, Reasoning: "Invalid JSON", Issues: []string{}}
	}
	if verdict.Issues == nil {
		verdict.Issues = []string{}
	}
	return verdict
}
