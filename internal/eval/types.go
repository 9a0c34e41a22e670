// Package eval implements the multi-metric narrative evaluation engine:
// heuristic metric evaluators, embedding-based alignment, dynamic weight
// renormalization, and the optional LLM judge.
package eval

// Metrics maps metric names to scores in [0,1].
type Metrics map[string]float64

// Metric names produced by the evaluators and the orchestrator.
const (
	MetricFactualConsistency = "factual_consistency"
	MetricToneStyle          = "tone_style"
	MetricNarrativeCoherence = "narrative_coherence"
	MetricNarrativeRelevance = "narrative_relevance"
	MetricResidentRelevance  = "resident_relevance"
	MetricSemanticAlignment  = "semantic_alignment"
	MetricCosineSimilarity   = "cosine_similarity"
	MetricOverallScore       = "overall_score"
)

// Request carries one evaluation call.
type Request struct {
	Generated         string
	Expected          string
	ExpectedEmbedding []float32

	// Weights overrides the evaluator's default weight spec when non-nil.
	Weights map[string]float64

	UseJudge bool
}

// Result is the outcome of one evaluation. Immutable after construction.
type Result struct {
	EvaluationMetrics Metrics                 `json:"evaluation_metrics"`
	LLMJudgeMetrics   map[string]JudgeVerdict `json:"llm_judge_metrics"`
	GeneratedOutput   string                  `json:"generated_output"`
	ExpectedOutput    string                  `json:"expected_output,omitempty"`
}

// JudgeVerdict is one qualitative sub-score from the LLM judge, attached
// unmodified to the result.
type JudgeVerdict struct {
	Score        float64  `json:"score"`
	Reasoning    string   `json:"reasoning"`
	Issues       []string `json:"issues"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
}

// DefaultBackstoryWeights returns the weight spec for backstory evaluation.
func DefaultBackstoryWeights() map[string]float64 {
	return map[string]float64{
		MetricFactualConsistency: 0.30,
		MetricSemanticAlignment:  0.25,
		MetricNarrativeRelevance: 0.20,
		MetricToneStyle:          0.15,
		MetricNarrativeCoherence: 0.10,
		MetricCosineSimilarity:   0.25,
	}
}

// DefaultStoryWeights returns the weight spec for adventure story evaluation.
func DefaultStoryWeights() map[string]float64 {
	return map[string]float64{
		MetricFactualConsistency: 0.30,
		MetricResidentRelevance:  0.20,
		MetricSemanticAlignment:  0.20,
		MetricNarrativeRelevance: 0.15,
		MetricToneStyle:          0.10,
		MetricNarrativeCoherence: 0.05,
		MetricCosineSimilarity:   0.25,
	}
}

// Evaluator scores generated text against a typed catalog subject. The
// subject is fixed at construction so each variant carries exactly the fields
// it needs.
type Evaluator interface {
	// Evaluate returns the heuristic metric map for the generated text.
	Evaluate(generated string) Metrics

	// SourceContext returns the subject's context string used for semantic
	// alignment, or empty when no subject is bound.
	SourceContext() string

	// DefaultWeights returns the weight spec for this evaluator kind.
	DefaultWeights() map[string]float64
}

// contradictionPhrases soften factual consistency when present anywhere in
// the text.
var contradictionPhrases = []string{
	"not actually", "never existed", "incorrectly",
	"wasn't really", "fake", "contradiction",
	"inaccurate", "not true", "but in reality",
}
