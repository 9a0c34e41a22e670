package eval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/loresearch/lore-search/internal/bus"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/pkg/logger"
	"github.com/loresearch/lore-search/internal/scoring"
)

// Embedder is the embedding side of the text provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service orchestrates one evaluation: heuristic metrics, semantic
// alignment, optional reference similarity, weight renormalization, overall
// score, and the optional judge pass.
type Service struct {
	embedder Embedder
	judge    *Judge
	events   bus.Bus
	log      *logger.Logger
}

// NewService creates the evaluation orchestrator. The judge and events bus
// may be nil; both paths are optional.
func NewService(embedder Embedder, judge *Judge, events bus.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		embedder: embedder,
		judge:    judge,
		events:   events,
		log:      log,
	}
}

// Evaluate runs the full evaluation pipeline for one generated text.
func (s *Service) Evaluate(ctx context.Context, evaluator Evaluator, req Request) (*Result, error) {
	metrics := evaluator.Evaluate(req.Generated)

	var generatedEmbedding []float32

	if sourceContext := evaluator.SourceContext(); sourceContext != "" && s.embedder != nil {
		genEmb, err := s.embedder.Embed(ctx, req.Generated)
		if err != nil {
			return nil, err
		}
		ctxEmb, err := s.embedder.Embed(ctx, sourceContext)
		if err != nil {
			return nil, err
		}
		generatedEmbedding = genEmb
		metrics[MetricSemanticAlignment] = scoring.CosineSimilarity(genEmb, ctxEmb)
	}

	if len(req.ExpectedEmbedding) > 0 {
		if generatedEmbedding == nil {
			if s.embedder == nil {
				return nil, apperrors.ServiceUnavailableError("embedding provider")
			}
			emb, err := s.embedder.Embed(ctx, req.Generated)
			if err != nil {
				return nil, err
			}
			generatedEmbedding = emb
		}
		metrics[MetricCosineSimilarity] = scoring.CosineSimilarity(generatedEmbedding, req.ExpectedEmbedding)
	}

	weights := req.Weights
	if weights == nil {
		weights = evaluator.DefaultWeights()
	}
	_, hasCosine := metrics[MetricCosineSimilarity]
	normalized := normalizeWeights(weights, hasCosine)
	metrics[MetricOverallScore] = weightedScore(metrics, normalized)

	judgeMetrics := map[string]JudgeVerdict{}
	if req.UseJudge && s.judge != nil {
		judgeMetrics = s.judgeScores(ctx, req.Generated, evaluator.SourceContext())
	}

	result := &Result{
		EvaluationMetrics: metrics,
		LLMJudgeMetrics:   judgeMetrics,
		GeneratedOutput:   req.Generated,
		ExpectedOutput:    req.Expected,
	}

	s.publishCompleted(ctx, result)
	return result, nil
}

// judgeScores runs both judge prompts concurrently. Judge failures are
// logged and omitted, never fatal to the evaluation.
func (s *Service) judgeScores(ctx context.Context, generated, sourceContext string) map[string]JudgeVerdict {
	var factual, creativity JudgeVerdict

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.judge.FactualConsistency(gctx, generated, sourceContext)
		factual = v
		return err
	})
	g.Go(func() error {
		v, err := s.judge.Creativity(gctx, generated)
		creativity = v
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Warn("judge evaluation failed", "error", err)
		return map[string]JudgeVerdict{}
	}

	return map[string]JudgeVerdict{
		"factual_consistency": factual,
		"creativity":          creativity,
	}
}

func (s *Service) publishCompleted(ctx context.Context, result *Result) {
	if s.events == nil {
		return
	}

	event := bus.NewEvent(bus.TopicEvalCompleted, "eval", map[string]any{
		"overall_score": result.EvaluationMetrics[MetricOverallScore],
		"metrics":       result.EvaluationMetrics,
	})
	if err := s.events.Publish(ctx, bus.TopicEvalCompleted, event); err != nil {
		s.log.Warn("publishing eval.completed failed", "error", err)
	}
}

// normalizeWeights redistributes the weight spec depending on whether the
// cosine_similarity metric exists. Present: cosine keeps (or gains, at 0.25)
// its weight and the rest rescale to fill the remaining 0.75 while preserving
// their pairwise ratios. Absent: its weight entry is dropped and the rest
// renormalize to sum to 1.
func normalizeWeights(weights map[string]float64, hasCosine bool) map[string]float64 {
	out := make(map[string]float64, len(weights)+1)
	for k, v := range weights {
		out[k] = v
	}

	if hasCosine {
		if _, ok := out[MetricCosineSimilarity]; !ok {
			out[MetricCosineSimilarity] = 0.25
			total := 0.0
			for k, v := range out {
				if k != MetricCosineSimilarity {
					total += v
				}
			}
			if total > 0 {
				scale := 0.75 / total
				for k := range out {
					if k != MetricCosineSimilarity {
						out[k] *= scale
					}
				}
			}
		}
		return out
	}

	delete(out, MetricCosineSimilarity)
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for k := range out {
			out[k] /= total
		}
	}
	return out
}

// weightedScore is the weighted mean over metrics present in both maps.
func weightedScore(metrics Metrics, weights map[string]float64) float64 {
	totalScore, totalWeight := 0.0, 0.0

	for name, weight := range weights {
		if value, ok := metrics[name]; ok {
			totalScore += value * weight
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0.0
	}
	return totalScore / totalWeight
}
