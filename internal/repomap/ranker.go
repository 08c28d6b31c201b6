package repomap

import (
	"log/slog"
	"strings"

	"ghscout/internal/graph"
)

// Boost factors for symbol characteristics.
const (
	exportedBoost   = 1.5
	entryPointBoost = 2.0
	classBoost      = 1.2
)

// entryPoints are names that indicate a symbol anchors execution.
var entryPoints = map[string]bool{
	"main": true, "__main__": true, "init": true, "__init__": true,
	"setup": true, "start": true, "run": true, "execute": true,
	"index": true, "default": true, "app": true,
}

// Ranker scores symbols by importance: PageRank over the dependency
// graph, multiplicative boosts, then min-max normalization to [0, 1].
type Ranker struct {
	Damping       float64
	MaxIterations int

	logger *slog.Logger
}

// NewRanker creates a ranker with the standard damping and iteration cap.
func NewRanker(logger *slog.Logger) *Ranker {
	return &Ranker{
		Damping:       0.85,
		MaxIterations: 20,
		logger:        logger,
	}
}

// Rank returns a score in [0, 1] for every symbol name. An empty symbol
// list yields an empty map. PageRank failure is recovered locally by
// falling back to uniform scores; boosts still differentiate symbols.
func (r *Ranker) Rank(symbols []RepoSymbol, imports []string, calls []string) map[string]float64 {
	if len(symbols) == 0 {
		return map[string]float64{}
	}

	g := BuildGraph(symbols, imports, calls)

	scores, err := g.PageRank(graph.PageRankOptions{
		Damping:       r.Damping,
		MaxIterations: r.MaxIterations,
	})
	if err != nil {
		r.logger.Warn("PageRank failed, using default scores", "error", err)
		scores = make(map[string]float64, len(symbols))
		for _, s := range symbols {
			scores[s.Name] = 1.0
		}
	}

	boosted := r.applyBoosts(symbols, scores)
	return normalizeScores(boosted)
}

// applyBoosts multiplies scores by per-symbol boost factors. Symbols
// sharing a name compound their boosts on the shared score.
func (r *Ranker) applyBoosts(symbols []RepoSymbol, scores map[string]float64) map[string]float64 {
	boosted := make(map[string]float64, len(scores))
	for name, score := range scores {
		boosted[name] = score
	}

	for _, s := range symbols {
		score, ok := boosted[s.Name]
		if !ok {
			continue
		}

		if s.IsExported {
			score *= exportedBoost
		}
		if entryPoints[strings.ToLower(s.Name)] {
			score *= entryPointBoost
		}
		if s.Kind == "class" {
			score *= classBoost
		}

		boosted[s.Name] = score
	}

	return boosted
}

// normalizeScores min-max scales scores into [0, 1]. When every score is
// identical they all become 1.0.
func normalizeScores(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return map[string]float64{}
	}

	first := true
	var min, max float64
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	normalized := make(map[string]float64, len(scores))
	if max == min {
		for name := range scores {
			normalized[name] = 1.0
		}
		return normalized
	}

	for name, s := range scores {
		normalized[name] = (s - min) / (max - min)
	}
	return normalized
}
