package graph

import (
	"errors"
)

// ErrNoConvergence is returned when power iteration does not converge
// within MaxIterations.
var ErrNoConvergence = errors.New("pagerank failed to converge")

// ErrEmptyGraph is returned when PageRank is asked to rank an empty graph.
var ErrEmptyGraph = errors.New("pagerank on empty graph")

// PageRankOptions configures the PageRank computation.
type PageRankOptions struct {
	// Damping is the probability of following an edge vs teleporting (default: 0.85)
	Damping float64

	// MaxIterations is the maximum number of power iterations (default: 20)
	MaxIterations int

	// Tolerance for convergence detection (default: 1e-6).
	// Convergence is the total absolute score change per node.
	Tolerance float64
}

// DefaultPageRankOptions returns the defaults used for symbol ranking.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		Damping:       0.85,
		MaxIterations: 20,
		Tolerance:     1e-6,
	}
}

// PageRank computes standard weighted PageRank over the whole graph with a
// uniform teleport vector. Transition probability along an edge is
// proportional to its weight among the source's outgoing edges. Mass on
// dangling nodes is redistributed uniformly.
//
// Returns ErrNoConvergence when the iteration budget runs out before the
// scores settle; callers are expected to fall back to uniform scores.
func (g *Graph) PageRank(opts PageRankOptions) (map[string]float64, error) {
	if g.numNodes == 0 {
		return nil, ErrEmptyGraph
	}

	// Apply defaults
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 20
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}

	n := g.numNodes
	uniform := 1.0 / float64(n)

	// Pre-compute out-degree normalization
	outDegree := make([]float64, n)
	for i, edges := range g.outEdges {
		for _, e := range edges {
			outDegree[i] += e.weight
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = uniform
	}

	// Power iteration
	newScores := make([]float64, n)
	for range opts.MaxIterations {
		dangling := 0.0
		for i := range newScores {
			newScores[i] = 0
		}

		for i, edges := range g.outEdges {
			if outDegree[i] == 0 {
				dangling += scores[i]
				continue
			}
			contrib := scores[i] / outDegree[i]
			for _, e := range edges {
				newScores[e.target] += contrib * e.weight
			}
		}

		// Damping, teleport, and dangling redistribution
		base := (1-opts.Damping)*uniform + opts.Damping*dangling*uniform
		totalDiff := 0.0
		for i := range newScores {
			newScores[i] = opts.Damping*newScores[i] + base
			totalDiff += abs(newScores[i] - scores[i])
		}

		scores, newScores = newScores, scores

		if totalDiff < float64(n)*opts.Tolerance {
			result := make(map[string]float64, n)
			for i, id := range g.nodes {
				result[id] = scores[i]
			}
			return result, nil
		}
	}

	return nil, ErrNoConvergence
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
