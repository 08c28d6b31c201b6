package repomap

import (
	"testing"

	"ghscout/internal/slogutil"
)

func TestRankEmptySymbols(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())

	scores := r.Rank(nil, nil, nil)
	if len(scores) != 0 {
		t.Errorf("expected no scores, got %v", scores)
	}
}

func TestRankScoresAreNormalized(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("main", "function", true),
		sym("helper", "function", false),
		sym("util", "function", false),
	}

	scores := r.Rank(symbols, nil, []string{"helper", "util"})
	for name, score := range scores {
		if score < 0 || score > 1 {
			t.Errorf("score for %s = %f, want within [0, 1]", name, score)
		}
	}
}

func TestRankUniformFallbackOnNonConvergence(t *testing.T) {
	// One iteration is not enough to converge once the graph has an edge,
	// so every symbol falls back to the same default score. Had PageRank
	// succeeded, the called symbol would outrank the other after
	// normalization.
	r := NewRanker(slogutil.NewDiscardLogger())
	r.MaxIterations = 1

	symbols := []RepoSymbol{
		sym("alpha", "function", false),
		sym("beta", "function", false),
	}
	scores := r.Rank(symbols, nil, []string{"beta"})

	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	for name, score := range scores {
		if score != 1.0 {
			t.Errorf("fallback score for %s = %f, want 1.0", name, score)
		}
	}
}

func TestRankAllEqualScoresNormalizeToOne(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("alpha", "function", false),
		sym("beta", "function", false),
	}

	// No edges at all: every node ends up with identical rank.
	scores := r.Rank(symbols, nil, nil)
	for name, score := range scores {
		if score != 1.0 {
			t.Errorf("score for %s = %f, want 1.0 when all ranks tie", name, score)
		}
	}
}

func TestEntryPointOutranksHelper(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("main", "function", false),
		sym("helper", "function", false),
	}

	// Both receive one call each so raw rank ties; the entry point boost
	// must break the tie toward main.
	scores := r.Rank(symbols, nil, []string{"main", "helper"})
	if scores["main"] <= scores["helper"] {
		t.Errorf("main = %f should outrank helper = %f", scores["main"], scores["helper"])
	}
}

func TestExportedOutranksUnexported(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("parse", "function", true),
		sym("render", "function", false),
	}

	scores := r.Rank(symbols, nil, []string{"parse", "render"})
	if scores["parse"] <= scores["render"] {
		t.Errorf("exported parse = %f should outrank unexported render = %f", scores["parse"], scores["render"])
	}
}

func TestClassBoost(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("Engine", "class", false),
		sym("widget", "function", false),
	}

	scores := r.Rank(symbols, nil, []string{"Engine", "widget"})
	if scores["Engine"] <= scores["widget"] {
		t.Errorf("class Engine = %f should outrank plain function widget = %f", scores["Engine"], scores["widget"])
	}
}

func TestRankIsDeterministic(t *testing.T) {
	r := NewRanker(slogutil.NewDiscardLogger())
	symbols := []RepoSymbol{
		sym("main", "function", true),
		sym("helper", "function", false),
		sym("Engine", "class", true),
		sym("Engine.run", "method", true),
	}
	imports := []string{"from engine import Engine"}
	calls := []string{"helper", "Engine"}

	first := r.Rank(symbols, imports, calls)
	for i := 0; i < 10; i++ {
		again := r.Rank(symbols, imports, calls)
		for name, score := range first {
			if again[name] != score {
				t.Fatalf("run %d: score for %s drifted from %f to %f", i, name, score, again[name])
			}
		}
	}
}
