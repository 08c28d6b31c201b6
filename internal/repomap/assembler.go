package repomap

import (
	"fmt"
	"sort"
	"strings"
)

// SelectTop sorts symbols by score descending and keeps at most
// maxSymbols. The sort is stable, so equally scored symbols keep their
// extraction order.
func SelectTop(symbols []RepoSymbol, scores map[string]float64, maxSymbols int) []RepoSymbol {
	ranked := make([]RepoSymbol, len(symbols))
	copy(ranked, symbols)

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].Name] > scores[ranked[j].Name]
	})

	if maxSymbols > 0 && len(ranked) > maxSymbols {
		ranked = ranked[:maxSymbols]
	}
	return ranked
}

// FormatMap renders the selected symbols as a compact text map: symbols
// grouped by file, files ordered by their best symbol, each line showing
// the score to two decimals and the symbol signature.
func FormatMap(symbols []RepoSymbol, scores map[string]float64) string {
	type scoredSym struct {
		sym   RepoSymbol
		score float64
	}

	byFile := make(map[string][]scoredSym)
	var fileOrder []string
	for _, s := range symbols {
		if _, seen := byFile[s.Path]; !seen {
			fileOrder = append(fileOrder, s.Path)
		}
		byFile[s.Path] = append(byFile[s.Path], scoredSym{sym: s, score: scores[s.Name]})
	}

	maxScore := func(path string) float64 {
		best := byFile[path][0].score
		for _, ss := range byFile[path][1:] {
			if ss.score > best {
				best = ss.score
			}
		}
		return best
	}
	sort.SliceStable(fileOrder, func(i, j int) bool {
		return maxScore(fileOrder[i]) > maxScore(fileOrder[j])
	})

	var lines []string
	lines = append(lines, "Repository Map (Top Symbols by Importance)")
	lines = append(lines, strings.Repeat("=", 60))

	for _, path := range fileOrder {
		lines = append(lines, "\n"+path)

		fileSymbols := byFile[path]
		sort.SliceStable(fileSymbols, func(i, j int) bool {
			return fileSymbols[i].score > fileSymbols[j].score
		})

		for _, ss := range fileSymbols {
			lines = append(lines, fmt.Sprintf("  [%.2f] %s", ss.score, ss.sym.Signature))
		}
	}

	return strings.Join(lines, "\n")
}
