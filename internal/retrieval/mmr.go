package retrieval

import (
	"sort"
	"unicode/utf8"

	"runbookai/internal/storage"
)

// Feature-overlap weights for the MMR redundancy term. Two chunks from the
// same file are far more redundant than two chunks that merely share a
// section type.
const (
	simWeightFilename    = 0.4
	simWeightSectionType = 0.3
	simWeightLenBucket   = 0.1
	simWeightCommands    = 0.1
	simWeightMetrics     = 0.1
)

// Length buckets for the redundancy similarity, in runes.
const (
	lenBucketShortMax  = 250
	lenBucketMediumMax = 600
)

func lengthBucket(text string) int {
	n := utf8.RuneCountInString(text)
	switch {
	case n <= lenBucketShortMax:
		return 0
	case n <= lenBucketMediumMax:
		return 1
	default:
		return 2
	}
}

// featureSimilarity scores how redundant two chunks are, in [0, 1]. It uses
// metadata overlap only; no embedding comparison, so it works identically in
// lexical-only degraded mode.
func featureSimilarity(a, b *storage.Chunk) float64 {
	var sim float64
	if a.Filename == b.Filename {
		sim += simWeightFilename
	}
	if a.SectionType == b.SectionType {
		sim += simWeightSectionType
	}
	if lengthBucket(a.Text) == lengthBucket(b.Text) {
		sim += simWeightLenBucket
	}
	if a.HasCommands == b.HasCommands {
		sim += simWeightCommands
	}
	if a.HasMetrics == b.HasMetrics {
		sim += simWeightMetrics
	}
	return sim
}

// selectMMR picks up to k results by maximal marginal relevance. The first
// pick is always the highest-combined candidate; each later pick maximizes
// lambda*combined - (1-lambda)*max_similarity_to_selected. Candidates must
// arrive sorted by combined score descending.
func selectMMR(candidates []Result, k int, lambda float64) []Result {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]Result, 0, k)
	remaining := make([]Result, len(candidates))
	copy(remaining, candidates)

	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, candidate := range remaining {
			maxSim := 0.0
			for _, chosen := range selected {
				if sim := featureSimilarity(candidate.Chunk, chosen.Chunk); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*candidate.CombinedScore - (1-lambda)*maxSim
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// repairDiversityFloor swaps candidates into the selection until it covers at
// least floor distinct files, when the candidate pool allows it. Each swap
// brings in the highest-combined candidate from a file not yet selected and
// displaces the lowest-combined selected result whose file is represented
// more than once, so coverage never shrinks. The selection keeps its
// combined-score order.
func repairDiversityFloor(selected, candidates []Result, floor int) []Result {
	if floor <= 1 || len(selected) == 0 {
		return selected
	}

	for distinctFiles(selected) < floor {
		selectedIDs := make(map[string]struct{}, len(selected))
		selectedFiles := make(map[string]int)
		for _, r := range selected {
			selectedIDs[r.Chunk.ID] = struct{}{}
			selectedFiles[r.Chunk.Filename]++
		}

		// Best unselected candidate from an unrepresented file.
		incoming := -1
		for i, candidate := range candidates {
			if _, ok := selectedIDs[candidate.Chunk.ID]; ok {
				continue
			}
			if selectedFiles[candidate.Chunk.Filename] > 0 {
				continue
			}
			if incoming == -1 || candidate.CombinedScore > candidates[incoming].CombinedScore {
				incoming = i
			}
		}
		if incoming == -1 {
			break // the pool has no more files to offer
		}

		// Lowest-combined selected result from an over-represented file.
		outgoing := -1
		for i, r := range selected {
			if selectedFiles[r.Chunk.Filename] < 2 {
				continue
			}
			if outgoing == -1 || r.CombinedScore < selected[outgoing].CombinedScore {
				outgoing = i
			}
		}
		if outgoing == -1 {
			break // every selected file appears once already
		}

		selected[outgoing] = candidates[incoming]
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].CombinedScore > selected[j].CombinedScore
	})
	return selected
}

func distinctFiles(results []Result) int {
	files := make(map[string]struct{}, len(results))
	for _, r := range results {
		files[r.Chunk.Filename] = struct{}{}
	}
	return len(files)
}
