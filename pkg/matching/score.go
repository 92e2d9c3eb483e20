package matching

import "strings"

// Scoring weights. Short queries lean on edit distance (typos in a short code
// dominate), longer queries lean on token overlap (word order and filler words
// dominate).
const (
	shortQueryLen = 10 // normalized chars

	shortEditWeight  = 0.70
	shortTokenWeight = 0.30
	longEditWeight   = 0.40
	longTokenWeight  = 0.60

	squishEqualFloor = 0.93
	substringFloor   = 0.80

	numericBoostCap     = 0.20
	numericBoostPerChar = 0.03
)

// Score computes similarity between a free-text query and a candidate alias or
// name on [0,1]. Total over all string pairs: either side normalizing to
// nothing scores 0, an exact normalized match scores exactly 1.0, and a
// squished-equal pair never scores below a plain substring match.
func Score(query, candidate string) float64 {
	qn := Normalize(query)
	cn := Normalize(candidate)
	if qn == "" || cn == "" {
		return 0
	}
	if qn == cn {
		return 1.0
	}

	editSim := 1.0 - float64(levenshtein(qn, cn))/float64(max(len(qn), len(cn)))

	qt := strings.Fields(qn)
	ct := strings.Fields(cn)
	overlap := tokenOverlap(qt, ct)

	editW, tokenW := longEditWeight, longTokenWeight
	if len(qn) < shortQueryLen {
		editW, tokenW = shortEditWeight, shortTokenWeight
	}
	score := editW*editSim + tokenW*overlap

	// Same characters, different spacing ("0515johnson" vs "0515 Johnson")
	// outranks mere containment.
	if Squish(query) == Squish(candidate) {
		score = max(score, squishEqualFloor)
	} else if strings.Contains(cn, qn) || strings.Contains(qn, cn) {
		score = max(score, substringFloor)
	}

	score += numericBoost(qt, Squish(candidate))
	return min(score, 1.0)
}

// numericBoost rewards 2-6 digit query tokens that appear inside the candidate,
// weighted by length: a full site code is stronger evidence than a stray "12".
func numericBoost(queryTokens []string, squishedCandidate string) float64 {
	var boost float64
	for _, tok := range queryTokens {
		if !IsNumericToken(tok) {
			continue
		}
		if strings.Contains(squishedCandidate, tok) || strings.Contains(squishedCandidate, "0"+tok) {
			boost += numericBoostPerChar * float64(len(tok))
		}
	}
	return min(boost, numericBoostCap)
}

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	var common int
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if set[t] && !seen[t] {
			common++
			seen[t] = true
		}
	}
	return float64(common) / float64(max(len(a), len(b)))
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
