package glossmatch

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FeatureNames lists the features Featurize returns, in order, for a model
// without the optional fuzzy Tversky feature.
var FeatureNames = []string{
	"char_eq", "char_temp_in_def", "char_def_in_temp", "char_longest_match",
	"char_ratio", "char_levenshtein",
	"word_eq", "word_temp_in_def", "word_def_in_temp", "word_longest_match",
	"word_ratio", "word_levenshtein",
	"tversky_0.32",
}

// FeatureNamesWithFuzzy is FeatureNames plus fuzzy_tversky_0.06, for models
// fit with the optional fuzzy feature included.
var FeatureNamesWithFuzzy = append(append([]string{}, FeatureNames...), "fuzzy_tversky_0.06")

var tokenSplit = regexp.MustCompile(`\W+`)

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// tokenize lowercases, trims, and splits on runs of non-word characters,
// dropping empty tokens.
func tokenize(s string) []string {
	parts := tokenSplit.Split(normalize(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Featurize computes the gloss-matching feature vector for one (template
// gloss, candidate definition) pair, in FeatureNames/FeatureNamesWithFuzzy
// order. includeFuzzy controls whether fuzzy_tversky_0.06 is appended.
func Featurize(templateGloss, definition string, includeFuzzy bool) []float64 {
	a, b := normalize(templateGloss), normalize(definition)
	aTokens, bTokens := tokenize(templateGloss), tokenize(definition)

	charRun := longestCommonRun([]rune(a), []rune(b))
	wordRun := longestCommonTokenRun(aTokens, bTokens)

	feats := []float64{
		boolFloat(a == b),
		boolFloat(a != "" && strings.Contains(b, a)),
		boolFloat(b != "" && strings.Contains(a, b)),
		float64(charRun),
		ratio(charRun, len([]rune(a)), len([]rune(b))),
		float64(capInt(levenshtein.ComputeDistance(a, b), 8)),

		boolFloat(tokensEqual(aTokens, bTokens)),
		boolFloat(containsAllTokens(bTokens, aTokens)),
		boolFloat(containsAllTokens(aTokens, bTokens)),
		float64(wordRun),
		ratio(wordRun, len(aTokens), len(bTokens)),
		float64(capInt(tokenLevenshtein(aTokens, bTokens), 5)),

		tversky(aTokens, bTokens, 0.32, 0.32),
	}
	if includeFuzzy {
		feats = append(feats, fuzzyTversky(aTokens, bTokens, 0.32, 0.32, 0.06))
	}
	return feats
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}

func ratio(common, lenA, lenB int) float64 {
	denom := lenA + lenB
	if denom == 0 {
		return 0
	}
	return 2 * float64(common) / float64(denom)
}

// longestCommonRun finds the longest common contiguous run shared by a
// and b.
func longestCommonRun(a, b []rune) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
				if dp[i][j] > best {
					best = dp[i][j]
				}
			}
		}
	}
	return best
}

func longestCommonTokenRun(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
				if dp[i][j] > best {
					best = dp[i][j]
				}
			}
		}
	}
	return best
}

func tokenLevenshtein(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		dp[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		dp[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			dp[i][j] = min3(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
		}
	}
	return dp[len(a)][len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func tokensEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsAllTokens(haystack, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	set := toSet(haystack)
	for _, n := range needles {
		if !set[n] {
			return false
		}
	}
	return true
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// tversky computes the Tversky index between a's and b's token sets with
// the given alpha/beta asymmetry weights.
func tversky(a, b []string, alpha, beta float64) float64 {
	setA, setB := toSet(a), toSet(b)
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	onlyA := len(setA) - inter
	onlyB := len(setB) - inter
	denom := float64(inter) + alpha*float64(onlyA) + beta*float64(onlyB)
	if denom == 0 {
		return 0
	}
	return float64(inter) / denom
}

// fuzzyTversky is tversky generalized to fuzzy set membership: two tokens
// from opposite sides count toward the intersection if their Levenshtein
// distance, relative to the longer token's length, is within maxRelDist.
func fuzzyTversky(a, b []string, alpha, beta, maxRelDist float64) float64 {
	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))
	for i, ta := range a {
		for j, tb := range b {
			if matchedB[j] {
				continue
			}
			maxLen := len(ta)
			if len(tb) > maxLen {
				maxLen = len(tb)
			}
			if maxLen == 0 {
				continue
			}
			dist := levenshtein.ComputeDistance(ta, tb)
			if float64(dist)/float64(maxLen) <= maxRelDist {
				matchedA[i] = true
				matchedB[j] = true
				break
			}
		}
	}

	inter := 0
	for _, m := range matchedA {
		if m {
			inter++
		}
	}
	onlyA, onlyB := 0, 0
	for _, m := range matchedA {
		if !m {
			onlyA++
		}
	}
	for _, m := range matchedB {
		if !m {
			onlyB++
		}
	}
	denom := float64(inter) + alpha*float64(onlyA) + beta*float64(onlyB)
	if denom == 0 {
		return 0
	}
	return float64(inter) / denom
}
