package store

import (
	"math"
	"strings"
)

// BM25 constants, standard Okapi values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75

	// scoreNormPerTerm divides the summed BM25 score down into [0,1]. The
	// divisor is termCount * scoreNormPerTerm, capped at 1: an empirical
	// approximation of relevance, not a calibrated probability.
	scoreNormPerTerm = 5.0
)

// Tokenize lower-cases the input and splits on whitespace, discarding tokens
// of length <= 1. A query that yields no tokens matches nothing.
func Tokenize(s string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// bm25Score computes the normalized Okapi BM25 score for one candidate
// document from the structured match statistics.
func bm25Score(stats *matchStats, terms []string, docID string) float64 {
	docLen := float64(stats.docLen[docID])
	var score float64
	for _, term := range terms {
		hits := float64(stats.termHits[term][docID])
		if hits == 0 {
			continue
		}
		df := float64(stats.docFreq[term])
		n := float64(stats.corpusSize)

		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		denom := hits + bm25K1*(1-bm25B+bm25B*docLen/stats.avgDocLen)
		tf := hits * (bm25K1 + 1) / denom
		score += idf * tf
	}

	score /= float64(len(terms)) * scoreNormPerTerm
	if score > 1 {
		score = 1
	}
	return score
}
