// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package transform

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/mlboard/internal/models"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 10000

// SparseVector holds the non-zero term counts of one document, with
// Indices ascending.
type SparseVector struct {
	Indices []int
	Counts  []float64
}

// TermCounts is a bag-of-words encoding: row i counts the Vocabulary terms
// of document i.
type TermCounts struct {
	Vocabulary []string
	Rows       []SparseVector
}

// tokenize lower-cases text and returns its words of two or more letters,
// digits or underscores, excluding English stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Vectorize counts terms per document. When the corpus has more than
// maxFeatures distinct terms, the most frequent ones across the corpus are
// kept, ties broken alphabetically. The vocabulary is sorted alphabetically.
func Vectorize(docs []string, maxFeatures int) *TermCounts {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	tokens := make([][]string, len(docs))
	freq := make(map[string]int)
	for i, d := range docs {
		tokens[i] = tokenize(d)
		for _, t := range tokens[i] {
			freq[t]++
		}
	}

	vocab := make([]string, 0, len(freq))
	for t := range freq {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)
	if len(vocab) > maxFeatures {
		sort.SliceStable(vocab, func(a, b int) bool { return freq[vocab[a]] > freq[vocab[b]] })
		vocab = vocab[:maxFeatures]
		sort.Strings(vocab)
	}
	index := make(map[string]int, len(vocab))
	for i, t := range vocab {
		index[t] = i
	}

	out := &TermCounts{Vocabulary: vocab, Rows: make([]SparseVector, len(docs))}
	for i, toks := range tokens {
		counts := make(map[int]float64, len(toks))
		for _, t := range toks {
			if j, ok := index[t]; ok {
				counts[j]++
			}
		}
		v := SparseVector{Indices: make([]int, 0, len(counts))}
		for j := range counts {
			v.Indices = append(v.Indices, j)
		}
		sort.Ints(v.Indices)
		v.Counts = make([]float64, len(v.Indices))
		for k, j := range v.Indices {
			v.Counts[k] = counts[j]
		}
		out.Rows[i] = v
	}
	return out
}

// CosineSimilarity returns the dense row-major N x N cosine matrix of the
// vectors. The result is exactly symmetric with a unit diagonal; a vector
// with no terms scores 0 against every other vector.
func CosineSimilarity(vectors []SparseVector) []float64 {
	n := len(vectors)
	out := make([]float64, n*n)
	norms := make([]float64, n)
	postings := make(map[int][]posting)
	for i, v := range vectors {
		norms[i] = floats.Norm(v.Counts, 2)
		for k, j := range v.Indices {
			postings[j] = append(postings[j], posting{doc: i, count: v.Counts[k]})
		}
	}

	dots := make([]float64, n)
	for i, v := range vectors {
		out[i*n+i] = 1
		if norms[i] == 0 {
			continue
		}
		clear(dots)
		for k, j := range v.Indices {
			for _, p := range postings[j] {
				if p.doc > i {
					dots[p.doc] += v.Counts[k] * p.count
				}
			}
		}
		for j := i + 1; j < n; j++ {
			if dots[j] == 0 {
				continue
			}
			s := dots[j] / (norms[i] * norms[j])
			if s > 1 {
				s = 1
			}
			out[i*n+j] = s
			out[j*n+i] = s
		}
	}
	return out
}

type posting struct {
	doc   int
	count float64
}

// BuildSimilarityMatrix vectorizes the tags of every row and returns their
// cosine similarity, keyed by the rows' movie ids.
func BuildSimilarityMatrix(tagged *models.TaggedMovieTable, maxFeatures int) (*models.SimilarityMatrix, error) {
	docs := make([]string, len(tagged.Rows))
	for i, r := range tagged.Rows {
		docs[i] = r.Tags
	}
	tc := Vectorize(docs, maxFeatures)
	m := &models.SimilarityMatrix{
		N:        len(docs),
		MovieIDs: tagged.IDs(),
		Values:   CosineSimilarity(tc.Rows),
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	return m, nil
}
