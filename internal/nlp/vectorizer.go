package nlp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyVocabulary is returned when no n-gram survives document frequency
// and stop word filtering
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// VectorizerOptions controls the n-gram vocabulary built at fit time
type VectorizerOptions struct {
	NGramMin      int
	NGramMax      int
	MinDF         int
	SkipStopWords bool
}

// DefaultVectorizerOptions returns unigrams to trigrams, stop words removed,
// minimum document frequency of 3
func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{
		NGramMin:      1,
		NGramMax:      3,
		MinDF:         3,
		SkipStopWords: true,
	}
}

// Vectorizer turns cleaned text into L2-normalized TF-IDF vectors over a
// vocabulary frozen at fit time. It is never mutated after FitVectorizer
// returns and is safe for concurrent use.
type Vectorizer struct {
	opts  VectorizerOptions
	vocab map[string]int
	terms []string
	idf   []float64
}

// FitVectorizer learns the vocabulary and IDF weights from corpus
func FitVectorizer(corpus []string, opts VectorizerOptions) (*Vectorizer, error) {
	if opts.NGramMax < opts.NGramMin || opts.NGramMax < 1 {
		return nil, fmt.Errorf("invalid n-gram range [%d, %d]", opts.NGramMin, opts.NGramMax)
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, g := range NGrams(Tokenize(doc), opts.NGramMin, opts.NGramMax, opts.SkipStopWords) {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	terms := make([]string, 0, len(df))
	for g, n := range df {
		if n >= opts.MinDF {
			terms = append(terms, g)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no n-gram occurs in at least %d of %d documents",
			ErrEmptyVocabulary, opts.MinDF, len(corpus))
	}
	sort.Strings(terms)

	nDocs := float64(len(corpus))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, g := range terms {
		vocab[g] = i
		idf[i] = math.Log((1+nDocs)/(1+float64(df[g]))) + 1
	}

	return &Vectorizer{
		opts:  opts,
		vocab: vocab,
		terms: terms,
		idf:   idf,
	}, nil
}

// Dim returns the number of columns in the feature space
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Term returns the n-gram that owns column i
func (v *Vectorizer) Term(i int) string {
	return v.terms[i]
}

// Index returns the column of an n-gram, if it is in the vocabulary
func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.vocab[term]
	return i, ok
}

// Transform maps cleaned text into the fitted feature space. N-grams outside
// the vocabulary are ignored; a text without known n-grams yields an empty
// vector of full dimension.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, g := range NGrams(Tokenize(text), v.opts.NGramMin, v.opts.NGramMax, v.opts.SkipStopWords) {
		if i, ok := v.vocab[g]; ok {
			counts[i]++
		}
	}

	vec := Vector{
		Dim:     len(v.terms),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for i := range counts {
		vec.Indices = append(vec.Indices, i)
	}
	sort.Ints(vec.Indices)

	var sum float64
	for _, i := range vec.Indices {
		w := counts[i] * v.idf[i]
		vec.Values = append(vec.Values, w)
		sum += w * w
	}
	if sum > 0 {
		norm := math.Sqrt(sum)
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}

// TransformAll transforms every document of corpus
func (v *Vectorizer) TransformAll(corpus []string) []Vector {
	out := make([]Vector, len(corpus))
	for i, doc := range corpus {
		out[i] = v.Transform(doc)
	}
	return out
}
