package nlp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("  hello \t a world\n"))
	assert.Empty(t, Tokenize(""))
	assert.Equal(t, []string{"ab", "cd", "ef"}, Tokenize("ab\x1ccd\x1fef"))
}

func TestNGrams(t *testing.T) {
	tokens := []string{"win", "the", "free", "money"}

	got := NGrams(tokens, 1, 3, true)
	assert.Equal(t, []string{
		"win", "free", "money",
		"win free", "free money",
		"win free money",
	}, got)

	got = NGrams(tokens, 2, 2, false)
	assert.Equal(t, []string{"win the", "the free", "free money"}, got)
}

func TestFitVectorizer_MinDocumentFrequency(t *testing.T) {
	corpus := []string{
		"cheap pills online",
		"cheap pills today",
		"cheap pills here",
		"lunch plans",
	}

	v, err := FitVectorizer(corpus, DefaultVectorizerOptions())
	require.NoError(t, err)

	_, ok := v.Index("cheap")
	assert.True(t, ok)
	_, ok = v.Index("cheap pills")
	assert.True(t, ok)
	_, ok = v.Index("lunch")
	assert.False(t, ok, "lunch appears in a single document")
	_, ok = v.Index("here")
	assert.False(t, ok, "stop words never enter the vocabulary")
	assert.Equal(t, 3, v.Dim())
	assert.Equal(t, "cheap", v.Term(0))
}

func TestFitVectorizer_EmptyVocabulary(t *testing.T) {
	tests := []struct {
		name   string
		corpus []string
	}{
		{"no documents", nil},
		{"too few documents", []string{"hello world", "hello there"}},
		{"only stop words", []string{"the and of", "the and of", "the and of"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitVectorizer(tt.corpus, DefaultVectorizerOptions())
			require.ErrorIs(t, err, ErrEmptyVocabulary)
		})
	}
}

func TestFitVectorizer_InvalidRange(t *testing.T) {
	_, err := FitVectorizer([]string{"a"}, VectorizerOptions{NGramMin: 3, NGramMax: 1, MinDF: 1})
	require.Error(t, err)
}

func TestVectorizer_TransformIsNormalized(t *testing.T) {
	corpus := []string{
		"free money now",
		"free money today",
		"free money offer",
		"free prize money",
	}
	v, err := FitVectorizer(corpus, DefaultVectorizerOptions())
	require.NoError(t, err)

	vec := v.Transform("free money free money")
	require.Equal(t, v.Dim(), vec.Dim)
	assert.InDelta(t, 1.0, vec.Norm(), 1e-12)

	for k := 1; k < len(vec.Indices); k++ {
		assert.Less(t, vec.Indices[k-1], vec.Indices[k])
	}
}

func TestVectorizer_UnseenWordsContributeNothing(t *testing.T) {
	corpus := []string{"free money", "free money", "free money"}
	v, err := FitVectorizer(corpus, DefaultVectorizerOptions())
	require.NoError(t, err)

	base := v.Transform("free money")
	withNew := v.Transform("free money zyzzyva")

	assert.Equal(t, base, withNew)
	assert.Equal(t, v.Dim(), withNew.Dim)

	empty := v.Transform("zyzzyva")
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, v.Dim(), empty.Dim)
}

func TestVectorizer_SmoothedIDF(t *testing.T) {
	corpus := []string{"alpha beta", "alpha beta", "alpha beta", "alpha gamma"}
	opts := DefaultVectorizerOptions()
	opts.NGramMax = 1
	v, err := FitVectorizer(corpus, opts)
	require.NoError(t, err)

	// alpha occurs in 4/4 documents, beta in 3/4
	alpha, _ := v.Index("alpha")
	beta, _ := v.Index("beta")
	idfAlpha := math.Log(5.0/5.0) + 1
	idfBeta := math.Log(5.0/4.0) + 1

	vec := v.Transform("alpha beta")
	norm := math.Hypot(idfAlpha, idfBeta)
	assert.InDelta(t, idfAlpha/norm, vec.At(alpha), 1e-12)
	assert.InDelta(t, idfBeta/norm, vec.At(beta), 1e-12)
}
