package bayes

import (
	"math"
	"testing"

	"github.com/mikey/sms-risk-detector/internal/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(dim int, pairs ...float64) nlp.Vector {
	v := nlp.Vector{Dim: dim}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func TestFit_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		vectors []nlp.Vector
		labels  []Label
	}{
		{"empty", nil, nil},
		{"all ham", []nlp.Vector{vec(2, 0, 1), vec(2, 1, 1)}, []Label{Ham, Ham}},
		{"all spam", []nlp.Vector{vec(2, 0, 1)}, []Label{Spam}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.vectors, tt.labels, 1.0)
			require.ErrorIs(t, err, ErrDegenerateTrainingSet)
		})
	}
}

func TestFit_InvalidInput(t *testing.T) {
	_, err := Fit([]nlp.Vector{vec(2, 0, 1)}, []Label{Ham, Spam}, 1.0)
	assert.Error(t, err)

	_, err = Fit([]nlp.Vector{vec(2, 0, 1), vec(2, 1, 1)}, []Label{Ham, Spam}, 0)
	assert.Error(t, err)

	_, err = Fit([]nlp.Vector{vec(2, 0, 1), vec(3, 1, 1)}, []Label{Ham, Spam}, 1.0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Fit([]nlp.Vector{vec(2, 0, 1), vec(2, 1, 1)}, []Label{Ham, Label(7)}, 1.0)
	assert.Error(t, err)
}

func TestPredictSpamProbability_MatchesClosedForm(t *testing.T) {
	// feature 0 only in ham, feature 1 only in spam
	vectors := []nlp.Vector{vec(2, 0, 1), vec(2, 0, 1), vec(2, 1, 1)}
	labels := []Label{Ham, Ham, Spam}

	m, err := Fit(vectors, labels, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClassCount(Ham))
	assert.Equal(t, 1, m.ClassCount(Spam))

	// ham: P(f0)=3/4 P(f1)=1/4, spam: P(f0)=1/3 P(f1)=2/3
	p, err := m.PredictSpamProbability(vec(2, 1, 1))
	require.NoError(t, err)

	spam := (1.0 / 3.0) * (2.0 / 3.0)
	ham := (2.0 / 3.0) * (1.0 / 4.0)
	assert.InDelta(t, spam/(spam+ham), p, 1e-12)
}

func TestPredictSpamProbability_EmptyVectorIsPrior(t *testing.T) {
	m, err := Fit([]nlp.Vector{vec(2, 0, 1), vec(2, 1, 1), vec(2, 1, 1), vec(2, 1, 1)},
		[]Label{Ham, Spam, Spam, Spam}, 1.0)
	require.NoError(t, err)

	p, err := m.PredictSpamProbability(nlp.Vector{Dim: 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-12)
}

func TestPredictSpamProbability_NoUnderflow(t *testing.T) {
	const dim = 5000
	ham := nlp.Vector{Dim: dim}
	spam := nlp.Vector{Dim: dim}
	probe := nlp.Vector{Dim: dim}
	for j := 0; j < dim; j++ {
		ham.Indices = append(ham.Indices, j)
		ham.Values = append(ham.Values, 1)
		if j%2 == 0 {
			spam.Indices = append(spam.Indices, j)
			spam.Values = append(spam.Values, 1)
		}
		probe.Indices = append(probe.Indices, j)
		probe.Values = append(probe.Values, 50)
	}

	m, err := Fit([]nlp.Vector{ham, spam}, []Label{Ham, Spam}, 1.0)
	require.NoError(t, err)

	p, err := m.PredictSpamProbability(probe)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p))
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestPredictSpamProbability_DimensionMismatch(t *testing.T) {
	m, err := Fit([]nlp.Vector{vec(2, 0, 1), vec(2, 1, 1)}, []Label{Ham, Spam}, 1.0)
	require.NoError(t, err)

	_, err = m.PredictSpamProbability(nlp.Vector{Dim: 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
