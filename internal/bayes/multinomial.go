package bayes

import (
	"errors"
	"fmt"
	"math"

	"github.com/mikey/sms-risk-detector/internal/nlp"
)

// Label is the class of a training document
type Label int

const (
	// Ham is a legitimate message
	Ham Label = 0
	// Spam is an unwanted message
	Spam Label = 1
)

const numClasses = 2

var (
	// ErrDegenerateTrainingSet is returned when the labels do not cover both classes
	ErrDegenerateTrainingSet = errors.New("training set needs both ham and spam examples")
	// ErrDimensionMismatch is returned when a vector does not live in the fitted feature space
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// Model is a fitted two-class multinomial naive Bayes classifier.
// It is read-only after Fit and safe for concurrent use.
type Model struct {
	dim            int
	alpha          float64
	classCount     [numClasses]int
	classLogPrior  [numClasses]float64
	featureLogProb [numClasses][]float64
}

// Fit estimates class priors from label frequencies and per-feature
// likelihoods from additive-smoothed feature sums per class
func Fit(vectors []nlp.Vector, labels []Label, alpha float64) (*Model, error) {
	if len(vectors) != len(labels) {
		return nil, fmt.Errorf("got %d vectors but %d labels", len(vectors), len(labels))
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("smoothing alpha must be positive, got %v", alpha)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no examples", ErrDegenerateTrainingSet)
	}

	dim := vectors[0].Dim
	m := &Model{dim: dim, alpha: alpha}
	var featureCount [numClasses][]float64
	for c := range featureCount {
		featureCount[c] = make([]float64, dim)
	}

	for i, vec := range vectors {
		c := labels[i]
		if c != Ham && c != Spam {
			return nil, fmt.Errorf("invalid label %d at row %d", c, i)
		}
		if vec.Dim != dim {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, vec.Dim, dim)
		}
		m.classCount[c]++
		for k, j := range vec.Indices {
			featureCount[c][j] += vec.Values[k]
		}
	}

	for c := range m.classCount {
		if m.classCount[c] == 0 {
			return nil, fmt.Errorf("%w: no %s examples", ErrDegenerateTrainingSet, Label(c))
		}
	}

	n := float64(len(vectors))
	for c := 0; c < numClasses; c++ {
		m.classLogPrior[c] = math.Log(float64(m.classCount[c]) / n)

		var total float64
		for _, x := range featureCount[c] {
			total += x
		}
		denom := math.Log(total + alpha*float64(dim))

		m.featureLogProb[c] = make([]float64, dim)
		for j, x := range featureCount[c] {
			m.featureLogProb[c][j] = math.Log(x+alpha) - denom
		}
	}

	return m, nil
}

// Dim returns the feature dimension the model was fitted on
func (m *Model) Dim() int {
	return m.dim
}

// ClassCount returns the number of training documents of a class
func (m *Model) ClassCount(c Label) int {
	return m.classCount[c]
}

// PredictSpamProbability returns the posterior probability of the spam class
func (m *Model) PredictSpamProbability(vec nlp.Vector) (float64, error) {
	if vec.Dim != m.dim {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, vec.Dim, m.dim)
	}

	var jll [numClasses]float64
	for c := 0; c < numClasses; c++ {
		jll[c] = m.classLogPrior[c]
		for k, j := range vec.Indices {
			jll[c] += vec.Values[k] * m.featureLogProb[c][j]
		}
	}

	// log-sum-exp over the two classes
	hi := math.Max(jll[Ham], jll[Spam])
	logNorm := hi + math.Log(math.Exp(jll[Ham]-hi)+math.Exp(jll[Spam]-hi))
	return math.Exp(jll[Spam] - logNorm), nil
}

func (l Label) String() string {
	switch l {
	case Ham:
		return "ham"
	case Spam:
		return "spam"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}
