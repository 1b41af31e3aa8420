package core

import (
	"errors"

	"github.com/mikey/sms-risk-detector/internal/bayes"
	"github.com/mikey/sms-risk-detector/internal/nlp"
)

var (
	// ErrCorpusFormat is returned when the training corpus is empty, lacks
	// the label or message column, or carries an unknown label
	ErrCorpusFormat = errors.New("corpus format error")
	// ErrEmptyVocabulary is returned when no n-gram survives vocabulary filtering
	ErrEmptyVocabulary = nlp.ErrEmptyVocabulary
	// ErrDegenerateTrainingSet is returned when the corpus has a single class
	ErrDegenerateTrainingSet = bayes.ErrDegenerateTrainingSet
	// ErrNotFitted is returned when predicting with a bundle that was never trained
	ErrNotFitted = errors.New("model bundle is not fitted")
	// ErrOutOfRange is returned when a probability lies outside [0, 1]
	ErrOutOfRange = errors.New("probability out of range")
)
