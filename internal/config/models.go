package config

import (
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/nlp"
)

// CorpusConfig represents where the training corpus comes from
type CorpusConfig struct {
	Type          string
	Path          string
	Encoding      string
	LabelColumn   string
	MessageColumn string
	DSN           string
	Query         string
}

// ServerConfig represents the configuration of the message filter front end
type ServerConfig struct {
	FilterType     string
	ListenAddress  string
	BlockHighRisk  bool
	RiskHeader     string
	ScoreHeader    string
	CleanedHeader  string
	PostfixAddress string
	PostfixPort    int
	PostfixEnabled bool
	SubjectPrefix  string
	ModifySubject  bool
	MaxBodySize    int
}

// GetCorpus returns the corpus configuration
func (c *Config) GetCorpus() CorpusConfig {
	return CorpusConfig{
		Type:          c.GetString("corpus.type"),
		Path:          c.GetString("corpus.path"),
		Encoding:      c.GetString("corpus.encoding"),
		LabelColumn:   c.GetString("corpus.label_column"),
		MessageColumn: c.GetString("corpus.message_column"),
		DSN:           c.GetString("corpus.dsn"),
		Query:         c.GetString("corpus.query"),
	}
}

// GetTrainOptions returns the vectorizer and classifier settings
func (c *Config) GetTrainOptions() core.TrainOptions {
	return core.TrainOptions{
		Vectorizer: nlp.VectorizerOptions{
			NGramMin:      c.GetInt("model.ngram_min"),
			NGramMax:      c.GetInt("model.ngram_max"),
			MinDF:         c.GetInt("model.min_df"),
			SkipStopWords: c.GetBool("model.stop_words"),
		},
		Alpha: c.GetFloat64("model.alpha"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:     c.GetString("server.filter_type"),
		ListenAddress:  c.GetString("server.listen_address"),
		BlockHighRisk:  c.GetBool("server.block_high_risk"),
		RiskHeader:     c.GetString("server.headers.risk"),
		ScoreHeader:    c.GetString("server.headers.score"),
		CleanedHeader:  c.GetString("server.headers.cleaned"),
		PostfixAddress: c.GetString("server.postfix.address"),
		PostfixPort:    c.GetInt("server.postfix.port"),
		PostfixEnabled: c.GetBool("server.postfix.enabled"),
		SubjectPrefix:  c.GetString("server.subject_prefix"),
		ModifySubject:  c.GetBool("server.modify_subject"),
		MaxBodySize:    c.GetInt("spam.max_body_size"),
	}
}
