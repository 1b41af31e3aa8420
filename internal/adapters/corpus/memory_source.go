package corpus

import (
	"context"

	"github.com/mikey/sms-risk-detector/internal/core"
)

// MemorySource serves a fixed set of rows
type MemorySource struct {
	name string
	rows []core.CorpusRow
}

// NewMemorySource creates a source from label/message pairs
func NewMemorySource(name string, pairs ...[2]string) *MemorySource {
	rows := make([]core.CorpusRow, len(pairs))
	for i, p := range pairs {
		rows[i] = core.CorpusRow{Line: i + 1, Label: p[0], Message: p[1]}
	}
	return &MemorySource{name: name, rows: rows}
}

// Name returns the source name
func (s *MemorySource) Name() string {
	return s.name
}

// Load returns a copy of the rows
func (s *MemorySource) Load(ctx context.Context) ([]core.CorpusRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]core.CorpusRow(nil), s.rows...), nil
}
