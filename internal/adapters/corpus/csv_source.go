package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/sms-risk-detector/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource reads a labeled corpus from a CSV file with a header row
type CSVSource struct {
	path          string
	encoding      encoding.Encoding
	labelColumn   string
	messageColumn string
	logger        *zap.Logger
}

// LookupEncoding resolves an encoding name. Latin-1 decodes every byte, so
// corpora with stray non-UTF-8 bytes load without errors.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unsupported corpus encoding: %s", name)
	}
}

// NewCSVSource creates a new CSV corpus source
func NewCSVSource(path, encodingName, labelColumn, messageColumn string, logger *zap.Logger) (*CSVSource, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &CSVSource{
		path:          path,
		encoding:      enc,
		labelColumn:   labelColumn,
		messageColumn: messageColumn,
		logger:        logger,
	}, nil
}

// Name returns the corpus file path
func (s *CSVSource) Name() string {
	return s.path
}

// Load reads all rows of the corpus file
func (s *CSVSource) Load(ctx context.Context) ([]core.CorpusRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	rows, err := ReadCSV(ctx, transform.NewReader(f, s.encoding.NewDecoder()), s.labelColumn, s.messageColumn)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded corpus",
		zap.String("path", s.path),
		zap.Int("rows", len(rows)))
	return rows, nil
}

// ReadCSV parses already decoded CSV text. Rows may carry extra or missing
// trailing columns; only the label and message columns are required.
func ReadCSV(ctx context.Context, r io.Reader, labelColumn, messageColumn string) ([]core.CorpusRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: corpus is empty", core.ErrCorpusFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", core.ErrCorpusFormat, err)
	}

	labelIdx, msgIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case labelColumn:
			labelIdx = i
		case messageColumn:
			msgIdx = i
		}
	}
	if labelIdx < 0 || msgIdx < 0 {
		return nil, fmt.Errorf("%w: header %v lacks columns %q and %q",
			core.ErrCorpusFormat, header, labelColumn, messageColumn)
	}

	var rows []core.CorpusRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrCorpusFormat, err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) <= labelIdx || len(record) <= msgIdx {
			return nil, fmt.Errorf("%w: line %d has %d columns", core.ErrCorpusFormat, line, len(record))
		}

		rows = append(rows, core.CorpusRow{
			Line:    line,
			Label:   record[labelIdx],
			Message: record[msgIdx],
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: corpus has a header but no rows", core.ErrCorpusFormat)
	}
	return rows, nil
}
