package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/sms-risk-detector/internal/core"
	"go.uber.org/zap"
)

// DefaultQuery selects labeled messages from the conventional corpus table
const DefaultQuery = "SELECT label, message FROM messages ORDER BY id"

// SQLSource reads a labeled corpus with a query returning (label, message)
type SQLSource struct {
	driver string
	dsn    string
	query  string
	logger *zap.Logger
}

// NewSQLSource creates a corpus source backed by a "sqlite3" or "mysql" database
func NewSQLSource(driver, dsn, query string, logger *zap.Logger) (*SQLSource, error) {
	switch driver {
	case "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("unsupported corpus driver: %s", driver)
	}
	if query == "" {
		query = DefaultQuery
	}
	return &SQLSource{
		driver: driver,
		dsn:    dsn,
		query:  query,
		logger: logger,
	}, nil
}

// Name identifies the source by driver
func (s *SQLSource) Name() string {
	return s.driver + " corpus"
}

// Load runs the corpus query and returns every row
func (s *SQLSource) Load(ctx context.Context) ([]core.CorpusRow, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", s.driver, err)
	}
	defer db.Close()

	result, err := db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer result.Close()

	cols, err := result.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus columns: %w", err)
	}
	if len(cols) != 2 {
		return nil, fmt.Errorf("%w: query returns %d columns, want label and message", core.ErrCorpusFormat, len(cols))
	}

	var rows []core.CorpusRow
	for line := 1; result.Next(); line++ {
		var label, message sql.NullString
		if err := result.Scan(&label, &message); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row %d: %w", line, err)
		}
		rows = append(rows, core.CorpusRow{
			Line:    line,
			Label:   label.String,
			Message: message.String,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corpus: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: query returned no rows", core.ErrCorpusFormat)
	}

	s.logger.Info("Loaded corpus",
		zap.String("driver", s.driver),
		zap.Int("rows", len(rows)))
	return rows, nil
}
