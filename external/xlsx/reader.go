package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"github.com/xuri/excelize/v2"
)

type ReaderConfig struct {
	Path string
	// Sheet defaults to the first sheet of the workbook.
	Sheet  string
	Logger *logging.Logger
}

// Reader serves a roster exported to an .xlsx workbook.
type Reader struct {
	path   string
	sheet  string
	logger *logging.Logger
}

func NewReader(cfg ReaderConfig) (*Reader, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: xlsx path is required", usecase.ErrInvalidInput)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Reader{path: path, sheet: strings.TrimSpace(cfg.Sheet), logger: logger}, nil
}

func (r *Reader) Name() string {
	return "xlsx:" + filepath.Base(r.path)
}

// FetchRows opens the workbook on every call so edits between passes are picked up.
func (r *Reader) FetchRows(ctx context.Context) ([]roster.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", usecase.ErrSourceUnavailable, r.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.WarnContext(ctx, "close workbook failed", "path", r.path, "error", err)
		}
	}()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", usecase.ErrSourceUnavailable, sheet, r.path)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", usecase.ErrSourceUnavailable, sheet, err)
	}
	if len(records) == 0 {
		return []roster.RawRow{}, nil
	}

	header := records[0]
	data := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		data = append(data, row)
	}

	rows := roster.RowsFromTable(header, data, 2)
	r.logger.DebugContext(ctx, "xlsx rows read", "path", r.path, "sheet", sheet, "rows", len(rows))
	return rows, nil
}
