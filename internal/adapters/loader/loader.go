// Package loader reads the job-changes CSV into a table.
//
// A missing file is not an error: Load reports it on the Source and returns
// an empty table carrying the expected columns, so downstream stages always
// see a correctly-shaped input. Cells matching the NaN markers come back
// absent.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/table"
	"github.com/okian/jobchanges/pkg/logger"
	"github.com/okian/jobchanges/pkg/metrics"
)

// DefaultNaNValues are the cell values read as absent.
func DefaultNaNValues() []string {
	return []string{"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "<NA>", "#N/A", "NULL", "null", "None", "<nil>"}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader loads one CSV path.
type Loader struct {
	path      string
	nanValues []string
	log       logger.Logger
	now       func() time.Time
}

// New returns a Loader for path.
func New(path string, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		nanValues: DefaultNaNValues(),
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the configured source path.
func (l *Loader) Path() string { return l.path }

// Load reads the file. ErrCorruptSource and ErrLoadSource are the only
// failure kinds; a missing file yields Source.Missing.
func (l *Loader) Load(ctx context.Context) (table.Table, model.Source, error) {
	start := l.now()
	src := model.Source{Path: l.path, LoadedAt: start}

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		src.Missing = true
		l.log.Warn(ctx, "data file not found", logger.String("path", l.path))
		return table.Empty(model.ExpectedColumns()...), src, nil
	}
	if err != nil {
		metrics.RecordLoadFailure("io")
		return table.Table{}, src, fmt.Errorf("%w: %s: %w", ErrLoadSource, l.path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Read(f, l.nanValues)
	if err != nil {
		metrics.RecordLoadFailure("corrupt")
		return table.Table{}, src, fmt.Errorf("%s: %w", l.path, err)
	}

	src.Rows = t.Len()
	src.Columns = append([]string(nil), t.Columns...)
	took := l.now().Sub(start)
	metrics.RecordLoadDuration(took)
	l.log.Debug(ctx, "data file loaded",
		logger.String("path", l.path),
		logger.Int("rows", src.Rows),
		logger.Int("columns", len(src.Columns)),
		logger.Duration("took", took),
	)
	return t, src, nil
}

// Read parses CSV from r. Rows shorter than the header are padded with
// absent cells; rows wider than the header are corrupt. A nil nanValues
// means DefaultNaNValues.
func Read(r io.Reader, nanValues []string) (table.Table, error) {
	if nanValues == nil {
		nanValues = DefaultNaNValues()
	}
	records, err := readRecords(r)
	if err != nil {
		return table.Table{}, err
	}
	if len(records) == 0 {
		return table.Empty(), nil
	}

	header := records[0]
	if len(records) == 1 {
		return table.Empty(header...), nil
	}
	for i := 1; i < len(records); i++ {
		switch n := len(records[i]); {
		case n > len(header):
			return table.Table{}, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrCorruptSource, i+1, n, len(header))
		case n < len(header):
			padded := make([]string, len(header))
			copy(padded, records[i])
			records[i] = padded
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return table.Table{}, fmt.Errorf("%w: %w", ErrCorruptSource, df.Err)
	}
	return fromFrame(header, df, nanValues), nil
}

// fromFrame copies df into a table, keeping the raw header names since the
// frame may rename duplicate or blank ones.
func fromFrame(header []string, df dataframe.DataFrame, nanValues []string) table.Table {
	t := table.Table{Columns: append([]string(nil), header...), Rows: make([][]table.Cell, df.Nrow())}
	for i := range t.Rows {
		row := make([]table.Cell, len(header))
		for j := range header {
			e := df.Elem(i, j)
			if e.IsNA() || isNaN(e.String(), nanValues) {
				continue
			}
			row[j] = table.Text(e.String())
		}
		t.Rows[i] = row
	}
	return t
}

func isNaN(v string, nanValues []string) bool {
	for _, n := range nanValues {
		if v == n {
			return true
		}
	}
	return false
}

func readRecords(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSource, err)
	}
	return records, nil
}
