package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/models"
)

// fileIdentity derives a source identity from path, modification time and size.
func fileIdentity(kind, path string) (SourceIdentity, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SourceIdentity{}, fmt.Errorf("%s: %q: %w", kind, path, ErrNotFound)
		}
		return SourceIdentity{}, fmt.Errorf("%s: stat %q: %w", kind, path, err)
	}
	if info.IsDir() {
		return SourceIdentity{}, fmt.Errorf("%s: %q is a directory: %w", kind, path, ErrNotFound)
	}
	return SourceIdentity{
		Kind:     kind,
		Location: abs,
		Version:  strconv.FormatInt(info.ModTime().UnixNano(), 10) + "-" + strconv.FormatInt(info.Size(), 10),
	}, nil
}

// CSVSource reads listings from a comma-separated file with a header row.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a CSVSource for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Identity(_ context.Context) (SourceIdentity, error) {
	return fileIdentity("csv", s.Path)
}

// ReadAll parses the whole file. Rows may have fewer cells than the header.
func (s *CSVSource) ReadAll(ctx context.Context) ([]*models.RawListing, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("csv: %q: %w", s.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("csv: open %q: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read %q: %w", s.Path, err)
		}
		rows = append(rows, rec)
	}

	listings, err := rowsToRaw(rows)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", s.Path, err)
	}
	return listings, nil
}

// XLSXSource reads listings from a worksheet of an Excel workbook.
// An empty Sheet selects the first sheet in the workbook.
type XLSXSource struct {
	Path  string
	Sheet string
}

// NewXLSXSource returns an XLSXSource for path and sheet.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{Path: path, Sheet: sheet}
}

func (s *XLSXSource) Identity(_ context.Context) (SourceIdentity, error) {
	id, err := fileIdentity("xlsx", s.Path)
	if err != nil {
		return id, err
	}
	if s.Sheet != "" {
		id.Location += "#" + s.Sheet
	}
	return id, nil
}

func (s *XLSXSource) ReadAll(ctx context.Context) ([]*models.RawListing, error) {
	if _, err := fileIdentity("xlsx", s.Path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx: %q has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}

	listings, err := rowsToRaw(rows)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %q: %w", s.Path, err)
	}
	return listings, nil
}
