package labels

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/fetcher"
	"github.com/sells-group/demography-cli/internal/model"
)

var seedHeader = []string{"grp_category", "grp_name", "grp_desc"}

// entryParser turns header-led records into category entries, rejecting
// duplicate (category, code) pairs.
type entryParser struct {
	format  string
	idx     map[string]int
	line    int
	seen    map[entryKey]int
	entries []model.CategoryEntry
}

type entryKey struct {
	c    model.Category
	code int
}

func newEntryParser(format string) *entryParser {
	return &entryParser{format: format, seen: make(map[entryKey]int)}
}

func (p *entryParser) add(rec []string) error {
	p.line++
	if p.idx == nil {
		p.idx = make(map[string]int, len(rec))
		for i, col := range rec {
			p.idx[col] = i
		}
		for _, col := range seedHeader {
			if _, ok := p.idx[col]; !ok {
				return eris.Errorf("labels: %s header missing column %q", p.format, col)
			}
		}
		return nil
	}
	if len(rec) < len(p.idx) {
		return eris.Errorf("labels: %s row %d has %d fields, want %d", p.format, p.line, len(rec), len(p.idx))
	}

	c, err := model.ParseCategory(rec[p.idx["grp_category"]])
	if err != nil {
		return eris.Wrapf(err, "labels: %s row %d", p.format, p.line)
	}
	code, err := strconv.Atoi(rec[p.idx["grp_name"]])
	if err != nil {
		return eris.Wrapf(err, "labels: %s row %d: grp_name", p.format, p.line)
	}
	k := entryKey{c, code}
	if prev, dup := p.seen[k]; dup {
		return eris.Errorf("labels: %s row %d duplicates %s code %d from row %d", p.format, p.line, c, code, prev)
	}
	p.seen[k] = p.line
	p.entries = append(p.entries, model.CategoryEntry{Category: c, Code: code, Label: rec[p.idx["grp_desc"]]})
	return nil
}

func (p *entryParser) finish() ([]model.CategoryEntry, error) {
	if p.idx == nil {
		return nil, eris.Errorf("labels: %s is empty", p.format)
	}
	return p.entries, nil
}

// ReadEntriesCSV reads metadata entries from a CSV with the header
// grp_category,grp_name,grp_desc. (category, code) pairs must be unique.
func ReadEntriesCSV(ctx context.Context, r io.Reader) ([]model.CategoryEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{TrimSpace: true, Comment: '#'})

	p := newEntryParser("csv")
	for rec := range rowCh {
		if err := p.add(rec); err != nil {
			return nil, err
		}
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "labels: read csv")
	}
	return p.finish()
}

// ReadEntriesXLSX reads metadata entries from the first sheet of a workbook
// laid out like the CSV form.
func ReadEntriesXLSX(path string) ([]model.CategoryEntry, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "labels: read xlsx")
	}

	p := newEntryParser("xlsx")
	for _, rec := range rows {
		if err := p.add(rec); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

// ReadEntriesFile reads entries from a .csv or .xlsx file.
func ReadEntriesFile(ctx context.Context, path string) ([]model.CategoryEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadEntriesXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "labels: open seed file")
		}
		defer f.Close() //nolint:errcheck
		return ReadEntriesCSV(ctx, f)
	default:
		return nil, eris.Errorf("labels: unsupported seed file %q (want .csv or .xlsx)", path)
	}
}
