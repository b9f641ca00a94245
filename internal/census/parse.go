// Package census extracts population estimates from the Census Data API and
// normalizes them into observations.
package census

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/fetcher"
)

// Table is a parsed API response: column names plus text rows of the same width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ParseResponse decodes a Census API body. Two shapes are accepted: an array
// of arrays whose first element is the header, and an array of objects whose
// first object's keys (in document order) form the header.
func ParseResponse(ctx context.Context, r io.Reader) (*Table, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	elemCh, errCh := fetcher.DecodeJSONArray[json.RawMessage](ctx, r)

	var (
		t      *Table
		kind   byte
		n      int
		keyIdx map[string]int
		rowErr error
	)
	for raw := range elemCh {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			rowErr = eris.Errorf("element %d is empty", n)
			break
		}
		if n == 0 {
			kind = raw[0]
			if kind != '[' && kind != '{' {
				rowErr = eris.Errorf("element 0: expected array or object, got %s", truncate(raw))
				break
			}
		} else if raw[0] != kind {
			rowErr = eris.Errorf("element %d: mixed row shapes", n)
			break
		}

		switch kind {
		case '[':
			vals, err := decodeArrayRow(raw)
			if err != nil {
				rowErr = eris.Wrapf(err, "element %d", n)
				break
			}
			if t == nil {
				t = &Table{Columns: vals}
				break
			}
			if len(vals) != len(t.Columns) {
				rowErr = eris.Errorf("row %d has %d fields, header has %d", n, len(vals), len(t.Columns))
				break
			}
			t.Rows = append(t.Rows, vals)
		case '{':
			keys, vals, err := decodeObjectRow(raw)
			if err != nil {
				rowErr = eris.Wrapf(err, "element %d", n)
				break
			}
			if t == nil {
				t = &Table{Columns: keys}
				keyIdx = make(map[string]int, len(keys))
				for i, k := range keys {
					keyIdx[k] = i
				}
			}
			row, err := alignObjectRow(keys, vals, keyIdx)
			if err != nil {
				rowErr = eris.Wrapf(err, "row %d", n)
				break
			}
			t.Rows = append(t.Rows, row)
		}
		if rowErr != nil {
			break
		}
		n++
	}

	if rowErr != nil {
		return nil, &ParseError{Err: rowErr}
	}
	if err := <-errCh; err != nil {
		return nil, &ParseError{Err: err}
	}
	if t == nil {
		return nil, &ParseError{Err: eris.New("empty response body")}
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	return t, nil
}

// decodeArrayRow renders a JSON array of scalars as text fields.
func decodeArrayRow(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var vals []any
	if err := dec.Decode(&vals); err != nil {
		return nil, eris.Wrap(err, "decode array row")
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		s, err := scalarText(v)
		if err != nil {
			return nil, eris.Wrapf(err, "field %d", i)
		}
		out[i] = s
	}
	return out, nil
}

// decodeObjectRow walks the object token by token so key order is preserved.
func decodeObjectRow(raw json.RawMessage) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, nil, eris.Wrap(err, "read object start")
	}
	var keys []string
	vals := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, eris.Wrap(err, "read object key")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, eris.Errorf("unexpected object key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, eris.Wrapf(err, "decode value for %q", key)
		}
		s, err := scalarText(v)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "key %q", key)
		}
		if _, dup := vals[key]; dup {
			return nil, nil, eris.Errorf("duplicate key %q", key)
		}
		keys = append(keys, key)
		vals[key] = s
	}
	return keys, vals, nil
}

// alignObjectRow orders an object's values by the header's key positions.
func alignObjectRow(keys []string, vals map[string]string, keyIdx map[string]int) ([]string, error) {
	if len(keys) != len(keyIdx) {
		return nil, eris.Errorf("has %d fields, header has %d", len(keys), len(keyIdx))
	}
	row := make([]string, len(keyIdx))
	for _, k := range keys {
		i, ok := keyIdx[k]
		if !ok {
			return nil, eris.Errorf("unexpected key %q", k)
		}
		row[i] = vals[k]
	}
	return row, nil
}

func scalarText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", eris.Errorf("nested value of type %T", v)
	}
}

func truncate(raw []byte) string {
	const maxLen = 32
	if len(raw) <= maxLen {
		return string(raw)
	}
	return string(raw[:maxLen]) + "..."
}
