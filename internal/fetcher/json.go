package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray streams the elements of a top-level JSON array, such as a
// Census API body, onto a channel. The input must be exactly one array: a
// missing closing bracket or any non-whitespace after it is an error. Empty
// input yields no elements and no error. Both channels are closed when
// decoding stops.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		tok, err = decoder.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			errCh <- eris.Wrap(err, "json: read closing token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != ']' {
			errCh <- eris.Errorf("json: expected ']', got %v", tok)
			return
		}

		if tok, err := decoder.Token(); err != io.EOF {
			if err != nil {
				errCh <- eris.Wrap(err, "json: trailing data after array")
				return
			}
			errCh <- eris.Errorf("json: trailing data after array: %v", tok)
		}
	}()

	return outCh, errCh
}
