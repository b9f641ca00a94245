package census

import "fmt"

// ParseError reports a malformed Census API response body.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a non-200 response or a transport fault while
// fetching a dataset. StatusCode is zero for transport faults.
type ExtractionError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extraction error: status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("extraction error: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// TypeConversionError reports a value that could not be cast to its column type.
type TypeConversionError struct {
	Column string
	Value  string
	Err    error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("type conversion error: column %s value %q: %v", e.Column, e.Value, e.Err)
}

func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

// LoadError reports a failure writing a batch to the store.
type LoadError struct {
	Year int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("load error: year %d: %v", e.Year, e.Err)
	}
	return fmt.Sprintf("load error: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
