package fetcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll[T any](t *testing.T, ctx context.Context, input string) ([]T, error) {
	t.Helper()
	ch, errCh := DecodeJSONArray[T](ctx, strings.NewReader(input))

	var out []T
	for v := range ch {
		out = append(out, v)
	}
	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	return out, gotErr
}

func TestDecodeJSONArray_CensusRows(t *testing.T) {
	input := `[["AGEGROUP","SEX","RACE","POP","HISP","state"],
["1","1","2","500","1","05"],
["2","2","1","1234","2","01"]]
`
	rows, err := decodeAll[[]string](t, context.Background(), input)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"AGEGROUP", "SEX", "RACE", "POP", "HISP", "state"}, rows[0])
	assert.Equal(t, []string{"1", "1", "2", "500", "1", "05"}, rows[1])
	assert.Equal(t, []string{"2", "2", "1", "1234", "2", "01"}, rows[2])
}

func TestDecodeJSONArray_ObjectRows(t *testing.T) {
	input := "[{\"POP\":\"500\",\"state\":\"5\"}\n]"
	rows, err := decodeAll[map[string]string](t, context.Background(), input)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{"POP": "500", "state": "5"}, rows[0])
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	for _, input := range []string{"", "[]", " [ ] \n"} {
		rows, err := decodeAll[[]string](t, context.Background(), input)
		require.NoError(t, err, "%q", input)
		assert.Empty(t, rows, "%q", input)
	}
}

func TestDecodeJSONArray_Malformed(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"object body", `{"error":"unknown variable 'RACE6'"}`, "expected '['"},
		{"html error page", `<html>Service Unavailable</html>`, "read opening token"},
		{"missing closing bracket", `[["POP","state"],["1","2"]`, "read closing token"},
		{"truncated element", `[["POP","state"],["1"`, "decode element"},
		{"trailing object", `[["POP","state"],["1","2"]] {"junk":`, "trailing data"},
		{"second array", `[["POP"]][["POP"]]`, "trailing data"},
		{"trailing text", `[["POP"]] error`, "trailing data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeAll[[]string](t, context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeJSONArray_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`[["POP","state"]`)
	for range 10000 {
		sb.WriteString(`,["100","1"]`)
	}
	sb.WriteString("]")

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	_, err := decodeAll[[]string](t, ctx, sb.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
