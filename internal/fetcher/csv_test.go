package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_SeedRecords(t *testing.T) {
	input := "grp_category,grp_name,grp_desc\nsex,1,Male\nstate,5,California\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"grp_category", "grp_name", "grp_desc"},
		{"sex", "1", "Male"},
		{"state", "5", "California"},
	}, rows)
}

func TestStreamCSV_QuotedLabels(t *testing.T) {
	input := "grp_category,grp_name,grp_desc\nrace,7,\"Black, alone or in combination\"\nhisp,2,\"Hispanic \"\"Origin\"\"\"\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Black, alone or in combination", rows[1][2])
	assert.Equal(t, `Hispanic "Origin"`, rows[2][2])
}

func TestStreamCSV_TrimSpaceAndComments(t *testing.T) {
	input := "# labels exported 2026-01-15\ngrp_category, grp_name ,grp_desc\n# sex codes\nsex , 2 ,  Female \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Comment:   '#',
		TrimSpace: true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"grp_category", "grp_name", "grp_desc"},
		{"sex", "2", "Female"},
	}, rows)
}

func TestStreamCSV_NoTrimKeepsWhitespace(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("sex, 1 ,Male\n"), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"sex", " 1 ", "Male"}}, rows)
}

func TestStreamCSV_VariableWidth(t *testing.T) {
	input := "grp_category,grp_name,grp_desc\nsex,1\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2)
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_BareQuote(t *testing.T) {
	input := "grp_category,grp_name,grp_desc\nrace,1,White \"alone\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("grp_category,grp_name,grp_desc\n")
	for i := range 10000 {
		sb.WriteString("agegroup,")
		sb.WriteString(strings.Repeat("1", i%5+1))
		sb.WriteString(",label\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
	assert.Empty(t, rows)
}
