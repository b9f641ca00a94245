package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"load", "seed-metadata", "migrate", "status", "serve", "vintages"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "demography", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestLoadCommand_Flags(t *testing.T) {
	flag := loadCmd.Flags().Lookup("years")
	require.NotNil(t, flag, "load command should have --years flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestSeedCommand_Flags(t *testing.T) {
	require.NotNil(t, seedCmd.Flags().Lookup("file"))
}

func TestStatusCommand_Flags(t *testing.T) {
	for _, name := range []string{"year", "status", "limit", "summary", "alert"} {
		assert.NotNil(t, statusCmd.Flags().Lookup(name), "status should have --%s flag", name)
	}
	assert.Equal(t, "50", statusCmd.Flags().Lookup("limit").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", nil},
		{"2014", []int{2014}},
		{"2014, 2016,", []int{2014, 2016}},
	}
	for _, tt := range tests {
		got, err := parseYears(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseYears("2014,twenty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid year "twenty"`)
}

func TestResolvePort(t *testing.T) {
	assert.Equal(t, 9090, resolvePort(9090, 8501))
	assert.Equal(t, 8501, resolvePort(0, 8501))
	assert.Equal(t, 0, resolvePort(0, 0))
}
