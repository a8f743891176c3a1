package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	// calculate expected
	expected := Config{
		MainConfig:    DefaultMainConfig(),
		FleetConfig:   DefaultFleetConfig(),
		MonitorConfig: DefaultMonitorConfig(),
		RPCConfig:     DefaultRPCConfig(),
		StoreConfig:   DefaultStoreConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
	// execute the function call
	got := DefaultConfig()
	// compare got vs expected
	diff := cmp.Diff(expected, got)
	require.Empty(t, diff, "config mismatch: %s", diff)
}

func TestFileConfig(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			filePath := filepath.Join(t.TempDir(), name)
			// define a variable to test upon
			config := DefaultConfig()
			config.LogLevel = "debug"
			config.InitialWallets = 5
			config.RequestsPerSecond = 2.5
			config.Admin = true
			// write to file
			require.NoError(t, config.WriteToFile(filePath))
			// read from file
			got, err := NewConfigFromFile(filePath)
			require.NoError(t, err)
			// compare got vs expected
			require.Equal(t, config, got)
		})
	}
}

func TestFileConfigPartial(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "config.toml")
	// a document that only overrides a couple of options
	require.NoError(t, os.WriteFile(filePath, []byte("logLevel = \"error\"\nbackend = \"bolt\"\n"), 0600))
	// execute the function call
	got, err := NewConfigFromFile(filePath)
	require.NoError(t, err)
	// validate overrides and defaults
	require.Equal(t, ErrorLevel, got.GetLogLevel())
	require.Equal(t, "bolt", got.Backend)
	require.Equal(t, DefaultRPCConfig(), got.RPCConfig)
}

func TestFileConfigUnknownFormat(t *testing.T) {
	// execute the function call
	err := DefaultConfig().WriteToFile(filepath.Join(t.TempDir(), "config.ini"))
	// validate the error
	require.ErrorIs(t, err, ErrUnknownConfigFormat(""))
}
