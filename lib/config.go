package lib

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/units"
	"gopkg.in/yaml.v3"
)

/* This file implements logic for 'user controlled' global configurations of each module of the engine */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath = "config.json" // the file path for the engine configuration

	// KeystorePasswordEnv names the environment variable holding the keystore password
	KeystorePasswordEnv = "AUM_KEYSTORE_PASSWORD"
)

// Config is the structure of the user configuration options for an engine instance
type Config struct {
	MainConfig    // main options spanning over all modules
	FleetConfig   // wallet fleet options
	MonitorConfig // ledger synchronization options
	RPCConfig     // websocket api options
	StoreConfig   // key persistence options
	MetricsConfig // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:    DefaultMainConfig(),
		FleetConfig:   DefaultFleetConfig(),
		MonitorConfig: DefaultMonitorConfig(),
		RPCConfig:     DefaultRPCConfig(),
		StoreConfig:   DefaultStoreConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel string `json:"logLevel"` // any level includes the levels above it: debug < info < warning < error
	Network  string `json:"network"`  // the name of the network the fleet lives on; also the bech32 human readable part
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel: "info", // everything but debug is the default
		Network:  "aum",  // the default network
	}
}

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 {
	switch {
	case strings.Contains(strings.ToLower(m.LogLevel), "deb"):
		return DebugLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "inf"):
		return InfoLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "war"):
		return WarnLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// FLEET CONFIG BELOW

// FleetConfig is the user configuration of the wallet fleet
type FleetConfig struct {
	KeyScheme      string `json:"keyScheme"`      // the signature scheme of newly created wallets: ed25519 or secp256k1
	AddressFormat  string `json:"addressFormat"`  // the textual form of addresses: hex, base58 or bech32
	InitialWallets int    `json:"initialWallets"` // scale the fleet to this size at startup if it is smaller
}

// DefaultFleetConfig() returns the developer recommended fleet configuration
func DefaultFleetConfig() FleetConfig {
	return FleetConfig{
		KeyScheme:      "ed25519", // ed25519 keys by default
		AddressFormat:  "hex",     // hex addresses by default
		InitialWallets: 1,         // always have a wallet to receive funds
	}
}

// MONITOR CONFIG BELOW

// MonitorConfig is the user configuration of the background ledger synchronization
type MonitorConfig struct {
	SyncIntervalS      int    `json:"syncIntervalS"`      // seconds between two sync passes
	SyncTimeoutS       int    `json:"syncTimeoutS"`       // upper bound of a single sync pass
	BroadcastRetries   uint64 `json:"broadcastRetries"`   // retries of a failed broadcast within a pass
	MaxParallelFetch   int    `json:"maxParallelFetch"`   // concurrent balance queries against the ledger
	LedgerType         string `json:"ledgerType"`         // memory or rpc
	LedgerURL          string `json:"ledgerURL"`          // the base url of the rpc ledger
	LedgerTimeoutS     int    `json:"ledgerTimeoutS"`     // per http request timeout against the ledger
	MinFreeMemoryBytes uint64 `json:"minFreeMemoryBytes"` // the health check fails below this amount of available memory
}

// DefaultMonitorConfig() returns the developer recommended monitor configuration
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		SyncIntervalS:      10,
		SyncTimeoutS:       30,
		BroadcastRetries:   3,
		MaxParallelFetch:   8,
		LedgerType:         "memory",
		LedgerURL:          "http://localhost:50200",
		LedgerTimeoutS:     5,
		MinFreeMemoryBytes: uint64(16 * units.MiB),
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	ListenAddress     string  `json:"listenAddress"`     // the address the websocket api listens on
	RPCUrl            string  `json:"rpcURL"`            // the websocket url used by the cli client
	TimeoutS          int     `json:"timeoutS"`          // the rpc request timeout in seconds
	MaxMessageBytes   int64   `json:"maxMessageBytes"`   // the largest inbound frame accepted
	PingPeriodS       int     `json:"pingPeriodS"`       // how often the server pings an idle client
	PongWaitS         int     `json:"pongWaitS"`         // how long the server waits for any frame before closing
	WriteTimeoutS     int     `json:"writeTimeoutS"`     // deadline for writing a single frame
	RequestsPerSecond float64 `json:"requestsPerSecond"` // per connection request rate limit
	RequestBurst      int     `json:"requestBurst"`      // per connection request burst
	MaxConnections    int     `json:"maxConnections"`    // simultaneous connections accepted by the listener; 0 is unlimited
	Admin             bool    `json:"admin"`             // allow fleet mutating requests (create, scale, delete)
}

// DefaultRPCConfig() serves the websocket api on localhost:50100
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		ListenAddress:     "0.0.0.0:50100",
		RPCUrl:            "ws://localhost:50100/v1/ws",
		TimeoutS:          10,
		MaxMessageBytes:   int64(64 * units.KiB),
		PingPeriodS:       50,
		PongWaitS:         60,
		WriteTimeoutS:     10,
		RequestsPerSecond: 50,
		RequestBurst:      100,
		MaxConnections:    256,
		Admin:             false,
	}
}

// STORE CONFIG BELOW

// StoreConfig is user configurations for the key value database
type StoreConfig struct {
	DataDirPath string `json:"dataDirPath"` // path of the designated folder where the application stores its data
	DBName      string `json:"dbName"`      // name of the database
	Backend     string `json:"backend"`     // leveldb, bolt, badger or memory
	Encrypt     bool   `json:"encrypt"`     // encrypt secret keys at rest with the keystore password
}

// DefaultDataDirPath() is $USERHOME/.aum
func DefaultDataDirPath() string {
	// get the user home
	home, err := os.UserHomeDir()
	// if unable to get the user home
	if err != nil {
		// fatal error
		panic(err)
	}
	// exit with full default data directory path
	return filepath.Join(home, ".aum")
}

// DefaultStoreConfig() returns the developer recommended store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DataDirPath: DefaultDataDirPath(), // use the default data dir path
		DBName:      "fleet",              // 'fleet' database name
		Backend:     "leveldb",            // persist to disk with leveldb
		Encrypt:     false,                // plaintext keys unless asked otherwise
	}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled"`           // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           true,           // enabled by default
		PrometheusAddress: "0.0.0.0:9090", // the default prometheus address
	}
}

// WriteToFile() saves the Config object to a JSON, TOML or YAML file chosen by the file extension
func (c Config) WriteToFile(path string) ErrorI {
	bz, err := c.encode(filepath.Ext(path))
	if err != nil {
		return err
	}
	if e := os.WriteFile(path, bz, 0600); e != nil {
		return ErrWriteFile(e)
	}
	return nil
}

// NewConfigFromFile() populates a Config object from a JSON, TOML or YAML file
func NewConfigFromFile(path string) (Config, ErrorI) {
	// read the file into bytes
	fileBytes, e := os.ReadFile(path)
	if e != nil {
		return Config{}, ErrReadFile(e)
	}
	// toml and yaml documents are normalized to json so one set of struct tags serves all three
	jsonBytes, err := toJSON(filepath.Ext(path), fileBytes)
	if err != nil {
		return Config{}, err
	}
	// define the default config to fill in any blanks in the file
	c := DefaultConfig()
	if err = UnmarshalJSON(jsonBytes, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// encode() renders the config in the format named by the extension
func (c Config) encode(ext string) ([]byte, ErrorI) {
	jsonBytes, err := MarshalJSONIndent(c)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(ext) {
	case ".json", "":
		return jsonBytes, nil
	}
	generic := map[string]interface{}{}
	if err = UnmarshalJSON(jsonBytes, &generic); err != nil {
		return nil, err
	}
	switch strings.ToLower(ext) {
	case ".toml":
		buf := new(bytes.Buffer)
		if e := toml.NewEncoder(buf).Encode(generic); e != nil {
			return nil, ErrJSONMarshal(e)
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml":
		bz, e := yaml.Marshal(generic)
		if e != nil {
			return nil, ErrJSONMarshal(e)
		}
		return bz, nil
	default:
		return nil, ErrUnknownConfigFormat(ext)
	}
}

// toJSON() converts a config document into json bytes
func toJSON(ext string, bz []byte) ([]byte, ErrorI) {
	generic := map[string]interface{}{}
	switch strings.ToLower(ext) {
	case ".json", "":
		return bz, nil
	case ".toml":
		if _, e := toml.Decode(string(bz), &generic); e != nil {
			return nil, ErrJSONUnmarshal(e)
		}
	case ".yaml", ".yml":
		if e := yaml.Unmarshal(bz, &generic); e != nil {
			return nil, ErrJSONUnmarshal(e)
		}
	default:
		return nil, ErrUnknownConfigFormat(ext)
	}
	return MarshalJSON(generic)
}
