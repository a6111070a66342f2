package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/BurntSushi/toml"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "RAFFLE"
	DefaultHome    = ".raffled"
	configDir      = "config"
	dataDir        = "data"
	configFileName = "app.toml"
	genesisName    = "genesis_app_state.json"
)

// Config keys, shared by the TOML file, RAFFLE_* env vars and cobra flags.
const (
	KeyABCIAddr     = "abci_addr"
	KeyTransport    = "transport"
	KeyDBBackend    = "db_backend"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyRPCAddr      = "rpc_addr"
	KeyKeyFile      = "key_file"
	KeyPollInterval = "poll_interval"
)

type Config struct {
	Home string `mapstructure:"-"`

	// Node.
	ABCIAddr  string `mapstructure:"abci_addr"`
	Transport string `mapstructure:"transport"` // socket|grpc
	DBBackend string `mapstructure:"db_backend"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // plain|json

	// Client.
	RPCAddr      string        `mapstructure:"rpc_addr"`
	KeyFile      string        `mapstructure:"key_file"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func DefaultConfig() Config {
	return Config{
		Home:         DefaultHome,
		ABCIAddr:     "tcp://127.0.0.1:26658",
		Transport:    "socket",
		DBBackend:    string(dbm.GoLevelDBBackend),
		LogLevel:     "info",
		LogFormat:    "plain",
		RPCAddr:      "http://127.0.0.1:26657",
		KeyFile:      "key.hex",
		PollInterval: 2 * time.Second,
	}
}

func ConfigPath(home string) string {
	return filepath.Join(home, configDir, configFileName)
}

func GenesisPath(home string) string {
	return filepath.Join(home, configDir, genesisName)
}

func (c Config) DataDir() string {
	return filepath.Join(c.Home, dataDir)
}

// KeyPath resolves KeyFile relative to <home>/config.
func (c Config) KeyPath() string {
	if filepath.IsAbs(c.KeyFile) {
		return c.KeyFile
	}
	return filepath.Join(c.Home, configDir, c.KeyFile)
}

func (c Config) Validate() error {
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("%s must be socket or grpc, got %q", KeyTransport, c.Transport)
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend, dbm.PebbleDBBackend:
	default:
		return fmt.Errorf("unsupported %s %q", KeyDBBackend, c.DBBackend)
	}
	switch c.LogFormat {
	case "plain", "json":
	default:
		return fmt.Errorf("%s must be plain or json, got %q", KeyLogFormat, c.LogFormat)
	}
	if _, err := logLevelOption(c.LogLevel); err != nil {
		return err
	}
	if c.ABCIAddr == "" {
		return fmt.Errorf("%s is required", KeyABCIAddr)
	}
	if c.RPCAddr == "" {
		return fmt.Errorf("%s is required", KeyRPCAddr)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive", KeyPollInterval)
	}
	return nil
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyABCIAddr, d.ABCIAddr)
	v.SetDefault(KeyTransport, d.Transport)
	v.SetDefault(KeyDBBackend, d.DBBackend)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyRPCAddr, d.RPCAddr)
	v.SetDefault(KeyKeyFile, d.KeyFile)
	v.SetDefault(KeyPollInterval, d.PollInterval)
}

// Load reads <home>/config/app.toml (when present) and RAFFLE_* env vars into
// v and returns the resulting config. Values already bound on v, such as
// cobra flags, take precedence over the file.
func Load(home string, v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	path := ConfigPath(home)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.Home = home
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// fileConfig is the on-disk layout; durations are written as strings.
type fileConfig struct {
	ABCIAddr     string `toml:"abci_addr"`
	Transport    string `toml:"transport"`
	DBBackend    string `toml:"db_backend"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	RPCAddr      string `toml:"rpc_addr"`
	KeyFile      string `toml:"key_file"`
	PollInterval string `toml:"poll_interval"`
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	err := toml.NewEncoder(&buf).Encode(fileConfig{
		ABCIAddr:     c.ABCIAddr,
		Transport:    c.Transport,
		DBBackend:    c.DBBackend,
		LogLevel:     c.LogLevel,
		LogFormat:    c.LogFormat,
		RPCAddr:      c.RPCAddr,
		KeyFile:      c.KeyFile,
		PollInterval: c.PollInterval.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores c under <home>/config/app.toml. An existing file is left
// untouched unless overwrite is set.
func Write(home string, c Config, overwrite bool) (string, error) {
	path := ConfigPath(home)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists", path)
		}
	}
	b, err := c.Encode()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func logLevelOption(level string) (log.Option, error) {
	// "module:level,*:level" filters go through the SDK parser.
	if strings.Contains(level, ":") {
		filter, err := log.ParseLogLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
		}
		return log.FilterOption(filter), nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	return log.LevelOption(lvl), nil
}

// NewLogger builds the node logger described by c.
func NewLogger(c Config, w io.Writer) (log.Logger, error) {
	levelOpt, err := logLevelOption(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{levelOpt}
	if c.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
