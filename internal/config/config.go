package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const (
	envPrefix      = "SUSHIWALLET_"
	defaultEnvFile = ".env"
	appDir         = "sushiwallet"
)

// DevAccountUnset marks GlobalFlags.DevAccount as not given on the command line.
const DevAccountUnset = -1

type GlobalFlags struct {
	ConfigPath     string
	EnvFile        string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	LogLevel       string
	StatePath      string
	DevAccount     int
	KeySource      string
	NoSimulate     bool
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	EnableCommands  []string
	Timeout         time.Duration
	LogLevel        zapcore.Level
	StatePath       string
	StateLockPath   string
	ActionStorePath string
	ActionLockPath  string
	EnvFile         string
	DevAccount      int
	KeySource       string
	Simulate        bool
	Chain           ledger.Config
	Deployment      registry.Deployment
}

type fileConfig struct {
	Output   string `yaml:"output"`
	LogLevel string `yaml:"log_level"`
	Timeout  string `yaml:"timeout"`
	EnvFile  string `yaml:"env_file"`
	State    struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"state"`
	Execution struct {
		ActionsPath     string `yaml:"actions_path"`
		ActionsLockPath string `yaml:"actions_lock_path"`
		Simulate        *bool  `yaml:"simulate"`
		DevAccount      *int   `yaml:"dev_account"`
		KeySource       string `yaml:"key_source"`
	} `yaml:"execution"`
	Chain struct {
		ChainID   int64  `yaml:"chain_id"`
		BlockTime string `yaml:"block_time"`
	} `yaml:"chain"`
	Addresses map[string]string `yaml:"addresses"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	if v := os.Getenv(envPrefix + "ENV_FILE"); v != "" {
		settings.EnvFile = v
	}
	if strings.TrimSpace(flags.EnvFile) != "" {
		settings.EnvFile = flags.EnvFile
	}
	if err := applyDotEnv(settings.EnvFile, &settings); err != nil {
		return Settings{}, err
	}

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.DevAccount < 0 {
		settings.DevAccount = 0
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	dir, err := defaultDataDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:      "json",
		Timeout:         30 * time.Second,
		LogLevel:        zapcore.WarnLevel,
		StatePath:       filepath.Join(dir, "chain.db"),
		StateLockPath:   filepath.Join(dir, "chain.lock"),
		ActionStorePath: filepath.Join(dir, "actions.db"),
		ActionLockPath:  filepath.Join(dir, "actions.lock"),
		EnvFile:         defaultEnvFile,
		KeySource:       "dev",
		Simulate:        true,
		Chain:           ledger.DefaultConfig(),
		Deployment:      registry.Mainnet(),
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	if v := os.Getenv(envPrefix + "CONFIG"); v != "" {
		return v, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDir, "config.yaml"), nil
}

func defaultDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appDir), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("config log_level: %w", err)
		}
		settings.LogLevel = level
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.EnvFile != "" {
		settings.EnvFile = cfg.EnvFile
	}
	if cfg.State.Path != "" {
		settings.StatePath = cfg.State.Path
	}
	if cfg.State.LockPath != "" {
		settings.StateLockPath = cfg.State.LockPath
	}
	if cfg.Execution.ActionsPath != "" {
		settings.ActionStorePath = cfg.Execution.ActionsPath
	}
	if cfg.Execution.ActionsLockPath != "" {
		settings.ActionLockPath = cfg.Execution.ActionsLockPath
	}
	if cfg.Execution.Simulate != nil {
		settings.Simulate = *cfg.Execution.Simulate
	}
	if cfg.Execution.DevAccount != nil {
		settings.DevAccount = *cfg.Execution.DevAccount
	}
	if cfg.Execution.KeySource != "" {
		settings.KeySource = strings.ToLower(cfg.Execution.KeySource)
	}
	if cfg.Chain.ChainID > 0 {
		settings.Chain.ChainID = big.NewInt(cfg.Chain.ChainID)
	}
	if cfg.Chain.BlockTime != "" {
		d, err := time.ParseDuration(cfg.Chain.BlockTime)
		if err != nil {
			return fmt.Errorf("config chain.block_time: %w", err)
		}
		settings.Chain.BlockTime = d
	}
	for name, value := range cfg.Addresses {
		if err := applyAddress(settings, strings.ToUpper(name), value); err != nil {
			return fmt.Errorf("config addresses.%s: %w", name, err)
		}
	}
	return nil
}

// addressKeys are the variables a project .env may carry, named after the
// contracts they point at.
var addressKeys = []string{"USDC", "WETH", "CVX", "SUSHI", "SUSHI_FACTORY", "SUSHI_ROUTER", "MASTER_CHEF_V1", "MASTER_CHEF_V2"}

func applyDotEnv(path string, settings *Settings) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	for _, key := range addressKeys {
		if v := strings.TrimSpace(values[key]); v != "" {
			if err := applyAddress(settings, key, v); err != nil {
				return fmt.Errorf("env file %s: %w", key, err)
			}
		}
	}
	return nil
}

func applyAddress(settings *Settings, key, value string) error {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return fmt.Errorf("invalid address %q", value)
	}
	addr := common.HexToAddress(value)
	d := &settings.Deployment
	switch key {
	case "SUSHI_FACTORY":
		d.SushiFactory = addr
	case "SUSHI_ROUTER":
		d.SushiRouter = addr
	case "MASTER_CHEF_V1":
		d.MasterChefV1 = addr
	case "MASTER_CHEF_V2":
		d.MasterChefV2 = addr
	default:
		if _, ok := d.Token(key); !ok {
			return fmt.Errorf("unknown contract %s", key)
		}
		*d = d.WithToken(key, addr)
	}
	return nil
}

func applyEnv(settings *Settings) error {
	if v := os.Getenv(envPrefix + "OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		if level, err := zapcore.ParseLevel(v); err == nil {
			settings.LogLevel = level
		}
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv(envPrefix + "STATE_PATH"); v != "" {
		settings.StatePath = v
	}
	if v := os.Getenv(envPrefix + "STATE_LOCK_PATH"); v != "" {
		settings.StateLockPath = v
	}
	if v := os.Getenv(envPrefix + "ACTIONS_PATH"); v != "" {
		settings.ActionStorePath = v
	}
	if v := os.Getenv(envPrefix + "ACTIONS_LOCK_PATH"); v != "" {
		settings.ActionLockPath = v
	}
	if v := os.Getenv(envPrefix + "DEV_ACCOUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.DevAccount = n
		}
	}
	if v := os.Getenv(envPrefix + "KEY_SOURCE"); v != "" {
		settings.KeySource = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "NO_SIMULATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.Simulate = !b
		}
	}
	if v := os.Getenv(envPrefix + "BLOCK_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Chain.BlockTime = d
		}
	}
	for _, key := range addressKeys {
		if v := os.Getenv(envPrefix + key); v != "" {
			if err := applyAddress(settings, key, v); err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
		}
	}
	return nil
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	settings.SelectFields = splitList(flags.Select)
	settings.ResultsOnly = flags.ResultsOnly
	if allowed := splitList(flags.EnableCommands); len(allowed) > 0 {
		settings.EnableCommands = allowed
	}

	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.LogLevel != "" {
		level, err := zapcore.ParseLevel(flags.LogLevel)
		if err != nil {
			return fmt.Errorf("parse --log-level: %w", err)
		}
		settings.LogLevel = level
	}
	if flags.StatePath != "" {
		settings.StatePath = flags.StatePath
		dir := filepath.Dir(flags.StatePath)
		settings.StateLockPath = filepath.Join(dir, "chain.lock")
		settings.ActionStorePath = filepath.Join(dir, "actions.db")
		settings.ActionLockPath = filepath.Join(dir, "actions.lock")
	}
	if flags.DevAccount != DevAccountUnset {
		settings.DevAccount = flags.DevAccount
	}
	if flags.KeySource != "" {
		settings.KeySource = strings.ToLower(flags.KeySource)
	}
	if flags.NoSimulate {
		settings.Simulate = false
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}
	return nil
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if f := strings.TrimSpace(part); f != "" {
			out = append(out, f)
		}
	}
	return out
}
