package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// appDirName is the data directory name under the user config directory.
const appDirName = "sui_local_wallet"

// Config contains all configuration parameters for the application.
// Note: passwords are never configured, they are entered at runtime.
type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	ListenHost string `envconfig:"LISTEN_HOST" default:"127.0.0.1"`
	DataDir    string `envconfig:"DATA_DIR"`

	Network       string `envconfig:"NETWORK" default:"devnet"`
	DevnetRPCURL  string `envconfig:"SUI_DEVNET_RPC_URL"`
	TestnetRPCURL string `envconfig:"SUI_TESTNET_RPC_URL"`
	MainnetRPCURL string `envconfig:"SUI_MAINNET_RPC_URL"`
	PriceCurrency string `envconfig:"PRICE_CURRENCY" default:"usd"`

	SessionTimeoutMinutes int    `envconfig:"SESSION_TIMEOUT_MINUTES" default:"30"`
	MaxFailedAttempts     int    `envconfig:"MAX_FAILED_ATTEMPTS" default:"5"`
	LockoutMinutes        int    `envconfig:"LOCKOUT_MINUTES" default:"15"`
	PasswordPolicy        string `envconfig:"PASSWORD_POLICY" default:"basic"`

	KDFTime      uint32 `envconfig:"KDF_TIME" default:"2"`
	KDFMemoryKiB uint32 `envconfig:"KDF_MEMORY_KIB" default:"19456"`
	KDFThreads   uint8  `envconfig:"KDF_THREADS" default:"1"`

	BalanceTimeout time.Duration `envconfig:"BALANCE_TIMEOUT" default:"15s"`
	TickInterval   time.Duration `envconfig:"TICK_INTERVAL" default:"100ms"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	MaxLogFileSize int    `envconfig:"MAX_LOG_FILE_SIZE" default:"10"`
	MaxLogFiles    int    `envconfig:"MAX_LOG_FILES" default:"3"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates the environment without touching the global.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if c.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		c.DataDir = filepath.Join(base, appDirName)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, err := model.ParseNetwork(c.Network); err != nil {
		return fmt.Errorf("invalid NETWORK: %w", err)
	}
	if _, err := auth.ParsePolicy(c.PasswordPolicy); err != nil {
		return fmt.Errorf("invalid PASSWORD_POLICY: %w", err)
	}
	if err := c.KDFParams().Validate(); err != nil {
		return fmt.Errorf("invalid KDF settings: %w", err)
	}
	if c.SessionTimeoutMinutes < 0 || c.MaxFailedAttempts < 0 || c.LockoutMinutes < 0 {
		return errors.New("session and lockout settings cannot be negative")
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetListenAddr returns host:port for the HTTP server
func GetListenAddr() string {
	return Get().ListenHost + ":" + Get().Port
}

// GetDataDir returns the directory holding the key file and password hash
func GetDataDir() string {
	return Get().DataDir
}

// GetNetwork returns the network selected at startup
func GetNetwork() model.Network {
	n, _ := model.ParseNetwork(Get().Network)
	return n
}

// GetRPCURLs returns the per-network RPC overrides
func GetRPCURLs() map[model.Network]string {
	c := Get()
	return map[model.Network]string{
		model.Devnet:  c.DevnetRPCURL,
		model.Testnet: c.TestnetRPCURL,
		model.Mainnet: c.MainnetRPCURL,
	}
}

// GetPriceCurrency returns the fiat currency for price display
func GetPriceCurrency() string {
	return Get().PriceCurrency
}

// GetPasswordPolicy returns the configured password policy
func GetPasswordPolicy() auth.Policy {
	p, _ := auth.ParsePolicy(Get().PasswordPolicy)
	return p
}

// GetSessionTimeout returns the idle session timeout, zero for none
func GetSessionTimeout() time.Duration {
	return time.Duration(Get().SessionTimeoutMinutes) * time.Minute
}

// GetLockout returns the failed attempt limit and the lockout duration
func GetLockout() (int, time.Duration) {
	c := Get()
	return c.MaxFailedAttempts, time.Duration(c.LockoutMinutes) * time.Minute
}

// KDFParams returns the argon2id parameters for new blobs and hashes
func (c *Config) KDFParams() crypto.KDFParams {
	return crypto.KDFParams{
		Time:      c.KDFTime,
		MemoryKiB: c.KDFMemoryKiB,
		Threads:   c.KDFThreads,
	}
}

// GetKDFParams returns the argon2id parameters from configuration
func GetKDFParams() crypto.KDFParams {
	return Get().KDFParams()
}

// PromptForPassword prompts for a password in the terminal without echo.
// Caller must zero the returned slice after use for security.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	password := make([]byte, len(raw))
	copy(password, raw)
	clear(raw)
	return password, nil
}
