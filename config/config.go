// Package config loads and validates bot configuration from YAML.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the bot consumes. Monetary fields are decimals;
// they arrive as strings in YAML and are parsed during load.
type Config struct {
	// QuoteAsset the currency deposits are valued in.
	QuoteAsset string
	// QuantizeDigits fractional digits for ledger quantization.
	QuantizeDigits int32
	// DecimalPrecision division precision for decimal arithmetic.
	DecimalPrecision int
	// DepositFraction share of the deposit allocated per run.
	DepositFraction decimal.Decimal
	// MinBalance minimum quote balance for a run to proceed.
	MinBalance decimal.Decimal
	// MinEquivalent minimum other-asset equivalent for a run to proceed.
	MinEquivalent decimal.Decimal
	// DryRun simulate orders instead of placing them.
	DryRun bool
	// APITimeout per-call timeout for exchange requests.
	APITimeout time.Duration
	// StorePath path to the signal store file.
	StorePath string
	// SecretKeyPath path to the 32-byte key file decrypting API credentials.
	SecretKeyPath string
	// APIKeysPath path to the encrypted API credentials file.
	APIKeysPath string
}

type configTmp struct {
	QuoteAsset       string        `yaml:"quote_asset" validate:"required,alphanum,uppercase"`
	QuantizeDigits   int32         `yaml:"quantize_digits" validate:"gte=0,lte=18"`
	DecimalPrecision int           `yaml:"decimal_precision" validate:"gte=8,lte=64"`
	DepositFraction  string        `yaml:"deposit_fraction"`
	MinBalance       string        `yaml:"min_balance"`
	MinEquivalent    string        `yaml:"min_equivalent"`
	DryRun           bool          `yaml:"dry_run"`
	APITimeout       time.Duration `yaml:"api_timeout" validate:"gte=0"`
	StorePath        string        `yaml:"store_path" validate:"required"`
	SecretKeyPath    string        `yaml:"secret_key_path"`
	APIKeysPath      string        `yaml:"api_keys_path"`
}

// Get reads the config path from the -config flag and loads it.
func Get() (Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()
	return Load(*path)
}

// Load reads, validates, and parses a YAML config file.
func Load(path string) (Config, error) {
	tmp := configTmp{
		QuoteAsset:       "USDT",
		QuantizeDigits:   2,
		DecimalPrecision: 28,
		DepositFraction:  "0.1",
		MinBalance:       "0",
		MinEquivalent:    "0",
		DryRun:           true,
		APITimeout:       10 * time.Second,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	if err := validator.New().Struct(tmp); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}

	cfg := Config{
		QuoteAsset:       tmp.QuoteAsset,
		QuantizeDigits:   tmp.QuantizeDigits,
		DecimalPrecision: tmp.DecimalPrecision,
		DryRun:           tmp.DryRun,
		APITimeout:       tmp.APITimeout,
		StorePath:        tmp.StorePath,
		SecretKeyPath:    tmp.SecretKeyPath,
		APIKeysPath:      tmp.APIKeysPath,
	}

	cfg.DepositFraction, err = decimal.NewFromString(tmp.DepositFraction)
	if err != nil {
		return Config{}, errors.Wrap(err, "incorrect 'deposit_fraction' param in yaml config")
	}
	if cfg.DepositFraction.LessThanOrEqual(decimal.Zero) || cfg.DepositFraction.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, errors.Errorf("'deposit_fraction' must be in (0, 1], got %s", cfg.DepositFraction)
	}

	cfg.MinBalance, err = decimal.NewFromString(tmp.MinBalance)
	if err != nil {
		return Config{}, errors.Wrap(err, "incorrect 'min_balance' param in yaml config")
	}
	cfg.MinEquivalent, err = decimal.NewFromString(tmp.MinEquivalent)
	if err != nil {
		return Config{}, errors.Wrap(err, "incorrect 'min_equivalent' param in yaml config")
	}

	if !cfg.DryRun && (cfg.SecretKeyPath == "" || cfg.APIKeysPath == "") {
		return Config{}, errors.New("live mode requires 'secret_key_path' and 'api_keys_path'")
	}

	return cfg, nil
}
