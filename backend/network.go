package backend

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/wallet"
)

const (
	DefaultGasPricesURL  = "https://fcd.terra.dev/v1/txs/gas_prices"
	DefaultGasAdjustment = 1.5
	DefaultTimeout       = 30 * time.Second
	DefaultFeeDenom      = "uusd"

	// MnemonicEnvPrefix is followed by the upper-cased network name.
	MnemonicEnvPrefix = "MNEMONIC_"
)

var (
	ErrUnknownNetwork  = errors.New("unknown network")
	ErrMissingMnemonic = errors.New("no mnemonic configured for network")
	ErrInvalidNetwork  = errors.New("invalid network configuration")
)

// Network describes a chain endpoint and the account used to deploy on it.
type Network struct {
	Name     string `yaml:"-"`
	URL      string `yaml:"url"`
	ChainID  string `yaml:"chain_id"`
	Mnemonic string `yaml:"mnemonic"`
	HRP      string `yaml:"hrp"`

	// GasPrices is a coin list like "0.15uusd". When empty the prices for
	// FeeDenoms are fetched from GasPricesURL.
	GasPrices     string   `yaml:"gas_prices"`
	GasPricesURL  string   `yaml:"gas_prices_url"`
	FeeDenoms     []string `yaml:"fee_denoms"`
	GasAdjustment float64  `yaml:"gas_adjustment"`
	// Gas is a fixed gas limit. Zero means the limit is estimated by the node.
	Gas uint64 `yaml:"gas"`

	BroadcastMode encoding.BroadcastMode `yaml:"broadcast_mode"`
	Timeout       time.Duration          `yaml:"timeout"`
}

// DefaultNetworks returns the built-in network definitions.
func DefaultNetworks() map[string]Network {
	networks := map[string]Network{
		"local": {
			URL:     "http://localhost:1317",
			ChainID: "localterra",
		},
		"tequila": {
			URL:     "https://tequila-lcd.terra.dev",
			ChainID: "tequila-0004",
		},
		"columbus": {
			URL:     "https://lcd.terra.dev",
			ChainID: "columbus-4",
		},
	}
	for name, n := range networks {
		n.Name = name
		networks[name] = n.withDefaults()
	}
	return networks
}

// LoadNetworks reads a YAML document mapping network names to definitions.
// Entries overlay the built-in network of the same name field by field.
func LoadNetworks(path string) (map[string]Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read network config")
	}
	return ParseNetworks(data)
}

func ParseNetworks(data []byte) (map[string]Network, error) {
	var file map[string]Network
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse network config")
	}

	networks := DefaultNetworks()
	for name, n := range file {
		merged := networks[name].overlay(n)
		merged.Name = name
		merged = merged.withDefaults()
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		networks[name] = merged
	}
	return networks, nil
}

// Lookup returns the named network.
func Lookup(networks map[string]Network, name string) (Network, error) {
	n, ok := networks[name]
	if !ok {
		names := make([]string, 0, len(networks))
		for k := range networks {
			names = append(names, k)
		}
		sort.Strings(names)
		return Network{}, errors.Wrapf(ErrUnknownNetwork, "%q (known: %s)", name, strings.Join(names, ", "))
	}
	return n, nil
}

func (n Network) Validate() error {
	if n.URL == "" {
		return errors.Wrapf(ErrInvalidNetwork, "%s: url is required", n.Name)
	}
	if n.ChainID == "" {
		return errors.Wrapf(ErrInvalidNetwork, "%s: chain_id is required", n.Name)
	}
	if n.GasAdjustment < 0 {
		return errors.Wrapf(ErrInvalidNetwork, "%s: gas_adjustment must not be negative", n.Name)
	}
	if _, err := encoding.ParseDecCoins(n.GasPrices); err != nil {
		return errors.Wrapf(ErrInvalidNetwork, "%s: gas_prices: %v", n.Name, err)
	}
	switch n.BroadcastMode {
	case encoding.BroadcastSync, encoding.BroadcastAsync, encoding.BroadcastBlock:
	default:
		return errors.Wrapf(ErrInvalidNetwork, "%s: unknown broadcast_mode %q", n.Name, n.BroadcastMode)
	}
	return nil
}

// MnemonicEnv is the environment variable that overrides the configured
// mnemonic, e.g. MNEMONIC_TEQUILA.
func (n Network) MnemonicEnv() string {
	return MnemonicEnvPrefix + strings.ToUpper(n.Name)
}

// Account derives the deploying account from the network mnemonic.
func (n Network) Account() (*wallet.Account, error) {
	return n.AccountAt(wallet.DefaultHDPath())
}

// AccountAt derives the account at path from the network's mnemonic.
func (n Network) AccountAt(path wallet.HDPath) (*wallet.Account, error) {
	mnemonic := n.Mnemonic
	if env := os.Getenv(n.MnemonicEnv()); env != "" {
		mnemonic = env
	}
	if strings.TrimSpace(mnemonic) == "" {
		return nil, errors.Wrapf(ErrMissingMnemonic, "%s (set %s)", n.Name, n.MnemonicEnv())
	}
	return wallet.NewAccountFromMnemonic(mnemonic, path, n.HRP)
}

func (n Network) withDefaults() Network {
	if n.HRP == "" {
		n.HRP = wallet.DefaultHRP
	}
	if n.GasPricesURL == "" {
		n.GasPricesURL = DefaultGasPricesURL
	}
	if len(n.FeeDenoms) == 0 {
		n.FeeDenoms = []string{DefaultFeeDenom}
	}
	if n.GasAdjustment == 0 {
		n.GasAdjustment = DefaultGasAdjustment
	}
	if n.BroadcastMode == "" {
		n.BroadcastMode = encoding.BroadcastBlock
	}
	if n.Timeout == 0 {
		n.Timeout = DefaultTimeout
	}
	return n
}

func (n Network) overlay(o Network) Network {
	if o.URL != "" {
		n.URL = o.URL
	}
	if o.ChainID != "" {
		n.ChainID = o.ChainID
	}
	if o.Mnemonic != "" {
		n.Mnemonic = o.Mnemonic
	}
	if o.HRP != "" {
		n.HRP = o.HRP
	}
	if o.GasPrices != "" {
		n.GasPrices = o.GasPrices
	}
	if o.GasPricesURL != "" {
		n.GasPricesURL = o.GasPricesURL
	}
	if len(o.FeeDenoms) > 0 {
		n.FeeDenoms = o.FeeDenoms
	}
	if o.GasAdjustment != 0 {
		n.GasAdjustment = o.GasAdjustment
	}
	if o.Gas != 0 {
		n.Gas = o.Gas
	}
	if o.BroadcastMode != "" {
		n.BroadcastMode = o.BroadcastMode
	}
	if o.Timeout != 0 {
		n.Timeout = o.Timeout
	}
	return n
}
