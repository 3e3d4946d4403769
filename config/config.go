package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"payslab/core/types"
	"payslab/native/escrow"
)

type Config struct {
	RPCAddress          string `toml:"RPCAddress"`
	DataDir             string `toml:"DataDir"`
	NetworkName         string `toml:"NetworkName"`
	OwnerAddress        string `toml:"OwnerAddress"`
	FeeCollectorAddress string `toml:"FeeCollectorAddress"`
	VaultAddress        string `toml:"VaultAddress"`
	PlatformFeeBps      uint32 `toml:"PlatformFeeBps"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "payslab-local"
	}
}

// Validate checks the address fields and the fee cap before the daemon wires
// anything up.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if cfg.PlatformFeeBps > escrow.MaxPlatformFeeBps {
		return fmt.Errorf("config: PlatformFeeBps %d exceeds cap of %d", cfg.PlatformFeeBps, escrow.MaxPlatformFeeBps)
	}
	for name, value := range map[string]string{
		"OwnerAddress":        cfg.OwnerAddress,
		"FeeCollectorAddress": cfg.FeeCollectorAddress,
		"VaultAddress":        cfg.VaultAddress,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s is required", name)
		}
		if _, err := types.ParseAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

// Owner returns the parsed owner address. Validate must have passed.
func (cfg *Config) Owner() ([20]byte, error) { return types.ParseAddress(cfg.OwnerAddress) }

// FeeCollector returns the parsed fee collector address.
func (cfg *Config) FeeCollector() ([20]byte, error) {
	return types.ParseAddress(cfg.FeeCollectorAddress)
}

// Vault returns the parsed vault address escrowed funds are held under.
func (cfg *Config) Vault() ([20]byte, error) { return types.ParseAddress(cfg.VaultAddress) }

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:          "127.0.0.1:8545",
		DataDir:             "./data",
		NetworkName:         "payslab-local",
		OwnerAddress:        "0x0000000000000000000000000000000000000001",
		FeeCollectorAddress: "0x0000000000000000000000000000000000000002",
		VaultAddress:        "0x00000000000000000000000000000000000000ff",
		PlatformFeeBps:      100,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
