// Package config loads the runtime configuration of the adapters: which backend to use, the
// network to talk to and the signer to send with.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/smartcontractkit/safe-adapters/network"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = "geth"

// KMSConfig is the configuration of an AWS KMS signing key.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type KMSConfig struct {
	KeyID      string `mapstructure:"key_id" yaml:"key_id"`           // Secret: AWS KMS Key ID
	KeyRegion  string `mapstructure:"key_region" yaml:"key_region"`   // Secret: AWS KMS Key Region (e.g. us-west-1)
	AWSProfile string `mapstructure:"aws_profile" yaml:"aws_profile"` // AWS profile, defaults to the environment
}

// SignerConfig selects the key writes are signed with. At most one of PrivateKey and KMS may be
// set; with neither the adapters are read-only.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type SignerConfig struct {
	PrivateKey string     `mapstructure:"private_key" yaml:"private_key"` // Secret: hex encoded private key. Prefer KMS keys.
	KMS        *KMSConfig `mapstructure:"kms" yaml:"kms,omitempty"`
}

// SethConfig configures the seth backend.
type SethConfig struct {
	ConfigFilePath  string   `mapstructure:"config_file_path" yaml:"config_file_path"`   // The path to the Seth TOML config file
	GethWrapperDirs []string `mapstructure:"geth_wrapper_dirs" yaml:"geth_wrapper_dirs"` // The paths to the Geth wrapper directories
}

// Config is the adapter configuration.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type Config struct {
	Backend        string        `mapstructure:"backend" yaml:"backend"`                           // geth, seth or zksync
	Network        string        `mapstructure:"network" yaml:"network"`                           // Named network, see package network
	RPCURL         string        `mapstructure:"rpc_url" yaml:"rpc_url"`                           // Overrides the network RPC URL
	RPCBackupURLs  []string      `mapstructure:"rpc_backup_urls" yaml:"rpc_backup_urls,omitempty"` // Fallback RPCs, geth backend only
	InfuraKey      string        `mapstructure:"infura_key" yaml:"infura_key"`                     // Secret: API key of Infura hosted networks
	Signer         SignerConfig  `mapstructure:"signer" yaml:"signer"`
	Seth           *SethConfig   `mapstructure:"seth" yaml:"seth,omitempty"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" yaml:"confirm_timeout,omitempty"` // Bounds receipt waits of the CLI
}

var (
	ErrNoEndpoint        = errors.New("either network or rpc_url must be set")
	ErrConflictingSigner = errors.New("signer.private_key and signer.kms are mutually exclusive")
)

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := viper.New()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}

	return cfg, nil
}

// Validate checks that an endpoint can be resolved and that the signer is unambiguous. The
// backend name is validated when the adapter is constructed.
func (c *Config) Validate() error {
	if _, err := c.ResolveRPCURL(); err != nil {
		return err
	}
	if c.Signer.PrivateKey != "" && c.Signer.KMS != nil && c.Signer.KMS.KeyID != "" {
		return ErrConflictingSigner
	}

	return nil
}

// ResolveRPCURL returns RPCURL when set, otherwise the RPC URL of the configured network.
func (c *Config) ResolveRPCURL() (string, error) {
	if c.RPCURL != "" {
		return c.RPCURL, nil
	}
	if c.Network == "" {
		return "", ErrNoEndpoint
	}

	n, err := network.Lookup(c.Network)
	if err != nil {
		return "", err
	}

	url, err := n.RPCURL(c.InfuraKey)
	if err != nil {
		return "", fmt.Errorf("failed to resolve RPC URL: %w", err)
	}

	return url, nil
}

// envBindings maps config keys to the environment variables providing them. The first name is
// the preferred one, the rest are legacy names still honoured. Viper uses the first one set.
var envBindings = map[string][]string{
	"backend":                {"SAFE_ETH_LIB", "ETH_LIB"},
	"network":                {"SAFE_NETWORK", "NETWORK"},
	"rpc_url":                {"SAFE_RPC_URL", "RPC_URL"},
	"rpc_backup_urls":        {"SAFE_RPC_BACKUP_URLS"},
	"infura_key":             {"SAFE_INFURA_KEY", "INFURA_KEY"},
	"confirm_timeout":        {"SAFE_CONFIRM_TIMEOUT"},
	"signer.private_key":     {"SAFE_SIGNER_PRIVATE_KEY", "PRIVATE_KEY"},
	"signer.kms.key_id":      {"SAFE_SIGNER_KMS_KEY_ID", "KMS_DEPLOYER_KEY_ID"},
	"signer.kms.key_region":  {"SAFE_SIGNER_KMS_KEY_REGION", "KMS_DEPLOYER_KEY_REGION"},
	"signer.kms.aws_profile": {"SAFE_SIGNER_KMS_AWS_PROFILE"},
	"seth.config_file_path":  {"SAFE_SETH_CONFIG_FILE_PATH", "SETH_CONFIG_FILE"},
	"seth.geth_wrapper_dirs": {"SAFE_SETH_GETH_WRAPPER_DIRS", "GETH_WRAPPERS_DIRS"},
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		if err := v.BindEnv(slices.Insert(slices.Clone(envs), 0, key)...); err != nil {
			return err
		}
	}

	return nil
}
