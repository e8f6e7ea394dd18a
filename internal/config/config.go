// Package config loads and validates the creator-side configuration:
// the private key used to sign invites, the environment preset, and
// any override of the default invite base URL.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/xmtplabs/convos-node-sdk/internal/invite"
	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
)

// Config holds the creator-side configuration surface: the signing
// key, the base URL invites are minted against, and the deployment
// environment.
type Config struct {
	// CreatorPrivateKey is the 32-byte secp256k1 signing key used to
	// mint invites. Never logged; see Redacted.
	CreatorPrivateKey []byte

	// InviteBaseURL overrides the environment default when non-empty.
	InviteBaseURL string

	// Env selects the default invite base URL when InviteBaseURL is unset.
	Env invite.Environment
}

// fileConfig mirrors Config but with string fields so presence (empty
// string) can be distinguished from an explicit zero value, and so the
// private key can be loaded as hex text from TOML.
type fileConfig struct {
	CreatorPrivateKey string `toml:"creator_private_key"`
	InviteBaseURL     string `toml:"invite_base_url"`
	Env               string `toml:"env"`
}

// LoaderOptions controls how configuration is loaded.
type LoaderOptions struct {
	// ConfigPath is the path to a TOML config file (optional). If
	// provided but the file is missing or invalid, loading fails.
	ConfigPath string

	// EnvFlag overrides the env value from the config file, if set.
	EnvFlag string

	// InviteBaseURLFlag overrides the invite_base_url value from the
	// config file, if set.
	InviteBaseURLFlag string

	// Logger is used for warning messages. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// ParseEnvironment parses an environment string, defaulting to
// production on an empty value.
func ParseEnvironment(s string) (invite.Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "":
		return invite.EnvProduction, nil
	case "dev":
		return invite.EnvDev, nil
	case "local":
		return invite.EnvLocal, nil
	default:
		return "", fmt.Errorf("config: invalid env %q: must be one of production, dev, local", s)
	}
}

// Load reads the TOML file at opts.ConfigPath (if any), falls back to
// the XMTP_WALLET_KEY/WALLET_KEY environment variable for the private
// key when the file omits it, overlays opts.EnvFlag/InviteBaseURLFlag,
// and validates the result. It fails fast on a missing/invalid file,
// an unparsable private key, or an unrecognized env value.
func Load(opts LoaderOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var fc fileConfig
	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", opts.ConfigPath, err)
		}
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", opts.ConfigPath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			logger.Warn("config file contains undecoded keys", "path", opts.ConfigPath, "keys", keys)
		}
	}

	envStr := fc.Env
	if opts.EnvFlag != "" {
		envStr = opts.EnvFlag
	}
	env, err := ParseEnvironment(envStr)
	if err != nil {
		return nil, err
	}

	keyHex := fc.CreatorPrivateKey
	if keyHex == "" {
		keyHex = firstNonEmptyEnv("XMTP_WALLET_KEY", "WALLET_KEY")
	}
	if keyHex == "" {
		return nil, fmt.Errorf("config: creator_private_key is required (set in config file or XMTP_WALLET_KEY/WALLET_KEY)")
	}
	privKey, err := primitives.DecodeHex(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("config: creator_private_key: %w", err)
	}
	if len(privKey) != 32 {
		return nil, fmt.Errorf("config: creator_private_key must decode to 32 bytes, got %d", len(privKey))
	}

	baseURL := fc.InviteBaseURL
	if opts.InviteBaseURLFlag != "" {
		baseURL = opts.InviteBaseURLFlag
	}

	return &Config{
		CreatorPrivateKey: privKey,
		InviteBaseURL:     baseURL,
		Env:               env,
	}, nil
}

// EffectiveBaseURL returns InviteBaseURL if set, otherwise the default
// for Env.
func (c *Config) EffectiveBaseURL() string {
	if c.InviteBaseURL != "" {
		return c.InviteBaseURL
	}
	return invite.DefaultBaseURL(c.Env)
}

// Redacted returns a string representation of the config with the
// private key redacted, safe to pass to a logger.
func (c *Config) Redacted() string {
	return fmt.Sprintf("Config{CreatorPrivateKey: [REDACTED], InviteBaseURL: %q, Env: %q}", c.InviteBaseURL, c.Env)
}

func firstNonEmptyEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
