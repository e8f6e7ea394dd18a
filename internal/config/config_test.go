package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xmtplabs/convos-node-sdk/internal/invite"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTempConfig(t, `
creator_private_key = "`+strings.Repeat("01", 32)+`"
env = "dev"
`)
	cfg, err := Load(LoaderOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.CreatorPrivateKey) != 32 {
		t.Errorf("len(CreatorPrivateKey) = %d, want 32", len(cfg.CreatorPrivateKey))
	}
	if cfg.Env != invite.EnvDev {
		t.Errorf("Env = %q, want %q", cfg.Env, invite.EnvDev)
	}
	if cfg.EffectiveBaseURL() != invite.DefaultBaseURL(invite.EnvDev) {
		t.Errorf("EffectiveBaseURL() = %q, want dev default", cfg.EffectiveBaseURL())
	}
}

func TestLoadRejectsMissingPrivateKey(t *testing.T) {
	path := writeTempConfig(t, `env = "local"`)
	t.Setenv("XMTP_WALLET_KEY", "")
	t.Setenv("WALLET_KEY", "")
	if _, err := Load(LoaderOptions{ConfigPath: path}); err == nil {
		t.Fatal("expected error for missing creator_private_key")
	}
}

func TestLoadFallsBackToWalletKeyEnvVar(t *testing.T) {
	t.Setenv("XMTP_WALLET_KEY", "0x"+strings.Repeat("ab", 32))
	path := writeTempConfig(t, `env = "local"`)
	cfg, err := Load(LoaderOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.CreatorPrivateKey) != 32 {
		t.Errorf("len(CreatorPrivateKey) = %d, want 32", len(cfg.CreatorPrivateKey))
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	path := writeTempConfig(t, `
creator_private_key = "`+strings.Repeat("01", 32)+`"
env = "staging"
`)
	if _, err := Load(LoaderOptions{ConfigPath: path}); err == nil {
		t.Fatal("expected error for invalid env")
	}
}

func TestEnvFlagOverridesFileEnv(t *testing.T) {
	path := writeTempConfig(t, `
creator_private_key = "`+strings.Repeat("01", 32)+`"
env = "production"
`)
	cfg, err := Load(LoaderOptions{ConfigPath: path, EnvFlag: "local"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != invite.EnvLocal {
		t.Errorf("Env = %q, want %q", cfg.Env, invite.EnvLocal)
	}
}

func TestInviteBaseURLOverride(t *testing.T) {
	path := writeTempConfig(t, `
creator_private_key = "`+strings.Repeat("01", 32)+`"
env = "production"
invite_base_url = "https://custom.example/v2"
`)
	cfg, err := Load(LoaderOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EffectiveBaseURL() != "https://custom.example/v2" {
		t.Errorf("EffectiveBaseURL() = %q, want override", cfg.EffectiveBaseURL())
	}
}

func TestRedactedNeverIncludesKeyMaterial(t *testing.T) {
	path := writeTempConfig(t, `creator_private_key = "`+strings.Repeat("01", 32)+`"`)
	cfg, err := Load(LoaderOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := cfg.Redacted()
	if strings.Contains(r, strings.Repeat("01", 32)) {
		t.Errorf("Redacted() leaked private key: %q", r)
	}
	if !strings.Contains(r, "REDACTED") {
		t.Errorf("Redacted() = %q, want to contain REDACTED", r)
	}
}
