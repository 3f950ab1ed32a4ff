package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/session"
	"github.com/raysh454/codeprobe/internal/webclient"
)

// EnvPrefix is prepended to every configuration key read from the
// environment, e.g. CODEPROBE_SERVER_ADDR.
const EnvPrefix = "CODEPROBE"

// Config is the runtime configuration shared by every command.
type Config struct {
	// ServerAddr is the listen address of the dashboard/API server.
	ServerAddr string

	// StorageRoot is where the settings database lives.
	StorageRoot string

	// DefaultEndpoint seeds the store on first run.
	DefaultEndpoint string

	WebClientCfg webclient.Config
	AnalyzerCfg  analyzer.Config
	SessionCfg   session.Config
	LogCfg       logging.Config
}

// DefaultConfig returns a Config populated with development defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:      ":8080",
		StorageRoot:     "~/.config/codeprobe",
		DefaultEndpoint: endpoint.DefaultEndpoint,
		WebClientCfg: webclient.Config{
			Client: webclient.ClientNetHTTP,
		},
		LogCfg: logging.Config{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load builds a Config from defaults, an optional .env file, an optional
// YAML file and CODEPROBE_* environment variables, in increasing priority.
// An empty path looks for codeprobe.yaml in the working directory and the
// storage root.
func Load(path string) (*Config, error) {
	// a missing .env is the normal case
	_ = godotenv.Load()

	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("server.addr", def.ServerAddr)
	v.SetDefault("server.force_secure", def.AnalyzerCfg.ForceSecure)
	v.SetDefault("storage.root", def.StorageRoot)
	v.SetDefault("endpoint.default", def.DefaultEndpoint)
	v.SetDefault("webclient.backend", string(def.WebClientCfg.Client))
	v.SetDefault("webclient.timeout", def.WebClientCfg.Timeout)
	v.SetDefault("log.level", def.LogCfg.Level)
	v.SetDefault("log.format", def.LogCfg.Format)
	v.SetDefault("log.output", def.LogCfg.Output)
	v.SetDefault("session.discard_stale", def.SessionCfg.DiscardStale)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("codeprobe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if root, err := expandPath(def.StorageRoot); err == nil {
			v.AddConfigPath(root)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		ServerAddr:      v.GetString("server.addr"),
		StorageRoot:     v.GetString("storage.root"),
		DefaultEndpoint: v.GetString("endpoint.default"),
		WebClientCfg: webclient.Config{
			Client:  webclient.Client(v.GetString("webclient.backend")),
			Timeout: v.GetDuration("webclient.timeout"),
		},
		AnalyzerCfg: analyzer.Config{
			ForceSecure: v.GetBool("server.force_secure"),
		},
		SessionCfg: session.Config{
			DiscardStale: v.GetBool("session.discard_stale"),
		},
		LogCfg: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
	return cfg, nil
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
