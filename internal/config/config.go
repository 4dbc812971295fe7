// Package config resolves harness settings from flags, environment and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fgharness/internal/exerciser"
	"fgharness/internal/logging"
	"fgharness/internal/netprov"
	"fgharness/internal/session"
)

const EnvPrefix = "FGHARNESS"

// Keys shared with the command-line flags.
const (
	KeyAction         = "action"
	KeyTransport      = "transport"
	KeyURL            = "url"
	KeyConnectTimeout = "connect_timeout"
	KeyNetworkTimeout = "network_timeout"
	KeyMetricsAddr    = "metrics_addr"
	KeyTUI            = "tui"

	KeySizingMin     = "sizing.min"
	KeySizingMax     = "sizing.max"
	KeySizingPackets = "sizing.packets_per_iteration"
	KeySizingMargin  = "sizing.safety_margin"
	KeySizingWindow  = "sizing.accounting_window"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogOutput = "log.output"
)

type Sizing struct {
	Min                 int
	Max                 int
	PacketsPerIteration float64
	SafetyMargin        float64
	AccountingWindow    time.Duration
}

type Config struct {
	Action         string
	Transport      netprov.Transport
	TargetURL      string
	ConnectTimeout time.Duration
	NetworkTimeout time.Duration
	Sizing         Sizing
	Log            logging.Config
	MetricsAddr    string
	TUI            bool
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	s := exerciser.DefaultSizing()

	v.SetDefault(KeyTransport, netprov.TransportCellular.String())
	v.SetDefault(KeyURL, exerciser.DefaultTargetURL)
	v.SetDefault(KeyConnectTimeout, exerciser.DefaultConnectTimeout)
	v.SetDefault(KeyNetworkTimeout, time.Duration(0))
	v.SetDefault(KeySizingMin, s.Min)
	v.SetDefault(KeySizingMax, s.Max)
	v.SetDefault(KeySizingPackets, s.PacketsPerIteration)
	v.SetDefault(KeySizingMargin, s.SafetyMargin)
	v.SetDefault(KeySizingWindow, s.AccountingWindow)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogOutput, "stderr")
}

// ReadFile loads path, or $HOME/.fgharness.yaml when path is empty. A missing
// default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(".fgharness")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	transport, err := netprov.ParseTransport(v.GetString(KeyTransport))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Action:         v.GetString(KeyAction),
		Transport:      transport,
		TargetURL:      v.GetString(KeyURL),
		ConnectTimeout: v.GetDuration(KeyConnectTimeout),
		NetworkTimeout: v.GetDuration(KeyNetworkTimeout),
		Sizing: Sizing{
			Min:                 v.GetInt(KeySizingMin),
			Max:                 v.GetInt(KeySizingMax),
			PacketsPerIteration: v.GetFloat64(KeySizingPackets),
			SafetyMargin:        v.GetFloat64(KeySizingMargin),
			AccountingWindow:    v.GetDuration(KeySizingWindow),
		},
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			Output: v.GetString(KeyLogOutput),
		},
		MetricsAddr: v.GetString(KeyMetricsAddr),
		TUI:         v.GetBool(KeyTUI),
	}
	if err := cfg.ExerciserConfig().Sizing.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ExerciserConfig() exerciser.Config {
	return exerciser.Config{
		TargetURL:      c.TargetURL,
		ConnectTimeout: c.ConnectTimeout,
		Sizing: exerciser.Sizing{
			Min:                 c.Sizing.Min,
			Max:                 c.Sizing.Max,
			PacketsPerIteration: c.Sizing.PacketsPerIteration,
			SafetyMargin:        c.Sizing.SafetyMargin,
			AccountingWindow:    c.Sizing.AccountingWindow,
		},
	}
}

func (c Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.Transport = c.Transport
	sc.NetworkTimeout = c.NetworkTimeout
	return sc
}
