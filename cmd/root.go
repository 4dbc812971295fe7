package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fgharness/internal/action"
	"fgharness/internal/banner"
	"fgharness/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "fgharness",
	Short: "fgharness - foreground app and traffic harness",
	Long: `
fgharness performs one controller-requested action per session and then
finishes. The generate_mobile_traffic action requests a network of the
configured transport and issues a small, uptime-sized burst of HTTP requests
over it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ReadFile(v, cfgFile)
	},
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fgharness.yaml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console, json)")
	pf.String("log-output", "stderr", "Log destination (stderr, stdout or a file path)")
	bindFlags(v, pf, map[string]string{
		"log-level":  config.KeyLogLevel,
		"log-format": config.KeyLogFormat,
		"log-output": config.KeyLogOutput,
	})

	rootCmd.AddCommand(runCmd, sizeCmd, dummyCmd)
}

// bindFlags maps dashed flag names onto config keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func actionCodes() string {
	codes := make([]string, 0, len(action.All()))
	for _, a := range action.All() {
		codes = append(codes, a.String())
	}
	return strings.Join(codes, ", ")
}
