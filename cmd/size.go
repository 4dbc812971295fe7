package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fgharness/internal/config"
	"fgharness/internal/uptime"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print how many requests a traffic session would issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		given, _ := cmd.Flags().GetDuration("uptime")

		var clock uptime.Clock = uptime.BootClock{}
		if given > 0 {
			clock = uptime.Fixed(given)
		}
		elapsed, err := clock.Elapsed()
		if err != nil {
			return err
		}

		sizing := cfg.ExerciserConfig().Sizing
		raw, err := sizing.Raw(elapsed)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "uptime     : %s\n", elapsed.Round(time.Second))
		fmt.Fprintf(out, "raw        : %.3f\n", raw)

		n, err := sizing.Iterations(elapsed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "iterations : %d\n", n)
		return nil
	},
}

func init() {
	sizeCmd.Flags().Duration("uptime", 0, "Uptime to size for (defaults to the system's time since boot)")
}
