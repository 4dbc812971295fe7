package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fgharness/internal/action"
	"fgharness/internal/cli"
	"fgharness/internal/config"
	"fgharness/internal/exerciser"
	"fgharness/internal/logging"
	"fgharness/internal/metrics"
	"fgharness/internal/netprov"
	"fgharness/internal/session"
	"fgharness/internal/stats"
	"fgharness/internal/tui"
	"fgharness/internal/uptime"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single action session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		log := logging.New(cfg.Log)
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSession(ctx, cfg, log)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringP("action", "a", "", "Action code to perform ("+actionCodes()+")")
	f.StringP("transport", "t", netprov.TransportCellular.String(), "Network transport to request (cellular, wifi, ethernet, any)")
	f.StringP("url", "u", exerciser.DefaultTargetURL, "Connectivity check URL")
	f.Duration("connect-timeout", exerciser.DefaultConnectTimeout, "Per-request connect timeout")
	f.Duration("network-timeout", 0, "How long to wait for a network (0 waits until interrupted)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	f.Bool("tui", false, "Show a live progress view")
	bindFlags(v, f, map[string]string{
		"action":          config.KeyAction,
		"transport":       config.KeyTransport,
		"url":             config.KeyURL,
		"connect-timeout": config.KeyConnectTimeout,
		"network-timeout": config.KeyNetworkTimeout,
		"metrics-addr":    config.KeyMetricsAddr,
		"tui":             config.KeyTUI,
	})
}

func runSession(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	rec := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := rec.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics server failed", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			}
		}()
	}

	st := stats.NewStats()
	mgr := netprov.NewManager(log)
	defer mgr.Close()

	opts := []exerciser.Option{exerciser.WithObserver(st), exerciser.WithObserver(rec)}
	var updates exerciser.UpdateChan
	if cfg.TUI {
		updates = make(exerciser.UpdateChan, 32)
		opts = append(opts, exerciser.WithUpdates(updates))
	}
	exCfg := cfg.ExerciserConfig()
	ex, err := exerciser.New(exCfg, mgr, log, opts...)
	if err != nil {
		return err
	}

	clock := uptime.BootClock{}
	sess := session.New(cfg.SessionConfig(), session.Deps{
		Surface:     session.NewLogSurface(log),
		Provisioner: mgr,
		Exerciser:   ex,
		Clock:       clock,
		Recorder:    rec,
	}, log)

	header := cli.Header{SessionID: sess.ID, Action: cfg.Action}
	if a, err := action.Parse(cfg.Action); err == nil && a == action.GenerateMobileTraffic {
		header.Transport = cfg.Transport.String()
		header.TargetURL = cfg.TargetURL
		if elapsed, err := clock.Elapsed(); err == nil {
			header.Uptime = elapsed
			header.Estimated, _ = exCfg.Sizing.Iterations(elapsed)
		}
	}
	if !cfg.TUI {
		cli.PrintHeader(os.Stdout, header)
	}

	sess.Start(ctx, cfg.Action)

	if cfg.TUI {
		if err := tui.Run(tui.NewModel(cfg.Action, updates, sess.Done(), sess.Err)); err != nil {
			log.Error("live view failed", zap.Error(err))
		}
	}
	if err := sess.Wait(ctx); err != nil && ctx.Err() != nil {
		// Interrupted: let the session observe cancellation and finish.
		<-sess.Done()
	}

	snap := st.Snapshot()
	cli.PrintSummary(os.Stdout, sess.Err(), sess.Report(), &snap)
	return sess.Err()
}
