package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"motion-logger/controller"
	"motion-logger/services/ingest"
	"motion-logger/ui"
	"motion-logger/utils"
	"motion-logger/views"
)

const defaultConfigPath = "config/motion.yaml"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "motion-logger",
		Short:         "Sample vertical acceleration at 10 Hz and export it as CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfigPath, "path to motion.yaml")
	root.PersistentFlags().StringVar(&flags.logFile, "log", "", "optional log file path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug|info|warn|error)")

	root.AddCommand(newRecordCmd(&flags))
	root.AddCommand(newLiveCmd(&flags))
	root.AddCommand(newProbeCmd(&flags))
	return root
}

// loadConfig reads the config file. A missing default file is not an
// error; an explicitly named one is.
func loadConfig(flags *rootFlags, cmd *cobra.Command) (*utils.Config, error) {
	cfg, err := utils.LoadConfig(flags.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = utils.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

func initLogger(cfg *utils.Config, quiet bool) (*utils.Logger, error) {
	return utils.InitLogger(utils.LoggerOptions{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Quiet:   quiet,
		Service: "motion-logger",
	})
}

// pipeline is the assembled sampler/exporter pair.
type pipeline struct {
	svc      ingest.MotionService
	sampler  *controller.Sampler
	exporter *controller.Exporter
}

func newPipeline(cfg *utils.Config) (*pipeline, error) {
	svc, err := ingest.NewMotionService(cfg.Sensor)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Export.Dir) {
		abs, err := filepath.Abs(cfg.Export.Dir)
		if err == nil {
			cfg.Export.Dir = abs
		}
	}
	s := controller.NewSampler(svc)
	return &pipeline{
		svc:      svc,
		sampler:  s,
		exporter: controller.NewExporter(s, cfg.Export),
	}, nil
}

func newRecordCmd(flags *rootFlags) *cobra.Command {
	var (
		duration time.Duration
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record headlessly until interrupted, then save the last 20 s as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, cmd)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Export.Dir = outDir
			}
			logger, err := initLogger(cfg, false)
			if err != nil {
				return err
			}
			defer logger.Close()
			return runRecord(cmd, cfg, duration)
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop automatically after this long (0 = until Ctrl+C)")
	cmd.Flags().StringVar(&outDir, "out", "", "export directory (overrides config)")
	return cmd
}

func runRecord(cmd *cobra.Command, cfg *utils.Config, duration time.Duration) error {
	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  motion-logger  ·  z-axis acceleration recorder")
	utils.L().Info("  backend=%s  ·  GOMAXPROCS=%d  ·  PID=%d",
		cfg.Sensor.Backend, runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("═══════════════════════════════════════════════════")

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.sampler.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if duration > 0 {
		var timerCancel context.CancelFunc
		ctx, timerCancel = context.WithTimeout(ctx, duration)
		defer timerCancel()
		utils.L().Info("recording will auto-stop after %v", duration)
	}

	if err := p.sampler.Start(); err != nil {
		return fmt.Errorf("start sampling: %w", err)
	}
	utils.L().Info("sampling — press Ctrl+C to stop and save")

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	for done := false; !done; {
		select {
		case <-ctx.Done():
			done = true
		case <-statsTicker.C:
			accepted, discarded, _ := p.sampler.Stats()
			snap := p.sampler.Snapshot()
			utils.L().Info("── stats  resident=%d  span=%v  accepted=%d  discarded=%d  %s",
				snap.Len(), snap.Span().Truncate(time.Millisecond), accepted, discarded,
				views.Sparkline(snap.Series, 40))
			if st, ok := p.svc.(interface{ Stats() (uint64, uint64) }); ok {
				produced, dropped := st.Stats()
				utils.L().Info("   %s  produced=%d  dropped=%d", cfg.Sensor.Backend, produced, dropped)
			}
		}
	}

	path, err := p.exporter.Save()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ saved", path)
	return nil
}

func newLiveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Interactive screen with Start/Stop, Reset and Save",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, cmd)
			if err != nil {
				return err
			}
			// the terminal belongs to the UI; log to file only
			logger, err := initLogger(cfg, true)
			if err != nil {
				return err
			}
			defer logger.Close()

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.sampler.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			mon := controller.NewMonitor(controller.SampleInterval)
			mon.Start(ctx, p.sampler)

			_, err = tea.NewProgram(ui.New(p.sampler, p.exporter, mon.Out), tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newProbeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report whether the configured motion backend has a sensor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, cmd)
			if err != nil {
				return err
			}
			svc, err := ingest.NewMotionService(cfg.Sensor)
			if err != nil {
				return err
			}
			if !svc.Available() {
				return fmt.Errorf("%s: %w", cfg.Sensor.Backend, ingest.ErrSensorUnavailable)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", cfg.Sensor.Backend)
			return nil
		},
	}
}
