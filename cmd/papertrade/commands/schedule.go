package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kmorrow/papertrade/internal/scheduler"
	"github.com/kmorrow/papertrade/pkg/config"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the signal pipeline on a cron schedule",
	Long: `Keeps the process alive and runs the full signal pipeline on the
given cron expression. The default fires weekdays at 21:30 UTC,
shortly after the US market close.

Example:
  go run ./cmd/papertrade schedule
  go run ./cmd/papertrade schedule --cron "0 22 * * 1-5"`,
	RunE: runSchedule,
}

var scheduleCron string

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "30 21 * * 1-5", "cron expression (minute-first, five fields)")
}

// signalJob adapts the pipeline run to the scheduler's Job interface.
type signalJob struct {
	cfg      *config.Config
	log      *logger.Logger
	schedule string
}

func (j *signalJob) Name() string     { return "generate-signals" }
func (j *signalJob) Schedule() string { return j.schedule }

func (j *signalJob) Run(ctx context.Context) error {
	return generateSignals(ctx, j.cfg, j.log)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	s := scheduler.New(log)
	if err := s.AddJob(&signalJob{cfg: cfg, log: log, schedule: scheduleCron}); err != nil {
		return err
	}

	s.Start()
	fmt.Printf("Scheduler running, signals on %q. Ctrl-C to stop.\n", scheduleCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.Stop()
	return nil
}
