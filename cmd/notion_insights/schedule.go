package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/scheduler"
)

var (
	scheduleFlags commonFlags
	scheduleSpec  string
)

var scheduleCommand = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long:  `Keeps the process running and triggers a full pipeline run on the given cron spec. The default runs every Monday at 06:00.`,
	RunE:  runScheduleCmd,
}

func init() {
	addCommonFlags(scheduleCommand, &scheduleFlags)
	scheduleCommand.Flags().StringVar(&scheduleSpec, "cron", "", `Cron spec (5-field, defaults to "0 6 * * 1")`)
	rootCmd.AddCommand(scheduleCommand)
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd, &scheduleFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cron") {
		cfg.CronSpec = scheduleSpec
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.pipeline, cfg.CronSpec)
	if err := sched.Start(); err != nil {
		return err
	}

	fmt.Printf("Scheduler running with spec %q, press Ctrl+C to stop\n", cfg.CronSpec)
	<-ctx.Done()

	<-sched.Stop().Done()
	return nil
}
