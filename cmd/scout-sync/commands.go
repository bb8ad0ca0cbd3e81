package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/observability"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print machine readable JSON"}
}

func (r *runner) command() *cli.Command {
	return &cli.Command{
		Name:  "scout-sync",
		Usage: "Reconcile the external scouting roster with the player store",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one sync pass and print the report",
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.BoolFlag{Name: "dry-run", Usage: "Process every row but roll back all writes"},
				},
				Action: r.runSync,
			},
			{
				Name:  "watch",
				Usage: "Run a sync pass on a fixed interval until interrupted",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "every", Usage: "Interval between passes (defaults to SYNC_INTERVAL)"},
					&cli.IntFlag{Name: "max-runs", Usage: "Stop after this many passes; 0 runs forever"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Roll back all writes"},
				},
				Action: r.watch,
			},
			{
				Name:  "players",
				Usage: "Inspect synced players",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List players with their current club",
						Flags:  []cli.Flag{jsonFlag()},
						Action: r.listPlayers,
					},
					{
						Name:      "show",
						Usage:     "Show one player",
						ArgsUsage: "<id>",
						Flags:     []cli.Flag{jsonFlag()},
						Action:    r.showPlayer,
					},
				},
			},
			{
				Name:  "alerts",
				Usage: "Inspect and resolve scouting alerts",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List active alerts, newest first",
						Flags:  []cli.Flag{jsonFlag()},
						Action: r.listAlerts,
					},
					{
						Name:      "resolve",
						Usage:     "Deactivate an alert",
						ArgsUsage: "<id>",
						Action:    r.resolveAlert,
					},
				},
			},
		},
	}
}

func (r *runner) runSync(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	report, runErr := s.app.Sync.Run(ctx, usecase.SyncOptions{DryRun: cmd.Bool("dry-run")})
	if report.RunID != "" {
		if err := r.printReport(report, cmd.Bool("json")); err != nil {
			return err
		}
	}
	return runErr
}

func (r *runner) watch(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	every := cmd.Duration("every")
	if every <= 0 {
		every = s.cfg.SyncInterval
	}
	maxRuns := cmd.Int("max-runs")
	opts := usecase.SyncOptions{DryRun: cmd.Bool("dry-run")}

	stopProfiler, err := observability.InitPyroscope(s.cfg, s.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			s.logger.Warn("stop profiler", "error", err)
		}
	}()

	s.logger.Info("watch started", "every", every.String(), "source", s.app.Source.Name())
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for runs := 1; ; runs++ {
		r.watchOnce(ctx, s, opts)
		if maxRuns > 0 && runs >= maxRuns {
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (r *runner) watchOnce(ctx context.Context, s *session, opts usecase.SyncOptions) {
	status, err := s.app.Jobs.Start(ctx, opts)
	if errors.Is(err, usecase.ErrSyncInProgress) {
		s.logger.Warn("previous sync still running, skipping tick")
		return
	}
	if err != nil {
		s.logger.Error("start sync job", "error", err)
		return
	}

	final, err := s.app.Jobs.Wait(ctx, status.ID)
	if err != nil {
		// Interrupted: stop the pass between rows and let it record its state.
		_, _ = s.app.Jobs.Cancel(status.ID)
		waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		final, _ = s.app.Jobs.Wait(waitCtx, status.ID)
	}
	if final.Report != nil {
		_ = r.printReport(*final.Report, false)
	}
}

func (r *runner) listPlayers(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	profiles, err := s.app.Scouting.ListPlayers(ctx)
	if err != nil {
		return err
	}
	return r.printPlayers(profiles, cmd.Bool("json"))
}

func (r *runner) showPlayer(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	profile, err := s.app.Scouting.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	return r.printPlayers([]player.Profile{profile}, cmd.Bool("json"))
}

func (r *runner) listAlerts(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	alerts, err := s.app.Scouting.ListActiveAlerts(ctx)
	if err != nil {
		return err
	}
	return r.printAlerts(alerts, cmd.Bool("json"))
}

func (r *runner) resolveAlert(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.app.Scouting.ResolveAlert(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "alert %d resolved\n", id)
	return nil
}

func parseIDArg(cmd *cli.Command) (int64, error) {
	raw := strings.TrimSpace(cmd.Args().First())
	if raw == "" {
		return 0, fmt.Errorf("%w: id argument is required", usecase.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}
