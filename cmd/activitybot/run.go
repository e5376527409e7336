package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evanmh/activitybot/internal/config"
	"github.com/evanmh/activitybot/internal/domain"
	"github.com/evanmh/activitybot/internal/githost"
	"github.com/evanmh/activitybot/internal/gitrepo"
	"github.com/evanmh/activitybot/internal/notify"
	"github.com/evanmh/activitybot/internal/observer"
	"github.com/evanmh/activitybot/internal/orchestrator"
	"github.com/evanmh/activitybot/internal/scheduler"
	"github.com/evanmh/activitybot/web/api"
)

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	token, err := config.Token()
	if err != nil {
		return err
	}

	owner, name := cfg.RepoParts()
	vcs := gitrepo.New(cfg.RepoPath, cfg.Debug)
	host := githost.New(owner, name, token)
	orch := orchestrator.New(cfg, vcs, host)

	notifiers := []notify.Notifier{notify.LogNotifier{}}
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhook))
	}
	notifier := notify.NewMultiNotifier(notifiers...)

	if runNow {
		log.Printf("running once immediately")
		out := orch.RunOnce(cmd.Context())
		notifier.Send(notify.FromOutcome(out))
		if out.Failed() {
			return out.Err
		}
		return nil
	}

	return runDaemon(cfg, orch, notifier)
}

// runDaemon installs the scheduler and serves until terminated
func runDaemon(cfg *config.Config, orch *orchestrator.Orchestrator, notifier notify.Notifier) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := api.NewTracker()
	hub := api.NewHub()

	orch.OnEvent = func(stage domain.Stage, message string) {
		tracker.StageChanged(stage)
		hub.Broadcast(api.Event{Type: "stage", Stage: string(stage), Message: message, Time: time.Now()})
	}

	// The watcher is armed between runs only; the bot's own edits during a
	// run must not be reported as intrusions.
	watcher, err := observer.New(cfg.RepoPath, nil)
	if err != nil {
		return fmt.Errorf("watching %s: %w", cfg.RepoPath, err)
	}
	watcher.Start(ctx)
	watcher.Arm()
	defer watcher.Stop()

	runner, err := scheduler.New(cfg.CronSchedule, func(ctx context.Context) domain.RunOutcome {
		watcher.Disarm()
		tracker.RunStarted()
		out := orch.RunOnce(ctx)
		tracker.RunFinished(out)
		view := api.ViewOf(out)
		hub.Broadcast(api.Event{Type: "outcome", Run: &view, Time: time.Now()})
		watcher.Arm()
		return out
	})
	if err != nil {
		return err
	}
	runner.OnResult(func(out domain.RunOutcome) {
		notifier.Send(notify.FromOutcome(out))
	})
	tracker.NextRun = runner.NextRun

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Start(gctx)
	})
	if cfg.ListenAddr != "" {
		g.Go(func() error {
			return api.NewServer(tracker, hub, cfg.ListenAddr).Start(gctx)
		})
	}

	log.Printf("bot started on schedule %q, press Ctrl+C to stop", cfg.CronSchedule)
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
