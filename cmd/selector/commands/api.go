package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/shortlist/internal/api"
	"github.com/wonny/shortlist/internal/api/handlers"
	"github.com/wonny/shortlist/internal/brain"
	"github.com/wonny/shortlist/internal/scheduler"
	"github.com/wonny/shortlist/internal/scheduler/jobs"
	"github.com/wonny/shortlist/internal/strategyconfig"
)

var (
	apiPort          string
	apiWithScheduler bool
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "REST API 서버 실행",
	Long: `선정 API, 실시간 WebSocket 스트림, Prometheus 메트릭을 제공하는 서버를 실행합니다.

--with-scheduler 또는 전략 파일의 schedule.enabled가 true이면
전략 cron 일정으로 선정을 자동 실행합니다.

Example:
  go run ./cmd/selector api
  go run ./cmd/selector api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "", "server port (default: PORT or 8089)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the selection on the strategy cron")
	rootCmd.AddCommand(apiCmd)
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== Shortlist API Server ===")

	ctx, stop := interruptible(cmd.Context())
	defer stop()

	// 1. Config, storage, provider, orchestrator
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// 2. Live stream + latest cache
	hub := api.NewHub(log)
	defer hub.Close()
	latest := brain.NewLatestCache(a.cache, log)
	a.orchestrator.WithPublisher(brain.Publishers{hub, latest})

	// 3. Scheduler
	sched := scheduler.New(log).WithRetry(1, 30*time.Second)
	if apiWithScheduler || a.strategy.Schedule.Enabled {
		cronSpec := a.strategy.Schedule.Cron
		if cronSpec == "" {
			cronSpec = strategyconfig.Default().Schedule.Cron
		}
		// cron은 전략 타임존 기준
		spec := fmt.Sprintf("CRON_TZ=%s %s", a.strategy.Meta.Timezone, cronSpec)
		if err := sched.AddJob(jobs.NewSelectionJob(a.orchestrator, spec, log)); err != nil {
			return fmt.Errorf("register selection job: %w", err)
		}
	}
	if a.repo != nil {
		if err := sched.AddJob(jobs.NewHistoryCleanupJob(a.repo, a.cfg.HistoryRetention, log)); err != nil {
			return fmt.Errorf("register cleanup job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 4. Handlers
	var history handlers.History
	if a.repo != nil {
		history = a.repo
	}
	deps := api.RouterDeps{
		Selection: handlers.NewSelectionHandler(a.orchestrator, history, log).WithLatestCache(latest, a.strategy.Meta.StrategyID),
		Universe:  handlers.NewUniverseHandler(a.strategy),
		Scheduler: handlers.NewSchedulerHandler(sched),
		Hub:       hub,
	}
	if a.recorder != nil {
		deps.Metrics = a.recorder.Handler()
	}

	// 5. Server
	server := api.New(a.cfg, log, api.NewRouter(deps, log))
	if err := server.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	log.Info("API server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://%s\n", server.Addr())
	fmt.Fprintln(out, "\nAvailable endpoints:")
	fmt.Fprintln(out, "  GET  /health")
	if deps.Metrics != nil {
		fmt.Fprintln(out, "  GET  /metrics")
	}
	fmt.Fprintln(out, "  POST /api/selection/run?k=N&dry_run=true")
	fmt.Fprintln(out, "  GET  /api/selection/latest")
	fmt.Fprintln(out, "  GET  /api/selection/runs?limit=N")
	fmt.Fprintln(out, "  GET  /api/selection/runs/{id}")
	fmt.Fprintln(out, "  GET  /api/universe")
	fmt.Fprintln(out, "  GET  /api/scheduler/jobs")
	fmt.Fprintln(out, "  WS   /ws/selection")
	for _, name := range sched.GetAllJobs() {
		if next, err := sched.NextRun(name); err == nil {
			fmt.Fprintf(out, "\n⏰ %s next run: %s", name, next.Format(time.RFC3339))
		}
	}
	fmt.Fprintln(out, "\n\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a fatal listener error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
