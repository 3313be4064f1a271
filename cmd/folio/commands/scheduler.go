package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/pricing"
	"github.com/wonny/folio/internal/scheduler"
	"github.com/wonny/folio/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `가격 동기화 스케줄러를 시작하거나 작업을 관리합니다.

Yahoo 종가를 PostgreSQL data.daily_prices 에 적재하여
PRICE_SOURCE=store|chain 계산이 네트워크 없이 동작하게 합니다.
DATABASE_URL 필수.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/folio scheduler start
  go run ./cmd/folio scheduler list
  go run ./cmd/folio scheduler run price_sync`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- price_sync: SYNC_SCHEDULE (기본 평일 17:30), SYNC_SYMBOLS + 벤치마크

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the price sync job against the store and Yahoo
func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	if d.db == nil {
		return nil, fmt.Errorf("scheduler requires DATABASE_URL")
	}

	benchmark := d.cfg.Pricing.BenchmarkSymbol
	store := pricing.NewStoreSource(d.db.Pool, benchmark)
	upstream := pricing.NewYahooSource(pricing.NewYahooClient(d.cfg, d.log, d.rc), benchmark)

	sched := scheduler.New(d.log, scheduler.WithRetry(2, 30*time.Second))
	if err := sched.AddJob(jobs.NewPriceSyncJob(upstream, store, d.cfg, d.log)); err != nil {
		return nil, fmt.Errorf("add price_sync: %w", err)
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Folio Scheduler ===")

	d, err := loadDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	PrintSuccess("Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	stats := sched.Stats()
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s (%s)\n", name, stats[name].Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, err := loadDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.Stats()
	fmt.Println("Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %-12s %s\n", name, stats[name].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	d, err := loadDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return err
	}

	PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String(), 10)
	PrintKeyValue("Attempts", fmt.Sprintf("%d", result.Attempts), 10)
	if !result.Success {
		PrintError(result.Error)
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess("Job completed")
	return nil
}
