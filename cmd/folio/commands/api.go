package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/api"
	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/internal/engine"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /api/portfolio/value  - 평가 시계열 + 지표 계산
  GET  /api/stock/price      - 종목 종가 조회 (symbol, date)
  GET  /ws/portfolio         - 계산 진행 상황 WebSocket 스트림

Example:
  go run ./cmd/folio api
  go run ./cmd/folio api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값은 PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Folio API Server ===")

	d, err := loadDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	log := d.log
	log.WithFields(map[string]interface{}{
		"port":   d.cfg.Port,
		"env":    d.cfg.Env,
		"source": d.cfg.Pricing.Source,
	}).Info("Initializing API server")

	eng := engine.New(d.source, log, engine.OptionsFromConfig(d.cfg))

	router := api.NewRouter(api.Handlers{
		Portfolio: handlers.NewPortfolioHandler(eng, log),
		Price:     handlers.NewPriceHandler(d.source, log),
		Stream:    handlers.NewStreamHandler(eng, log),
	}, log)

	server := api.New(d.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"POST /api/portfolio/value",
		"GET  /api/stock/price?symbol=&date=",
		"GET  /ws/portfolio",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
