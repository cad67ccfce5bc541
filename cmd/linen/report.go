package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Spok95/linen-service/internal/infra/db"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/spf13/cobra"
)

var (
	reportPeriod string
	reportClient int64
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the per-client period summary to an xlsx file",
	RunE:  runReport,
}

func init() {
	now := time.Now()
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", now.Format("2006-01"), "period: YYYY-MM or YYYY")
	reportCmd.Flags().Int64Var(&reportClient, "client", 0, "only this client id")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", ".", "output directory")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	p, err := invoice.ParsePeriodLabel(reportPeriod)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var clientID *int64
	if reportClient > 0 {
		clientID = &reportClient
	}
	data, name, err := buildApp(cfg, log, pool, nil).reports.MonthlyWorkbook(ctx, p, clientID)
	if err != nil {
		return err
	}

	path := filepath.Join(reportOut, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info("report written", "period", p.Label(), "path", path, "bytes", len(data))
	return nil
}
