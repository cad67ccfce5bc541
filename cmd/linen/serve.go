package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/bot"
	"github.com/Spok95/linen-service/internal/config"
	"github.com/Spok95/linen-service/internal/dialog"
	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/clients"
	"github.com/Spok95/linen-service/internal/domain/invoices"
	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/infra/db"
	httpx "github.com/Spok95/linen-service/internal/infra/http"
	"github.com/Spok95/linen-service/internal/infra/metrics"
	"github.com/Spok95/linen-service/internal/infra/payments"
	"github.com/Spok95/linen-service/internal/invoice"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, the HTTP API and the admin bot",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return serve(cfg, log)
	},
}

type app struct {
	clients    *clients.Repo
	categories *linen.Repo
	batches    *billing.BatchService
	reports    *billing.ReportService
	invoices   *billing.InvoiceService
	prices     *billing.PriceService
}

func buildApp(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, m *metrics.Metrics) app {
	clientsRepo := clients.NewRepo(pool)
	catsRepo := linen.NewRepo(pool)
	batchesRepo := batches.NewRepo(pool)

	calc := invoice.NewCalculator(invoice.Rates{
		VAT:              decimal.NewFromFloat(cfg.Billing.VATRate),
		ExpressSurcharge: decimal.NewFromFloat(cfg.Billing.ExpressSurcharge),
	})
	reports := billing.NewReportService(log, batchesRepo, m)

	return app{
		clients:    clientsRepo,
		categories: catsRepo,
		batches:    billing.NewBatchService(log, batchesRepo, clientsRepo, catsRepo, calc, m),
		reports:    reports,
		invoices: billing.NewInvoiceService(log, invoices.NewRepo(pool), clientsRepo, reports,
			payments.NewService(cfg.Payments.BaseURL), m),
		prices: billing.NewPriceService(log, catsRepo),
	}
}

func serve(cfg config.Config, log *slog.Logger) error {
	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return err
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}
	a := buildApp(cfg, log, pool, m)

	api := httpx.NewAPI(log, m, httpx.Services{
		Clients:    a.clients,
		Categories: a.categories,
		Batches:    a.batches,
		Reports:    a.reports,
		Invoices:   a.invoices,
		Prices:     a.prices,
	})
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, api)

	var b *bot.Bot
	if cfg.Telegram.Enabled {
		tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		log.Info("authorized on telegram", "account", tg.Self.UserName)

		b = bot.New(tg, log, dialog.NewRepo(pool), cfg.Telegram.AdminChatID, a.batches, a.reports, a.prices)
		a.batches.SetNotifier(b)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if b != nil {
		g.Go(func() error {
			if err := b.Run(gctx, cfg.Telegram.Timeout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	log.Info("graceful shutdown complete")
	return err
}
