package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "github.com/Supremeimprints/zellow-backoffice/internal/adapters/web"
	"github.com/Supremeimprints/zellow-backoffice/internal/core"
	"github.com/Supremeimprints/zellow-backoffice/internal/db"
	"github.com/Supremeimprints/zellow-backoffice/internal/logger"
	"github.com/Supremeimprints/zellow-backoffice/internal/mailer"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))
	ctx := context.Background()

	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var notifier core.PurchaseOrderNotifier = mailer.Noop{}
	smtpCfg := mailer.ConfigFromEnv()
	if smtpCfg.Enabled() {
		notifier = mailer.NewSMTP(smtpCfg)
	} else {
		log.Warn().Msg("SMTP_HOST not set, supplier notifications disabled")
	}

	marketing := core.NewMarketingService(pool)
	orders := core.NewOrderService(pool, marketing)
	svcs := webAdapter.Services{
		Users:     core.NewUserService(pool),
		Suppliers: core.NewSupplierService(pool),
		Purchases: core.NewPurchaseOrderService(pool, notifier),
		Receiving: core.NewReceivingService(pool),
		Invoices:  core.NewInvoiceService(pool),
		Orders:    orders,
		Dispatch:  core.NewDispatchService(pool, orders),
		Marketing: marketing,
		Reports:   core.NewReportingService(pool),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svcs, os.Getenv("ALLOWED_ORIGINS"), jwtSecret, log)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
