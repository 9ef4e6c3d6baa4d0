package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/bootstrap"
	"github.com/GregMSThompson/finance-widgets/internal/config"
	"github.com/GregMSThompson/finance-widgets/internal/crypto"
	"github.com/GregMSThompson/finance-widgets/internal/handlers"
	"github.com/GregMSThompson/finance-widgets/internal/response"
	"github.com/GregMSThompson/finance-widgets/internal/router"
	"github.com/GregMSThompson/finance-widgets/internal/services"
	"github.com/GregMSThompson/finance-widgets/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	wstore := store.NewWidgetStore(bs.Firestore, cfg.WidgetCollection)
	tstore := store.NewTransactionStore(bs.Firestore)
	astore := store.NewAccountStore(bs.Firestore)

	// services
	resolver := services.NewQueryResolver(tstore, astore)
	wserv := services.NewWidgetService(wstore, resolver, cfg.RefreshTimeout)
	sserv := services.NewSimulationService()

	// response handler
	rh := response.New()

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WidgetSvc = wserv
	deps.SimulationSvc = sserv

	// bank linking feeds the transactions and accounts the resolver reads
	if cfg.BankLinkingEnabled() {
		bstore := store.NewBankStore(bs.Firestore, crypto.NewKMS(bs.KMS, cfg.KMSKeyName))
		deps.BankSvc = services.NewBankService(bs.Plaid, bstore, tstore, astore)
	}

	// router
	r := router.NewRouter(deps)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	bs.Log.Info("widget store listening", "port", cfg.Port)
	err = srv.ListenAndServe()
	exitOnError("server start failed", err, bs.Log)
}
