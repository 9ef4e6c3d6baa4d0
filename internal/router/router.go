package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/finance-widgets/internal/handlers"
	"github.com/GregMSThompson/finance-widgets/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log, "/healthz")
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	auth := middleware.NewMiddleware(deps.Firebase, deps.ResponseHandler)
	wh := handlers.NewWidgetHandlers(deps)
	sh := handlers.NewSimulationHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/widgets", wh.WidgetRoutes())
		r.Mount("/simulations", sh.SimulationRoutes())
		if deps.BankSvc != nil {
			r.Mount("/banks", handlers.NewBankHandlers(deps).BankRoutes())
		}
	})
	return r
}
