package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/finance-widgets/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	WidgetSvc       widgetService
	SimulationSvc   simulationService
	BankSvc         bankService // nil when bank linking is not configured
	Firebase        *auth.Client
}
