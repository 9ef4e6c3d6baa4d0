package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/response"
)

type simulationService interface {
	Controls(ctx context.Context, simType models.SimulationType) (*dto.ControlsResponse, error)
	Run(ctx context.Context, simType models.SimulationType, params map[string]float64) (*dto.SimulationResponse, error)
}

type simulationHandlers struct {
	ResponseHandler response.ResponseHandler
	SimulationSvc   simulationService
}

func NewSimulationHandlers(deps *Deps) *simulationHandlers {
	return &simulationHandlers{
		ResponseHandler: deps.ResponseHandler,
		SimulationSvc:   deps.SimulationSvc,
	}
}

func (h *simulationHandlers) SimulationRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{simulationType}/controls", h.GetControls)
	r.Post("/{simulationType}", h.RunSimulation)
	return r
}

func (h *simulationHandlers) GetControls(w http.ResponseWriter, r *http.Request) {
	simType := models.SimulationType(chi.URLParam(r, "simulationType"))
	resp, err := h.SimulationSvc.Controls(r.Context(), simType)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

// RunSimulation accepts an empty body as "all defaults".
func (h *simulationHandlers) RunSimulation(w http.ResponseWriter, r *http.Request) {
	simType := models.SimulationType(chi.URLParam(r, "simulationType"))
	var req dto.SimulationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}
	resp, err := h.SimulationSvc.Run(r.Context(), simType, req.Params)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
