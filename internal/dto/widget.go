package dto

import (
	"encoding/json"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

const (
	RefreshStatusSuccess = "success"
	RefreshStatusError   = "error"
)

// RefreshResponse is the body of POST /widgets/{id}/refresh. On a non-2xx
// status Error holds the failure reason.
type RefreshResponse struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Widget     *models.Widget `json:"widget,omitempty"`
	DataPoints []models.Row   `json:"dataPoints,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type DeleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UpdateDefaultsRequest merges into a simulation widget's defaults.
type UpdateDefaultsRequest struct {
	Defaults map[string]float64 `json:"defaults"`
}

type SimulationRequest struct {
	Params map[string]float64 `json:"params"`
}

type SimulationResponse struct {
	Params simulation.Params `json:"params"`
	Result simulation.Result `json:"result"`
	View   json.RawMessage   `json:"view"`
}

type ControlsResponse struct {
	SimulationType models.SimulationType `json:"simulationType"`
	Sliders        []simulation.Slider   `json:"sliders"`
}
