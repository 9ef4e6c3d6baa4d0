package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/render"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type simulationService struct{}

func NewSimulationService() *simulationService {
	return &simulationService{}
}

func (s *simulationService) Controls(_ context.Context, simType models.SimulationType) (*dto.ControlsResponse, error) {
	sliders, err := simulation.Controls(simType)
	if err != nil {
		return nil, err
	}
	return &dto.ControlsResponse{SimulationType: simType, Sliders: sliders}, nil
}

// Run seeds a session with params exactly like a widget's defaults would be:
// clamped into range, unknown keys ignored.
func (s *simulationService) Run(ctx context.Context, simType models.SimulationType, params map[string]float64) (*dto.SimulationResponse, error) {
	sess, err := simulation.NewSession(models.SimulationConfig{SimulationType: simType, Defaults: params})
	if err != nil {
		return nil, err
	}

	view, err := render.Envelope(render.RenderSession(simulationTitle(simType), sess))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("simulation run", "simulation_type", simType, "params", len(params))
	return &dto.SimulationResponse{
		Params: sess.Params(),
		Result: sess.Result(),
		View:   view,
	}, nil
}

// simulationTitle turns "loan_repayment" into "Loan Repayment".
func simulationTitle(t models.SimulationType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
