package dto

import "github.com/GregMSThompson/finance-widgets/internal/models"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatbotRequest is sent to the assistant. EditContext carries the whole
// current widget so a partial instruction can be merged against it.
type ChatbotRequest struct {
	Messages         []ChatMessage  `json:"messages"`
	SessionID        string         `json:"sessionId"`
	UserID           string         `json:"userId"`
	CreateWidgetHint bool           `json:"createWidgetHint"`
	EditContext      *models.Widget `json:"editContext,omitempty"`
}

type ChatbotResponse struct {
	Response       string                `json:"response"`
	WidgetCreated  bool                  `json:"widgetCreated,omitempty"`
	WidgetUpdated  bool                  `json:"widgetUpdated,omitempty"`
	WidgetMode     models.DataMode       `json:"widgetMode,omitempty"`
	WidgetType     models.WidgetKind     `json:"widgetType,omitempty"`
	SimulationType models.SimulationType `json:"simulationType,omitempty"`
}
