package render

import (
	"context"
	"fmt"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const renderFailedMessage = "This widget could not be displayed."

// Safe is the per-widget render boundary. A panic while building the view is
// logged and turned into an ErrorView; other widgets are unaffected.
func Safe(ctx context.Context, w *models.Widget, rows []models.Row) (v View) {
	defer func() {
		if rec := recover(); rec != nil {
			id := ""
			if w != nil {
				id = w.WidgetID
			}
			logger.FromContext(ctx).Error("widget render failed",
				"widget_id", id,
				"panic", fmt.Sprint(rec),
			)
			v = ErrorView{
				WidgetID: id,
				Message:  renderFailedMessage,
				Retry:    func() View { return Safe(ctx, w, rows) },
			}
		}
	}()
	return Render(w, rows)
}
