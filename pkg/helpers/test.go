package helpers

import (
	"context"

	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

// TestCtx returns a context whose logger discards everything, debug included.
func TestCtx() context.Context {
	return logger.ToContext(context.Background(), logger.New("debug", logger.NewTestHandler))
}
