// Package lifecycle keeps the client-side widget list in step with the
// widget store: listing, refreshing, two-step deletion and assistant-driven
// create/edit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const defaultRefreshLimit = 4

// widgetStore is the remote widget store.
type widgetStore interface {
	List(ctx context.Context) ([]models.Widget, error)
	Refresh(ctx context.Context, id string) (*dto.RefreshResponse, error)
	Delete(ctx context.Context, id string) error
}

// assistant is the conversational mutation endpoint.
type assistant interface {
	Chat(ctx context.Context, req dto.ChatbotRequest) (*dto.ChatbotResponse, error)
}

// DeleteToken identifies a pending delete until it is confirmed or cancelled.
type DeleteToken string

type Controller struct {
	store     widgetStore
	assistant assistant
	sessionID string
	userID    string

	mu         sync.Mutex
	widgets    map[string]*models.Widget
	order      []string
	refreshing map[string]struct{}
	pending    map[DeleteToken]string
	chatBusy   bool
	transcript []dto.ChatMessage

	refreshLimit int
	clockNow     func() time.Time
	newToken     func() string
}

func NewController(store widgetStore, assistant assistant, sessionID, userID string) *Controller {
	return &Controller{
		store:        store,
		assistant:    assistant,
		sessionID:    sessionID,
		userID:       userID,
		widgets:      make(map[string]*models.Widget),
		refreshing:   make(map[string]struct{}),
		pending:      make(map[DeleteToken]string),
		refreshLimit: defaultRefreshLimit,
		clockNow:     time.Now,
		newToken:     uuid.NewString,
	}
}

// List fetches every widget from the store and replaces the cache. When the
// store cannot be reached the cache is kept and a retryable LoadError is
// returned.
func (c *Controller) List(ctx context.Context) ([]models.Widget, error) {
	log := logger.FromContext(ctx)

	fetched, err := c.store.List(ctx)
	if err != nil {
		log.Warn("widget list failed, keeping cached widgets", "error", err)
		return nil, errs.NewLoadError(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.widgets = make(map[string]*models.Widget, len(fetched))
	c.order = c.order[:0]
	for i := range fetched {
		w := fetched[i].Clone()
		c.widgets[w.WidgetID] = &w
		c.order = append(c.order, w.WidgetID)
	}
	log.Debug("widgets loaded", "count", len(fetched))
	return c.snapshotLocked(), nil
}

// Widgets returns copies of the cached widgets in list order.
func (c *Controller) Widgets() []models.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Widget(id string) (models.Widget, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.widgets[id]
	if !ok {
		return models.Widget{}, false
	}
	return w.Clone(), true
}

func (c *Controller) snapshotLocked() []models.Widget {
	out := make([]models.Widget, 0, len(c.order))
	for _, id := range c.order {
		if w, ok := c.widgets[id]; ok {
			out = append(out, w.Clone())
		}
	}
	return out
}

// IsRefreshing reports whether a refresh for id is in flight.
func (c *Controller) IsRefreshing(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.refreshing[id]
	return ok
}

// Refresh re-resolves a dynamic widget's data. A second refresh of the same
// id while one is running is rejected with a ConflictError; distinct ids run
// independently. On failure the cached widget is left as it was.
func (c *Controller) Refresh(ctx context.Context, id string) (models.Widget, error) {
	log, ctx := logger.With(ctx, "widget_id", id)

	c.mu.Lock()
	w, ok := c.widgets[id]
	switch {
	case !ok:
		c.mu.Unlock()
		return models.Widget{}, errs.NewNotFoundError("widget not found")
	case !w.Refreshable():
		c.mu.Unlock()
		return models.Widget{}, errs.NewValidationError("only dynamic, non-simulation widgets can be refreshed")
	}
	if _, busy := c.refreshing[id]; busy {
		c.mu.Unlock()
		return models.Widget{}, errs.NewConflictError("refresh already in progress")
	}
	c.refreshing[id] = struct{}{}
	current := w.Clone()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.refreshing, id)
		c.mu.Unlock()
	}()

	log.Info("refreshing widget")
	resp, err := c.store.Refresh(ctx, id)
	if err != nil {
		log.Warn("widget refresh failed", "error", err)
		var ext *errs.ExternalServiceError
		if !errors.As(err, &ext) {
			err = errs.NewExternalServiceError("widget store", 0, "", err)
		}
		return models.Widget{}, err
	}

	updated := current
	if resp.Widget != nil {
		updated = resp.Widget.Clone()
	} else if resp.DataPoints != nil {
		updated.VisualConfig.EmbeddedData = resp.DataPoints
	}
	now := c.clockNow()
	updated.LastRefreshed = &now

	c.mu.Lock()
	// a delete confirmed mid-refresh wins
	if _, still := c.widgets[id]; still {
		stored := updated.Clone()
		c.widgets[id] = &stored
	}
	c.mu.Unlock()

	log.Info("widget refreshed", "data_points", len(updated.VisualConfig.EmbeddedData))
	return updated, nil
}

// RefreshAll refreshes every refreshable widget concurrently and reports the
// failures by widget id. One failure never stops the others.
func (c *Controller) RefreshAll(ctx context.Context) map[string]error {
	c.mu.Lock()
	var ids []string
	for _, id := range c.order {
		if w, ok := c.widgets[id]; ok && w.Refreshable() {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	var (
		mu       sync.Mutex
		failures = make(map[string]error)
		g        errgroup.Group
	)
	g.SetLimit(c.refreshLimit)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := c.Refresh(ctx, id); err != nil {
				mu.Lock()
				failures[id] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// RequestDelete starts a delete. Nothing happens until the returned token is
// confirmed.
func (c *Controller) RequestDelete(id string) (DeleteToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.widgets[id]; !ok {
		return "", errs.NewNotFoundError("widget not found")
	}
	token := DeleteToken(c.newToken())
	c.pending[token] = id
	return token, nil
}

// ConfirmDelete performs the delete bound to token. The token is spent even
// when the store call fails.
func (c *Controller) ConfirmDelete(ctx context.Context, token DeleteToken) error {
	c.mu.Lock()
	id, ok := c.pending[token]
	delete(c.pending, token)
	c.mu.Unlock()
	if !ok {
		return errs.NewNotFoundError("delete confirmation not found")
	}

	log, ctx := logger.With(ctx, "widget_id", id)
	if err := c.store.Delete(ctx, id); err != nil {
		log.Warn("widget delete failed", "error", err)
		return err
	}

	c.mu.Lock()
	delete(c.widgets, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	log.Info("widget deleted")
	return nil
}

// CancelDelete drops a pending delete. Unknown tokens are ignored.
func (c *Controller) CancelDelete(token DeleteToken) {
	c.mu.Lock()
	delete(c.pending, token)
	c.mu.Unlock()
}

// Edit sends instruction to the assistant together with the whole current
// widget. The cache is not touched; callers re-list once the assistant
// reports an update.
func (c *Controller) Edit(ctx context.Context, id, instruction string) (*dto.ChatbotResponse, error) {
	w, ok := c.Widget(id)
	if !ok {
		return nil, errs.NewNotFoundError("widget not found")
	}
	return c.chat(ctx, instruction, false, &w)
}

// Create asks the assistant to build a new widget from prompt.
func (c *Controller) Create(ctx context.Context, prompt string) (*dto.ChatbotResponse, error) {
	return c.chat(ctx, prompt, true, nil)
}

func (c *Controller) chat(ctx context.Context, content string, createHint bool, editContext *models.Widget) (*dto.ChatbotResponse, error) {
	c.mu.Lock()
	if c.chatBusy {
		c.mu.Unlock()
		return nil, errs.NewConflictError("an assistant request is already in progress")
	}
	c.chatBusy = true
	messages := append(append([]dto.ChatMessage(nil), c.transcript...), dto.ChatMessage{Role: "user", Content: content})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.chatBusy = false
		c.mu.Unlock()
	}()

	resp, err := c.assistant.Chat(ctx, dto.ChatbotRequest{
		Messages:         messages,
		SessionID:        c.sessionID,
		UserID:           c.userID,
		CreateWidgetHint: createHint,
		EditContext:      editContext,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant request: %w", err)
	}

	c.mu.Lock()
	c.transcript = append(messages, dto.ChatMessage{Role: "assistant", Content: resp.Response})
	c.mu.Unlock()

	logger.FromContext(ctx).Info("assistant replied",
		"widget_created", resp.WidgetCreated,
		"widget_updated", resp.WidgetUpdated,
	)
	return resp, nil
}
