package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const DefaultWidgetCollection = "widgets"

type widgetStore struct {
	client     *firestore.Client
	collection string
}

func NewWidgetStore(client *firestore.Client, collection string) *widgetStore {
	if collection == "" {
		collection = DefaultWidgetCollection
	}
	return &widgetStore{client: client, collection: collection}
}

func (s *widgetStore) widgets(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection(s.collection)
}

func (s *widgetStore) Create(ctx context.Context, uid string, w *models.Widget) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	_, err := s.widgets(uid).Doc(w.WidgetID).Create(ctx, w)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("widget already exists")
		}
		return errs.NewDatabaseError("create", "failed to create widget", err)
	}
	return nil
}

func (s *widgetStore) Get(ctx context.Context, uid, widgetID string) (*models.Widget, error) {
	doc, err := s.widgets(uid).Doc(widgetID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("widget not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get widget", err)
	}
	var w models.Widget
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	return &w, nil
}

// List returns the user's widgets, most recently updated first. A document
// that no longer parses is skipped rather than failing the whole list.
func (s *widgetStore) List(ctx context.Context, uid string) ([]*models.Widget, error) {
	log := logger.FromContext(ctx)
	docs, err := s.widgets(uid).OrderBy("updatedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list widgets", err)
	}
	widgets := make([]*models.Widget, 0, len(docs))
	for _, d := range docs {
		var w models.Widget
		if err := d.DataTo(&w); err != nil {
			log.Warn("skipping unreadable widget", "widget_id", d.Ref.ID, "error", err)
			continue
		}
		widgets = append(widgets, &w)
	}
	return widgets, nil
}

// Update replaces the stored widget whole.
func (s *widgetStore) Update(ctx context.Context, uid string, w *models.Widget) error {
	w.UpdatedAt = time.Now()
	_, err := s.widgets(uid).Doc(w.WidgetID).Set(ctx, w)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update widget", err)
	}
	return nil
}

// UpdateDefaults writes only simulationConfig.defaults so a concurrent
// refresh or edit of other fields is not overwritten.
func (s *widgetStore) UpdateDefaults(ctx context.Context, uid, widgetID string, defaults map[string]float64) error {
	_, err := s.widgets(uid).Doc(widgetID).Update(ctx, []firestore.Update{
		{Path: "simulationConfig.defaults", Value: defaults},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("widget not found")
		}
		return errs.NewDatabaseError("update", "failed to update simulation defaults", err)
	}
	return nil
}

func (s *widgetStore) Delete(ctx context.Context, uid, widgetID string) error {
	_, err := s.widgets(uid).Doc(widgetID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete widget", err)
	}
	return nil
}
