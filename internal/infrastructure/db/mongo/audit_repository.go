package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

const auditCollection = "audit_events"

var _ ports.AuditRepository = (*AuditRepository)(nil)

// AuditRepository appends audit events to the audit_events collection.
type AuditRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection), now: time.Now}
}

type auditDocument struct {
	Action     string            `bson:"action"`
	Entity     string            `bson:"entity"`
	EntityID   string            `bson:"entity_id"`
	Actor      string            `bson:"actor,omitempty"`
	Details    map[string]string `bson:"details,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// EnsureIndexes creates the lookup index used to read an entity's history.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "occurred_at", Value: 1}},
		Options: options.Index().SetName("entity_history"),
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

// Insert persists a single audit event.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDocument{
		Action:     string(event.Action),
		Entity:     event.Entity,
		EntityID:   event.EntityID,
		Actor:      event.Actor,
		Details:    event.Details,
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: r.now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
