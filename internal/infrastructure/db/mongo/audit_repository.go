package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artshoppe/storefront/internal/core/domain"
)

const auditCollection = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// InsertEvent persists an audit event. The event id doubles as _id so a
// retried insert cannot produce a second row.
func (r *AuditRepository) InsertEvent(ctx context.Context, e *domain.AuditEvent) error {
	doc := bson.M{
		"_id":         e.ID,
		"kind":        string(e.Kind),
		"path":        e.Path,
		"reason":      e.Reason,
		"occurred_at": e.OccurredAt.UTC(),
	}
	if e.UserID != "" {
		doc["user_id"] = e.UserID
	}
	if e.ActorID != "" {
		doc["actor_id"] = e.ActorID
	}
	if e.RemoteIP != "" {
		doc["remote_ip"] = e.RemoteIP
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
