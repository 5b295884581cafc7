package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

const adminsCollection = "admins"

// AdminRepository implements ports.AdminRepository using MongoDB.
type AdminRepository struct {
	coll *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{coll: db.Collection(adminsCollection)}
}

type mongoAdmin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Email     string             `bson:"email,omitempty"`
	Role      string             `bson:"role"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// FindByUserID looks up the admin record of a user. Only the two
// back-office roles are eligible; any other role reads as not found.
func (r *AdminRepository) FindByUserID(ctx context.Context, userID string) (*domain.AdminRecord, error) {
	filter := bson.M{
		"user_id": userID,
		"role":    bson.M{"$in": bson.A{string(domain.RoleAdmin), string(domain.RoleSuperAdmin)}},
	}
	return r.findOne(ctx, filter)
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*domain.AdminRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAdminNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AdminRepository) List(ctx context.Context) ([]*domain.AdminRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAdmin
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode admins: %w", err)
	}
	out := make([]*domain.AdminRecord, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *AdminRepository) Create(ctx context.Context, rec *domain.AdminRecord) (*domain.AdminRecord, error) {
	now := time.Now().UTC()
	doc := mongoAdmin{
		UserID:    rec.UserID,
		Email:     rec.Email,
		Role:      string(rec.Role),
		IsActive:  rec.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAdminExists
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *AdminRepository) Update(ctx context.Context, id string, upd ports.AdminUpdate) (*domain.AdminRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAdminNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	var doc mongoAdmin
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("update admin: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M) (*domain.AdminRecord, error) {
	var doc mongoAdmin
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return doc.toDomain(), nil
}

func (d mongoAdmin) toDomain() *domain.AdminRecord {
	return &domain.AdminRecord{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Email:     d.Email,
		Role:      domain.Role(d.Role),
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
