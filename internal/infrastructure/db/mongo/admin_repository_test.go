package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

func adminDoc(id primitive.ObjectID, userID, role string, active bool) bson.D {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "role", Value: role},
		{Key: "is_active", Value: active},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func TestAdminRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "storefront.admins"

	mt.Run("find by user id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, adminDoc(id, "u1", "super_admin", true)))

		rec, err := NewAdminRepository(mt.DB).FindByUserID(context.Background(), "u1")
		if err != nil {
			t.Fatalf("FindByUserID: %v", err)
		}
		if rec.ID != id.Hex() || rec.UserID != "u1" || rec.Role != domain.RoleSuperAdmin || !rec.IsActive {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	mt.Run("find by user id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewAdminRepository(mt.DB).FindByUserID(context.Background(), "ghost")
		if !errors.Is(err, domain.ErrAdminNotFound) {
			t.Fatalf("expected ErrAdminNotFound, got %v", err)
		}
	})

	mt.Run("find by user id command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		_, err := NewAdminRepository(mt.DB).FindByUserID(context.Background(), "u1")
		if err == nil || errors.Is(err, domain.ErrAdminNotFound) {
			t.Fatalf("expected a wrapped driver error, got %v", err)
		}
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		_, err := NewAdminRepository(mt.DB).FindByID(context.Background(), "not-hex")
		if !errors.Is(err, domain.ErrAdminNotFound) {
			t.Fatalf("expected ErrAdminNotFound, got %v", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			adminDoc(primitive.NewObjectID(), "u1", "admin", true),
			adminDoc(primitive.NewObjectID(), "u2", "super_admin", false),
		))

		recs, err := NewAdminRepository(mt.DB).List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(recs) != 2 || recs[1].IsActive {
			t.Fatalf("unexpected list: %+v", recs)
		}
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec, err := NewAdminRepository(mt.DB).Create(context.Background(), &domain.AdminRecord{
			UserID: "u3", Role: domain.RoleAdmin, IsActive: true,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.ID == "" || rec.UserID != "u3" {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		_, err := NewAdminRepository(mt.DB).Create(context.Background(), &domain.AdminRecord{UserID: "u3", Role: domain.RoleAdmin})
		if !errors.Is(err, domain.ErrAdminExists) {
			t.Fatalf("expected ErrAdminExists, got %v", err)
		}
	})

	mt.Run("update", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: adminDoc(id, "u1", "admin", false)},
		})

		inactive := false
		rec, err := NewAdminRepository(mt.DB).Update(context.Background(), id.Hex(), ports.AdminUpdate{IsActive: &inactive})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if rec.IsActive {
			t.Fatalf("expected updated record to be inactive")
		}
	})
}
