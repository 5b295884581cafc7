package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

type stubAdminRepo struct {
	records map[string]*domain.AdminRecord
	nextID  int
	err     error
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{records: make(map[string]*domain.AdminRecord)}
}

func cloneAdmin(r *domain.AdminRecord) *domain.AdminRecord {
	c := *r
	return &c
}

func (r *stubAdminRepo) FindByUserID(_ context.Context, userID string) (*domain.AdminRecord, error) {
	for _, rec := range r.records {
		if rec.UserID == userID {
			return cloneAdmin(rec), nil
		}
	}
	return nil, domain.ErrAdminNotFound
}

func (r *stubAdminRepo) FindByID(_ context.Context, id string) (*domain.AdminRecord, error) {
	if rec, ok := r.records[id]; ok {
		return cloneAdmin(rec), nil
	}
	return nil, domain.ErrAdminNotFound
}

func (r *stubAdminRepo) List(_ context.Context) ([]*domain.AdminRecord, error) {
	out := make([]*domain.AdminRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, cloneAdmin(rec))
	}
	return out, nil
}

func (r *stubAdminRepo) Create(_ context.Context, rec *domain.AdminRecord) (*domain.AdminRecord, error) {
	for _, existing := range r.records {
		if existing.UserID == rec.UserID {
			return nil, domain.ErrAdminExists
		}
	}
	c := cloneAdmin(rec)
	r.nextID++
	c.ID = "admin-" + strconv.Itoa(r.nextID)
	r.records[c.ID] = c
	return cloneAdmin(c), nil
}

func (r *stubAdminRepo) Update(_ context.Context, id string, upd ports.AdminUpdate) (*domain.AdminRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	if upd.Role != nil {
		rec.Role = *upd.Role
	}
	if upd.IsActive != nil {
		rec.IsActive = *upd.IsActive
	}
	return cloneAdmin(rec), nil
}

func (r *stubAdminRepo) Count(_ context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.records)), nil
}

type stubRegistry struct {
	revokedUsers []string
}

func (s *stubRegistry) Register(context.Context, string, string, time.Duration) error { return nil }
func (s *stubRegistry) Active(context.Context, string) (bool, error)                  { return true, nil }
func (s *stubRegistry) Revoke(context.Context, string) error                          { return nil }
func (s *stubRegistry) RevokeUser(_ context.Context, userID string) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(e domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func newAdminFixture() (*stubAdminRepo, *stubAuthRepo, *stubRegistry, *recordingSink, ports.AdminService) {
	admins := newStubAdminRepo()
	users := newStubAuthRepo()
	reg := &stubRegistry{}
	sink := &recordingSink{}
	return admins, users, reg, sink, NewAdminService(AdminServiceConfig{
		Admins:   admins,
		Users:    users,
		Registry: reg,
		Audit:    sink,
		Log:      zerolog.Nop(),
	})
}

// stubExternal plays a hosted identity provider with a single account.
type stubExternal struct {
	userID, email, password string
	calls                   int
}

func (s *stubExternal) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	s.calls++
	if email != s.email || password != s.password {
		return "", nil, domain.ErrInvalidCredentials
	}
	return "hosted-token", &domain.User{ID: s.userID, Email: email}, nil
}

func TestAdminService_Create(t *testing.T) {
	_, users, _, sink, svc := newAdminFixture()

	rec, err := svc.Create(context.Background(), ports.CreateAdminInput{
		Email:    "  Curator@Example.com ",
		Password: "longenough",
		Role:     domain.RoleAdmin,
		ActorID:  "user-root",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Email != "curator@example.com" || !rec.IsActive || rec.Role != domain.RoleAdmin {
		t.Fatalf("unexpected record: %+v", rec)
	}

	u, err := users.FindByID(context.Background(), rec.UserID)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")) != nil {
		t.Fatal("stored hash does not match password")
	}
	if len(sink.events) != 1 || sink.events[0].Kind != domain.AuditAdminCreated {
		t.Fatalf("expected admin_created audit event, got %+v", sink.events)
	}
}

func TestAdminService_Create_Validation(t *testing.T) {
	_, _, _, _, svc := newAdminFixture()

	cases := []struct {
		name string
		in   ports.CreateAdminInput
		want error
	}{
		{"short password", ports.CreateAdminInput{Email: "a@b.c", Password: "short", Role: domain.RoleAdmin}, domain.ErrInvalidCredentials},
		{"missing email", ports.CreateAdminInput{Password: "longenough", Role: domain.RoleAdmin}, domain.ErrInvalidCredentials},
		{"unknown role", ports.CreateAdminInput{Email: "a@b.c", Password: "longenough", Role: "owner"}, domain.ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAdminService_Update_RevokesSessions(t *testing.T) {
	_, _, reg, sink, svc := newAdminFixture()
	rec, err := svc.Create(context.Background(), ports.CreateAdminInput{
		Email: "curator@example.com", Password: "longenough", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	updated, err := svc.Update(context.Background(), ports.UpdateAdminInput{
		ID: rec.ID, IsActive: &inactive, ActorID: "user-root",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected admin to be deactivated")
	}
	if len(reg.revokedUsers) != 1 || reg.revokedUsers[0] != rec.UserID {
		t.Fatalf("expected sessions of %s revoked, got %v", rec.UserID, reg.revokedUsers)
	}
	if last := sink.events[len(sink.events)-1]; last.Kind != domain.AuditAdminUpdated {
		t.Fatalf("expected admin_updated audit event, got %s", last.Kind)
	}
}

func TestAdminService_Update_Rejects(t *testing.T) {
	_, _, reg, _, svc := newAdminFixture()
	root, err := svc.Create(context.Background(), ports.CreateAdminInput{
		Email: "root@example.com", Password: "longenough", Role: domain.RoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(context.Background(), ports.UpdateAdminInput{
		ID: root.ID, IsActive: &inactive, ActorID: root.UserID,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self-deactivation, got %v", err)
	}

	bad := domain.Role("owner")
	if _, err := svc.Update(context.Background(), ports.UpdateAdminInput{ID: root.ID, Role: &bad}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	if _, err := svc.Update(context.Background(), ports.UpdateAdminInput{ID: "missing", IsActive: &inactive}); !errors.Is(err, domain.ErrAdminNotFound) {
		t.Fatalf("expected ErrAdminNotFound, got %v", err)
	}
	if len(reg.revokedUsers) != 0 {
		t.Fatalf("expected no revocations, got %v", reg.revokedUsers)
	}
}

func TestAdminService_Bootstrap(t *testing.T) {
	admins, _, _, _, svc := newAdminFixture()

	created, err := svc.Bootstrap(context.Background(), "root@example.com", "longenough")
	if err != nil || !created {
		t.Fatalf("expected bootstrap to create admin, got created=%v err=%v", created, err)
	}
	for _, rec := range admins.records {
		if rec.Role != domain.RoleSuperAdmin {
			t.Fatalf("expected super_admin, got %s", rec.Role)
		}
	}

	created, err = svc.Bootstrap(context.Background(), "other@example.com", "longenough")
	if err != nil || created {
		t.Fatalf("expected second bootstrap to be a no-op, got created=%v err=%v", created, err)
	}

	created, err = svc.Bootstrap(context.Background(), "", "")
	if err != nil || created {
		t.Fatalf("expected empty bootstrap to be skipped, got created=%v err=%v", created, err)
	}
}

func TestAdminService_Bootstrap_CountError(t *testing.T) {
	admins, _, _, _, svc := newAdminFixture()
	admins.err = errors.New("postgres down")

	if _, err := svc.Bootstrap(context.Background(), "root@example.com", "longenough"); err == nil {
		t.Fatal("expected count error to surface")
	}
}

func TestAdminService_Create_LinksExistingIdentity(t *testing.T) {
	admins, users, _, _, svc := newAdminFixture()

	rec, err := svc.Create(context.Background(), ports.CreateAdminInput{
		UserID:  "hosted-7f3a",
		Email:   "Curator@Example.com",
		Role:    domain.RoleAdmin,
		ActorID: "user-root",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.UserID != "hosted-7f3a" || rec.Email != "curator@example.com" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(users.users) != 0 {
		t.Fatalf("expected no local user to be created, got %d", len(users.users))
	}
	if _, err := admins.FindByUserID(context.Background(), "hosted-7f3a"); err != nil {
		t.Fatalf("linked admin not stored: %v", err)
	}
}

func TestAdminService_Bootstrap_ExternalIdentity(t *testing.T) {
	admins := newStubAdminRepo()
	users := newStubAuthRepo()
	ext := &stubExternal{userID: "hosted-root", email: "root@example.com", password: "longenough"}
	svc := NewAdminService(AdminServiceConfig{Admins: admins, Users: users, External: ext, Log: zerolog.Nop()})

	if _, err := svc.Bootstrap(context.Background(), "root@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected provider rejection to surface, got %v", err)
	}
	if len(admins.records) != 0 {
		t.Fatalf("expected no admin after failed sign-in, got %d", len(admins.records))
	}

	created, err := svc.Bootstrap(context.Background(), "root@example.com", "longenough")
	if err != nil || !created {
		t.Fatalf("expected bootstrap to link the hosted user, got created=%v err=%v", created, err)
	}
	rec, err := admins.FindByUserID(context.Background(), "hosted-root")
	if err != nil {
		t.Fatalf("expected admin keyed on hosted id: %v", err)
	}
	if rec.Role != domain.RoleSuperAdmin {
		t.Fatalf("expected super_admin, got %s", rec.Role)
	}
	if len(users.users) != 0 {
		t.Fatalf("expected no local user in hosted mode, got %d", len(users.users))
	}
}
