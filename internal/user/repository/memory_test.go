package repository

import (
	"context"
	"testing"
	"time"

	"gemini-observatory/backend/internal/user/domain"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now().UTC()

	for _, u := range []*domain.User{
		{ID: "u2", Username: "zeta", Role: domain.RoleAstronomer, Status: domain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: "u1", Username: "alpha", Role: domain.RoleScienceObserver, Status: domain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
	} {
		if err := r.Create(ctx, u); err != nil {
			t.Fatalf("Create(%s): %v", u.ID, err)
		}
	}
	if err := r.Create(ctx, &domain.User{ID: "u3", Username: "alpha"}); err != ErrDuplicateUsername {
		t.Errorf("duplicate Create = %v, want ErrDuplicateUsername", err)
	}

	got, err := r.GetByUsername(ctx, "alpha")
	if err != nil || got == nil || got.ID != "u1" {
		t.Fatalf("GetByUsername = %+v, %v", got, err)
	}
	missing, err := r.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %+v, %v; want nil, nil", missing, err)
	}

	all, _ := r.List(ctx, "")
	if len(all) != 2 || all[0].Username != "alpha" {
		t.Errorf("List() order = %v", all)
	}
	astronomers, _ := r.List(ctx, domain.RoleAstronomer)
	if len(astronomers) != 1 || astronomers[0].ID != "u2" {
		t.Errorf("List(astronomer) = %v", astronomers)
	}

	got.Status = domain.UserStatusDisabled
	got.Username = "renamed"
	if err := r.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := r.GetByID(ctx, "u1")
	if after.Status != domain.UserStatusDisabled {
		t.Errorf("Status = %q, want disabled", after.Status)
	}
	if after.Username != "alpha" {
		t.Errorf("Username changed to %q; usernames are immutable", after.Username)
	}
}
