package teamstore_test

import (
	"testing"

	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/pastoralhub/internal/testutil"
)

func TestStore_CreateUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team, err := store.Create(ctx, models.Team{
		Name:        "Equipe Domingo 10h",
		CommunityID: "matriz",
		MemberIDs:   []string{"a", "b", "a", ""},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(team.MemberIDs) != 2 {
		t.Errorf("expected deduplicated member ids, got %v", team.MemberIDs)
	}

	name := "Equipe Domingo 19h"
	if err := store.Update(ctx, team.ID, teamstore.Patch{Name: &name}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != name {
		t.Errorf("expected name %q, got %q", name, got.Name)
	}
	if len(got.MemberIDs) != 2 || got.CommunityID != "matriz" {
		t.Errorf("members/community should be untouched, got %+v", got)
	}

	n, err := store.Delete(ctx, team.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = (%d, %v), want (1, nil)", n, err)
	}
	all, _ := store.List(ctx)
	if len(all) != 0 {
		t.Errorf("expected no teams, got %d", len(all))
	}
}

func TestStore_Create_RequiresName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Team{Name: "   ", CommunityID: "matriz"}); err == nil {
		t.Error("expected error for blank name")
	}
}
