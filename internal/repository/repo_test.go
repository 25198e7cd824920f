package repository

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sonroyaalmerol/fairbeat/internal/config"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := OpenDB(&config.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepo(db)
}

func TestSettings_UpsertAndUpdate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	set, err := repo.UpsertSettings(ctx, "guild-1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if set.PlaylistLimit != 50 || set.MaxTracks != 10000 || set.DefaultQueuePageSize != 10 {
		t.Errorf("defaults = %d/%d/%d, want 50/10000/10", set.PlaylistLimit, set.MaxTracks, set.DefaultQueuePageSize)
	}

	set.PlaylistLimit = 20
	set.MaxTracks = 500
	set.QAddEphemeral = true
	if err := repo.UpdateSettings(ctx, set); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetSettings(ctx, "guild-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PlaylistLimit != 20 || got.MaxTracks != 500 || !got.QAddEphemeral {
		t.Errorf("settings after update = %+v", got)
	}

	// upsert must not reset existing rows
	again, err := repo.UpsertSettings(ctx, "guild-1")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if again.MaxTracks != 500 {
		t.Errorf("re-upsert reset max tracks to %d", again.MaxTracks)
	}
}

func TestFavorites_Lifecycle(t *testing.T) {
	repo := testRepo(t)
	favs := NewFavoritesService(repo)
	ctx := context.Background()

	if err := favs.Create(ctx, "guild-1", "alice", "  jam  ", "some playlist url"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// trimmed name resolves
	f, err := favs.Use(ctx, "guild-1", "jam")
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if f.Query != "some playlist url" || f.Author != "alice" {
		t.Errorf("favorite = %+v", f)
	}

	// duplicate names are rejected by the unique index
	if err := favs.Create(ctx, "guild-1", "bob", "jam", "other"); err == nil {
		t.Error("duplicate favorite name accepted")
	}

	// same name in another guild is fine
	if err := favs.Create(ctx, "guild-2", "bob", "jam", "other"); err != nil {
		t.Errorf("cross-guild name rejected: %v", err)
	}

	items, err := favs.List(ctx, "guild-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("list returned %d favorites, want 1", len(items))
	}

	if err := favs.Remove(ctx, "guild-1", "jam"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := favs.Remove(ctx, "guild-1", "jam"); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("second remove err = %v, want ErrFavoriteNotFound", err)
	}
	if _, err := favs.Use(ctx, "guild-1", "jam"); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("use after remove err = %v, want ErrFavoriteNotFound", err)
	}
}

func TestFavorites_RejectsBlankInput(t *testing.T) {
	repo := testRepo(t)
	favs := NewFavoritesService(repo)
	ctx := context.Background()

	if err := favs.Create(ctx, "guild-1", "alice", "   ", "query"); !errors.Is(err, ErrFavoriteEmpty) {
		t.Errorf("blank name err = %v, want ErrFavoriteEmpty", err)
	}
	if err := favs.Create(ctx, "guild-1", "alice", "name", ""); !errors.Is(err, ErrFavoriteEmpty) {
		t.Errorf("blank query err = %v, want ErrFavoriteEmpty", err)
	}
}
