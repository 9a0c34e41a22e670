package notes

import (
	"context"
	"path/filepath"
	"testing"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, 1, "keeps a flask in his lab coat")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID < 1 {
		t.Errorf("ID = %d, want assigned", created.ID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CharacterID != 1 || got.Content != created.Content {
		t.Errorf("Get() = %+v", got)
	}
}

func TestStoreCreateValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, 0, "content"); !apperrors.IsValidation(err) {
		t.Errorf("Create(character_id=0) error = %v, want validation", err)
	}
	if _, err := store.Create(ctx, 1, ""); !apperrors.IsValidation(err) {
		t.Errorf("Create(empty content) error = %v, want validation", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), 42); !apperrors.IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
}

func TestStoreListByCharacter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, 1, content); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := store.Create(ctx, 2, "other character"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	notes, total, err := store.ListByCharacter(ctx, 1, 2, 0)
	if err != nil {
		t.Fatalf("ListByCharacter() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(notes))
	}
	// Newest first
	if notes[0].Content != "third" || notes[1].Content != "second" {
		t.Errorf("notes = %q, %q, want newest first", notes[0].Content, notes[1].Content)
	}

	notes, total, err = store.ListByCharacter(ctx, 1, 2, 2)
	if err != nil {
		t.Fatalf("ListByCharacter(offset) error = %v", err)
	}
	if total != 3 || len(notes) != 1 || notes[0].Content != "first" {
		t.Errorf("offset page = %+v total = %d", notes, total)
	}
}

func TestStoreListEmpty(t *testing.T) {
	store := newTestStore(t)

	notes, total, err := store.ListByCharacter(context.Background(), 99, 10, 0)
	if err != nil {
		t.Fatalf("ListByCharacter() error = %v", err)
	}
	if total != 0 || len(notes) != 0 {
		t.Errorf("notes = %+v total = %d, want empty", notes, total)
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, 1, "original")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := store.Update(ctx, created.ID, "revised")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "revised" {
		t.Errorf("Content = %q, want revised", updated.Content)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("UpdatedAt should not go backwards")
	}

	if _, err := store.Update(ctx, 999, "x"); !apperrors.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not found", err)
	}
	if _, err := store.Update(ctx, created.ID, ""); !apperrors.IsValidation(err) {
		t.Errorf("Update(empty content) error = %v, want validation", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, 1, "ephemeral")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !apperrors.IsNotFound(err) {
		t.Errorf("Get(deleted) error = %v, want not found", err)
	}
	if err := store.Delete(ctx, created.ID); !apperrors.IsNotFound(err) {
		t.Errorf("Delete(missing) error = %v, want not found", err)
	}
}
