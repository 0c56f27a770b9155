package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/store"
)

func TestCreateAndGetLibrary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := &domain.Library{Syncable: syncable("lib-1", time.Now()), Name: "My Podcasts", MediaType: domain.MediaTypePodcast}
	if err := s.CreateLibrary(ctx, lib); err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}

	got, err := s.GetLibrary(ctx, "lib-1")
	if err != nil {
		t.Fatalf("GetLibrary: %v", err)
	}
	if got.Name != lib.Name {
		t.Errorf("Name: got %q, want %q", got.Name, lib.Name)
	}
	if !got.IsPodcast() {
		t.Errorf("MediaType: got %q, want podcast", got.MediaType)
	}
	if !got.CreatedAt.Equal(lib.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, lib.CreatedAt)
	}
}

func TestCreateLibrary_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := &domain.Library{Syncable: syncable("lib-1", time.Now()), Name: "Books", MediaType: domain.MediaTypeBook}
	if err := s.CreateLibrary(ctx, lib); err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	err := s.CreateLibrary(ctx, lib)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetLibrary_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetLibrary(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListLibraries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"lib-b", "lib-a"} {
		lib := &domain.Library{Syncable: syncable(id, base.Add(time.Duration(i)*time.Minute)), Name: id, MediaType: domain.MediaTypeBook}
		if err := s.CreateLibrary(ctx, lib); err != nil {
			t.Fatalf("CreateLibrary(%s): %v", id, err)
		}
	}

	libs, err := s.ListLibraries(ctx)
	if err != nil {
		t.Fatalf("ListLibraries: %v", err)
	}
	if len(libs) != 2 || libs[0].ID != "lib-b" || libs[1].ID != "lib-a" {
		t.Errorf("expected creation order, got %+v", libs)
	}
}
