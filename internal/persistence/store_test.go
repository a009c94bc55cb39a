package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, KeyTickets); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store: err = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, KeyTickets, []byte(`[1]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, KeyTickets, []byte(`[1,2]`)); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	got, err := store.Load(ctx, KeyTickets)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Load = %s, want [1,2]", got)
	}

	if _, err := store.Load(ctx, KeyComments); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(comments): err = %v, want ErrNotFound", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	payload := []byte("abc")
	if err := store.Save(ctx, "k", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}
	payload[0] = 'z'

	got, _ := store.Load(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %s", got)
	}
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "helpdesk_test.db")
	store, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	exerciseStore(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen bolt store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), KeyTickets)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Load after reopen = %s, want [1,2]", got)
	}
}
