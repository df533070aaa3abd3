package onboarding

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestInMemoryRepositoryInsertGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	name := "Clínica Bela"
	rec, err := repo.Insert(ctx, ColumnWrite{
		ColName:         name,
		ColPhone:        int64(5511987654321),
		ColInstructions: Bucket{"greeting": "Olá"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("insert must assign an id")
	}
	if rec.Name == nil || *rec.Name != name {
		t.Errorf("name = %v", rec.Name)
	}
	if rec.Phone == nil || *rec.Phone != 5511987654321 {
		t.Errorf("phone = %v", rec.Phone)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Instructions["greeting"] != "Olá" {
		t.Errorf("instructions = %v", got.Instructions)
	}
}

func TestInMemoryRepositoryGetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.Get(context.Background(), 42); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v; want ErrRecordNotFound", err)
	}
}

func TestInMemoryRepositoryMerge(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	rec, err := repo.Insert(ctx, ColumnWrite{ColName: "Clínica Bela"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	merged, err := repo.Merge(ctx, rec.ID, func(existing *Record) ColumnWrite {
		if existing.Name == nil || *existing.Name != "Clínica Bela" {
			t.Errorf("merge sees stale record: %v", existing.Name)
		}
		return ColumnWrite{
			ColAddress:        "Rua A, 100",
			ColInstagramLinks: []string{"@clinica.bela"},
		}
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Name == nil || *merged.Name != "Clínica Bela" {
		t.Errorf("name lost on merge: %v", merged.Name)
	}
	if merged.Address == nil || *merged.Address != "Rua A, 100" {
		t.Errorf("address = %v", merged.Address)
	}
	if !reflect.DeepEqual(merged.InstagramLinks, []string{"@clinica.bela"}) {
		t.Errorf("links = %v", merged.InstagramLinks)
	}

	if _, err := repo.Merge(ctx, 999, func(*Record) ColumnWrite { return nil }); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v; want ErrRecordNotFound", err)
	}
}

func TestInMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	rec, err := repo.Insert(ctx, ColumnWrite{ColInstructions: Bucket{"greeting": "Olá"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	rec.Instructions["greeting"] = "mutated"

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Instructions["greeting"] != "Olá" {
		t.Errorf("stored record mutated through returned copy: %v", got.Instructions)
	}
}
