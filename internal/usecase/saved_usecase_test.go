package usecase

import (
	"context"
	"errors"
	"testing"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/saved"

	"github.com/google/uuid"
)

func TestSavedUsecase_Save(t *testing.T) {
	repo := &fakeSavedRepo{}
	concorsi := &fakeConcorsoRepo{rows: []concorso.Concorso{{ID: "c1", Titolo: "Istruttore"}}}
	uc := NewSavedUsecase(repo, concorsi, nil)
	userID := uuid.New()

	if _, err := uc.Save(context.Background(), userID, "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Save(context.Background(), userID, "c1"); err != nil {
		t.Fatalf("saving twice should succeed, got %v", err)
	}
	if len(repo.recs) != 1 {
		t.Fatalf("expected a single record, got %d", len(repo.recs))
	}

	if _, err := uc.Save(context.Background(), userID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.Save(context.Background(), uuid.Nil, "c1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	ok, err := uc.IsSaved(context.Background(), userID, "c1")
	if err != nil || !ok {
		t.Fatalf("expected saved, got ok=%v err=%v", ok, err)
	}
	if err := uc.Unsave(context.Background(), userID, "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Unsave(context.Background(), userID, "c1"); err != nil {
		t.Fatalf("removing twice should succeed, got %v", err)
	}
	ok, _ = uc.IsSaved(context.Background(), userID, "c1")
	if ok {
		t.Fatalf("expected not saved after removal")
	}
}

func TestSavedUsecase_ListKeepsRemovedConcorsi(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSavedRepo{recs: []saved.Record{
		{ID: uuid.New(), UserID: userID, ConcorsoID: "gone"},
		{ID: uuid.New(), UserID: userID, ConcorsoID: "c1"},
		{ID: uuid.New(), UserID: uuid.New(), ConcorsoID: "c1"},
	}}
	concorsi := &fakeConcorsoRepo{rows: []concorso.Concorso{{ID: "c1", Titolo: "Istruttore", Ente: "Comune di Bari"}}}
	uc := NewSavedUsecase(repo, concorsi, nil)

	items, err := uc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Concorso.ID != "c1" || items[0].Missing || items[0].Concorso.Slug == "" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if !items[1].Missing || items[1].Concorso.ID != "gone" || items[1].Concorso.Stato != concorso.StatoClosed {
		t.Fatalf("expected placeholder for removed concorso, got %+v", items[1])
	}
}
