package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

func TestInMemoryEntityRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryEntityRepo()

	for _, e := range []struct {
		account string
		m       models.EntityMetrics
	}{
		{"acct-1", models.EntityMetrics{ID: "c-2", Spend: 200}},
		{"acct-1", models.EntityMetrics{ID: "c-1", Spend: 100}},
		{"acct-2", models.EntityMetrics{ID: "c-3", Spend: 300}},
	} {
		if err := repo.PutEntity(e.account, e.m); err != nil {
			t.Fatalf("put %s: %v", e.m.ID, err)
		}
	}
	if err := repo.PutEntity("acct-1", models.EntityMetrics{}); err == nil {
		t.Fatal("expected an error for an entity without id")
	}

	got, err := repo.ListByAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-1" || got[1].ID != "c-2" {
		t.Fatalf("unexpected account entities %+v", got)
	}

	var spend float64
	if err := repo.EachInAccount(ctx, "acct-1", func(m models.EntityMetrics) error {
		spend += m.Spend
		return nil
	}); err != nil {
		t.Fatalf("each: %v", err)
	}
	if spend != 300 {
		t.Fatalf("expected streamed spend 300, got %v", spend)
	}

	stop := errors.New("stop")
	calls := 0
	err = repo.EachInAccount(ctx, "acct-1", func(models.EntityMetrics) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected iteration to stop after the first error, got %v after %d calls", err, calls)
	}

	if _, err := repo.GetEntity(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	m, err := repo.GetEntity(ctx, "c-3")
	if err != nil || m.Spend != 300 {
		t.Fatalf("get: %+v, %v", m, err)
	}
}

func TestInMemoryInsights(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryEntityRepo()
	base := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

	repo.PutInsight(models.GeneratedInsight{ID: "i-1", EntityID: "c-1", CreatedAt: base})
	repo.PutInsight(models.GeneratedInsight{ID: "i-2", EntityID: "c-1", CreatedAt: base.Add(time.Hour)})
	repo.PutInsight(models.GeneratedInsight{ID: "i-3", EntityID: "c-2", CreatedAt: base})
	if err := repo.PutInsight(models.GeneratedInsight{}); err == nil {
		t.Fatal("expected an error for an insight without id")
	}

	list, _ := repo.ListByEntity(ctx, "c-1")
	if len(list) != 2 || list[0].ID != "i-2" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if _, err := repo.GetInsight(ctx, "i-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemorySegmentRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemorySegmentRepo()

	empty, err := repo.RealSegments(ctx, "c-1")
	if err != nil || !empty.Empty() {
		t.Fatalf("expected no data for an unknown entity, got %+v, %v", empty, err)
	}

	records := []models.SegmentRecord{{Label: "Feed", Spend: 80}}
	repo.Put("c-1", models.DimPlacements, records)
	repo.Put("c-1", models.DimKeywords, records)
	records[0].Label = "mutated"

	data, _ := repo.RealSegments(ctx, "c-1")
	if got := data.For(models.DimPlacements); len(got) != 1 || got[0].Label != "Feed" {
		t.Fatalf("unexpected placements %+v", got)
	}
	if data.For(models.DimKeywords) != nil {
		t.Fatal("keywords are not a real-data dimension")
	}

	if none, _ := (NoSegments{}).RealSegments(ctx, "c-1"); !none.Empty() {
		t.Fatal("NoSegments must be empty")
	}
}
