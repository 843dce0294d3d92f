package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testSession(id string) Session {
	now := time.Now().UTC()
	return Session{
		ID:         id,
		AnalysisID: "analysis-1",
		Context:    DocumentContext{DocType: "Lease Agreement", UserRole: "tenant", Excerpt: "text"},
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Create(context.Background(), testSession("s-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AnalysisID != "analysis-1" || got.Context.DocType != "Lease Agreement" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreAppendPreservesOrder(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(context.Background(), testSession("s-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 4; i++ {
		_, err := store.AppendMessages(context.Background(), "s-1", Message{
			ID:      fmt.Sprintf("m-%d", i),
			Role:    RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("AppendMessages: %v", err)
		}
	}

	got, err := store.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got.Messages))
	}
	for i, msg := range got.Messages {
		if msg.ID != fmt.Sprintf("m-%d", i) {
			t.Fatalf("message %d out of order: %s", i, msg.ID)
		}
	}
}

func TestMemoryStoreEvictsOldestMessagesBeyondCap(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(context.Background(), testSession("s-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	total := MaxSessionMessages + 10
	for i := 0; i < total; i++ {
		if _, err := store.AppendMessages(context.Background(), "s-1", Message{ID: fmt.Sprintf("m-%d", i)}); err != nil {
			t.Fatalf("AppendMessages: %v", err)
		}
	}

	got, err := store.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Messages) != MaxSessionMessages {
		t.Fatalf("expected cap at %d messages, got %d", MaxSessionMessages, len(got.Messages))
	}
	if got.Messages[0].ID != fmt.Sprintf("m-%d", total-MaxSessionMessages) {
		t.Fatalf("expected oldest evicted first, head is %s", got.Messages[0].ID)
	}
	if got.Messages[len(got.Messages)-1].ID != fmt.Sprintf("m-%d", total-1) {
		t.Fatalf("expected newest message retained, tail is %s", got.Messages[len(got.Messages)-1].ID)
	}
}

func TestMemoryStoreEvictsSessionsBeyondCap(t *testing.T) {
	store := NewMemoryStore()

	total := MaxSessions + 5
	for i := 0; i < total; i++ {
		if err := store.Create(context.Background(), testSession(fmt.Sprintf("s-%d", i))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := store.Get(context.Background(), "s-0"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected oldest session evicted, got %v", err)
	}
	if _, err := store.Get(context.Background(), fmt.Sprintf("s-%d", total-1)); err != nil {
		t.Fatalf("expected newest session retained: %v", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(context.Background(), testSession("s-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.AppendMessages(context.Background(), "s-1", Message{ID: "m-0", Content: "original"}); err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}

	got, _ := store.Get(context.Background(), "s-1")
	got.Messages[0].Content = "mutated"

	again, _ := store.Get(context.Background(), "s-1")
	if again.Messages[0].Content != "original" {
		t.Fatal("store must not expose internal message slices")
	}
}
