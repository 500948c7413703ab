package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shudian-next/internal/config"
)

func TestDraftOperationsFailLoudWhenDisabled(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}

	draft := &CheckoutDraft{Token: "t1", CreatedAt: time.Now()}
	if err := StageDraft(context.Background(), draft, time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("stage want ErrUnavailable got %v", err)
	}
	if _, err := FetchDraft(context.Background(), "t1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("fetch want ErrUnavailable got %v", err)
	}
	if err := DiscardDraft(context.Background(), "t1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("discard want ErrUnavailable got %v", err)
	}
}

func TestDraftKey(t *testing.T) {
	if got := draftKey("abc"); got != "checkout:draft:abc" {
		t.Fatalf("draft key want checkout:draft:abc got %s", got)
	}
}
