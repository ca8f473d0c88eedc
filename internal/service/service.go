package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
)

// Actor is the authenticated identity a mutation runs as. The zero value is the system.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// ref is the nullable creator/cashier reference stored on ledger rows and sales
func (a Actor) ref() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// label is what goes into the updated_by audit column
func (a Actor) label() string {
	if a.ID == uuid.Nil {
		return "system"
	}
	return a.ID.String()
}

func (a Actor) displayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return "System"
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.label(),
		"name":  a.displayName(),
		"email": a.Email,
	}
}

// EventPublisher fans events out to live clients (the websocket hub)
type EventPublisher interface {
	Publish(eventType string, payload map[string]interface{})
}

// ReportCache is the cache-aside store used for report results
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePattern(ctx context.Context, pattern string) error
	// Generation changes on every DeletePattern
	Generation(ctx context.Context) (uint64, error)
}

// Clock returns the current time; injected so sale numbers and report windows are testable
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

const reportKeyPattern = "report:*"

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// invalidateReports drops cached reports after a committed write. Failures are logged;
// stale entries then live until their TTL.
func invalidateReports(ctx context.Context, cache ReportCache) {
	if cache == nil {
		return
	}
	if err := cache.DeletePattern(context.WithoutCancel(ctx), reportKeyPattern); err != nil {
		log.Printf("[reports] cache invalidation failed: %v", err)
	}
}

// settle classifies a failed unit of work. A deadlock or serialization abort means a concurrent
// writer won, which is a Conflict; anything not already classified is a persistence failure.
func settle(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if database.IsLockContention(err) {
		conflict := apperr.Conflict("", "%s: aborted by a concurrent write, retry", fmt.Sprintf(format, args...))
		conflict.Err = err
		return conflict
	}
	return apperr.Wrap(err, format, args...)
}
