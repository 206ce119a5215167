package fixture

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"paycore/internal/domain/audit"
)

// AuditTrail keeps audit events in memory for fixture runs.
type AuditTrail struct {
	mu     sync.Mutex
	events []audit.Event
	now    func() time.Time
}

func NewAuditTrail() *AuditTrail {
	return &AuditTrail{now: time.Now}
}

func (a *AuditTrail) Record(ctx context.Context, actor, action, entityType, entityID string, after any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var payload json.RawMessage
	if after != nil {
		raw, err := json.Marshal(after)
		if err != nil {
			return err
		}
		payload = raw
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, audit.Event{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  a.now().UTC(),
		After:      payload,
	})
	return nil
}

// List returns up to limit matching events, newest first.
func (a *AuditTrail) List(ctx context.Context, filter audit.Filter, limit int) ([]audit.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []audit.Event{}
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		if filter.Matches(a.events[i]) {
			out = append(out, a.events[i])
		}
	}
	return out, nil
}
