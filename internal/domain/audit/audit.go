package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionRunFinished = "payroll.run.finished"
	EntityPayrollRun  = "payroll_run"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Action     string
	EntityType string
	Actor      string
}

func (f Filter) Matches(evt Event) bool {
	return (f.Action == "" || f.Action == evt.Action) &&
		(f.EntityType == "" || f.EntityType == evt.EntityType) &&
		(f.Actor == "" || f.Actor == evt.Actor)
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actor, action, entityType, entityID string, after any) error {
	var afterJSON []byte
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor, action, entity_type, entity_id, after_json)
    VALUES ($1,$2,$3,$4,$5)
  `, actor, action, entityType, entityID, afterJSON)
	return err
}

// List returns up to limit matching events, newest first.
func (s *Service) List(ctx context.Context, filter Filter, limit int) ([]Event, error) {
	query, args := buildQuery(filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.CreatedAt, &evt.After); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildQuery(filter Filter) (string, []any) {
	query := "SELECT id::text, COALESCE(actor, ''), action, entity_type, entity_id, created_at, after_json FROM audit_events WHERE true"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.Actor != "" {
		args = append(args, filter.Actor)
		query += fmt.Sprintf(" AND actor = $%d", len(args))
	}
	return query, args
}
