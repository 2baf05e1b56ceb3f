package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
)

// AppendEvents validates, sequences, chains, and signs events inside the
// surrounding transaction. Private events are refused by a public journal.
func (t *txn) AppendEvents(ctx context.Context, events ...event.Event) ([]event.Event, error) {
	out := make([]event.Event, 0, len(events))
	for i, evt := range events {
		validated, err := t.store.registry.ValidateForAppend(evt, t.store.public)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		evt = validated
		if evt.Timestamp.IsZero() {
			evt.Timestamp = t.store.now()
		}
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

		var (
			lastSeq   int64
			prevChain string
		)
		err = t.q.QueryRowContext(ctx,
			`SELECT seq, chain_hash FROM events WHERE launch_id = ? ORDER BY seq DESC LIMIT 1`, evt.LaunchID,
		).Scan(&lastSeq, &prevChain)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load previous event: %w", err)
		}
		evt.Seq = uint64(lastSeq) + 1

		sealed, err := integrity.Seal(t.store.keyring, evt, prevChain)
		if err != nil {
			return nil, err
		}
		if _, err := t.q.ExecContext(ctx, `
INSERT INTO events (
    launch_id, seq, event_hash, prev_hash, chain_hash, signature_key_id, signature,
    timestamp, event_type, request_id, actor_id, entity_type, entity_id, payload_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sealed.LaunchID, int64(sealed.Seq), sealed.Hash, sealed.PrevHash, sealed.ChainHash,
			sealed.SignatureKeyID, sealed.Signature, toMillis(sealed.Timestamp), string(sealed.Type),
			sealed.RequestID, sealed.ActorID, sealed.EntityType, sealed.EntityID, payloadOrEmpty(sealed.PayloadJSON),
		); err != nil {
			if isConstraintError(err) {
				return nil, fmt.Errorf("%w: append event %d: %v", storage.ErrConflict, sealed.Seq, err)
			}
			return nil, fmt.Errorf("append event: %w", err)
		}
		out = append(out, sealed)
	}
	return out, nil
}

// ListEvents pages a launch journal in sequence order.
func (s *Store) ListEvents(ctx context.Context, launchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = storage.DefaultEventPageSize
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT launch_id, seq, event_hash, prev_hash, chain_hash, signature_key_id, signature,
       timestamp, event_type, request_id, actor_id, entity_type, entity_id, payload_json
FROM events WHERE launch_id = ? AND seq > ? ORDER BY seq LIMIT ?`, launchID, int64(afterSeq), limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			seq       int64
			timestamp int64
			eventType string
		)
		if err := rows.Scan(
			&evt.LaunchID, &seq, &evt.Hash, &evt.PrevHash, &evt.ChainHash, &evt.SignatureKeyID, &evt.Signature,
			&timestamp, &eventType, &evt.RequestID, &evt.ActorID, &evt.EntityType, &evt.EntityID, &evt.PayloadJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Timestamp = fromMillis(timestamp)
		evt.Type = event.Type(eventType)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

func payloadOrEmpty(raw []byte) []byte {
	if raw == nil {
		return []byte{}
	}
	return raw
}
