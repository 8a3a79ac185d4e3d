// Package postgres persists the event trail in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE ledger_events (
//	    seq          BIGINT PRIMARY KEY,
//	    kind         TEXT NOT NULL,
//	    timestamp    TIMESTAMPTZ NOT NULL,
//	    actor        TEXT NOT NULL,
//	    subject      TEXT NOT NULL DEFAULT '',
//	    donation_id  BIGINT NOT NULL DEFAULT 0,
//	    reason       TEXT NOT NULL DEFAULT '',
//	    request_id   TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX ledger_events_donation_idx ON ledger_events (donation_id, seq);
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/events"
)

// Store implements events.Store on a PostgreSQL table. The publisher's
// sequence number is the primary key, so a retried append of the same event
// cannot produce a duplicate row.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one event. ON CONFLICT DO NOTHING keeps the append idempotent
// per sequence number.
func (s *Store) Append(ctx context.Context, event events.Event) error {
	query := `
		INSERT INTO ledger_events (seq, kind, timestamp, actor, subject, donation_id, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (seq) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Seq,
		string(event.Kind),
		event.Timestamp,
		event.Actor.String(),
		event.Subject.String(),
		uint64(event.DonationID),
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// List returns the full trail in sequence order.
func (s *Store) List(ctx context.Context) ([]events.Event, error) {
	query := `
		SELECT seq, kind, timestamp, actor, subject, donation_id, reason, request_id
		FROM ledger_events
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListByDonation returns one donation's events in sequence order.
func (s *Store) ListByDonation(ctx context.Context, donationID id.DonationID) ([]events.Event, error) {
	query := `
		SELECT seq, kind, timestamp, actor, subject, donation_id, reason, request_id
		FROM ledger_events
		WHERE donation_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uint64(donationID))
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// LastSeq returns the highest stored sequence number, or zero for an empty
// trail. The publisher resumes from here after a restart.
func (s *Store) LastSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM ledger_events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last event seq: %w", err)
	}
	return seq, nil
}

func (s *Store) scanEvents(rows *sql.Rows) ([]events.Event, error) {
	var out []events.Event
	for rows.Next() {
		var (
			event      events.Event
			kind       string
			actor      string
			subject    string
			donationID uint64
		)
		err := rows.Scan(
			&event.Seq,
			&kind,
			&event.Timestamp,
			&actor,
			&subject,
			&donationID,
			&event.Reason,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		event.Kind = events.Kind(kind)
		event.Actor = id.Identity(actor)
		event.Subject = id.Identity(subject)
		event.DonationID = id.DonationID(donationID)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return out, nil
}
