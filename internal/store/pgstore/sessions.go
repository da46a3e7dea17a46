package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"mindscribe/internal/records"
)

var sessionColumns = []string{"id", "client_id", "session_date", "session_time", "session_type", "duration", "title", "description", "transcript", "private_note"}

func scanSession(row pgx.Row) (records.Session, error) {
	var (
		id          int64
		clientID    int64
		s           records.Session
		duration    *int
		transcript  []byte
		privateNote *string
	)
	if err := row.Scan(&id, &clientID, &s.Date, &s.Time, &s.Type, &duration, &s.Title, &s.Description, &transcript, &privateNote); err != nil {
		return records.Session{}, err
	}
	s.ID = formatID(id)
	s.ClientID = formatID(clientID)
	if duration != nil {
		s.Duration = *duration
	}
	s.PrivateNote = deref(privateNote)
	if len(transcript) > 0 {
		if err := json.Unmarshal(transcript, &s.Transcript); err != nil {
			return records.Session{}, fmt.Errorf("decode transcript for session %d: %w", id, err)
		}
	}
	if s.Transcript == nil {
		s.Transcript = []records.TranscriptEntry{}
	}
	return s, nil
}

func (s *Store) ListSessions(ctx context.Context, clientID string) ([]records.Session, error) {
	builder := psql.Select(sessionColumns...).From("sessions").OrderBy("id")
	if clientID != "" {
		n, ok := parseID(clientID)
		if !ok {
			return []records.Session{}, nil
		}
		builder = builder.Where(sq.Eq{"client_id": n})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []records.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (records.Session, error) {
	n, ok := parseID(id)
	if !ok {
		return records.Session{}, records.SessionNotFound(id)
	}
	return getSession(ctx, s.db, n, id, "")
}

func getSession(ctx context.Context, q querier, n int64, id, suffix string) (records.Session, error) {
	builder := psql.Select(sessionColumns...).From("sessions").Where(sq.Eq{"id": n})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return records.Session{}, fmt.Errorf("build get session: %w", err)
	}
	sess, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		return records.Session{}, mapError(err, records.SessionNotFound(id))
	}
	return sess, nil
}

func (s *Store) CreateSession(ctx context.Context, draft records.SessionDraft) (records.Session, error) {
	session, err := records.NewSession("", draft)
	if err != nil {
		return records.Session{}, err
	}
	clientID, ok := parseID(session.ClientID)
	if !ok {
		return records.Session{}, records.ClientNotFound(session.ClientID)
	}
	err = s.runInTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Select("id").From("clients").Where(sq.Eq{"id": clientID}).Suffix("FOR SHARE").ToSql()
		if err != nil {
			return fmt.Errorf("build client lookup: %w", err)
		}
		var found int64
		if err := tx.QueryRow(ctx, query, args...).Scan(&found); err != nil {
			return mapError(err, records.ClientNotFound(session.ClientID))
		}
		id, err := insertSession(ctx, tx, 0, session)
		if err != nil {
			return err
		}
		session.ID = formatID(id)
		return nil
	})
	if err != nil {
		return records.Session{}, err
	}
	return session, nil
}

func (s *Store) UpdateSession(ctx context.Context, id string, patch records.SessionPatch) (records.Session, error) {
	if err := patch.Validate(); err != nil {
		return records.Session{}, err
	}
	n, ok := parseID(id)
	if !ok {
		return records.Session{}, records.SessionNotFound(id)
	}
	var updated records.Session
	err := s.runInTx(ctx, func(tx pgx.Tx) error {
		current, err := getSession(ctx, tx, n, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		transcript, err := encodeTranscript(updated.Transcript)
		if err != nil {
			return err
		}
		query, args, err := psql.Update("sessions").
			Set("session_date", updated.Date).
			Set("session_time", updated.Time).
			Set("session_type", updated.Type).
			Set("duration", nullableInt(updated.Duration)).
			Set("title", updated.Title).
			Set("description", updated.Description).
			Set("transcript", transcript).
			Set("private_note", nullableString(updated.PrivateNote)).
			Where(sq.Eq{"id": n}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update session: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return mapError(fmt.Errorf("update session: %w", err), records.SessionNotFound(id))
		}
		return nil
	})
	if err != nil {
		return records.Session{}, err
	}
	return updated, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return records.SessionNotFound(id)
	}
	query, args, err := psql.Delete("sessions").Where(sq.Eq{"id": n}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete session: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return records.SessionNotFound(id)
	}
	return nil
}

func insertSession(ctx context.Context, q querier, id int64, sess records.Session) (int64, error) {
	clientID, ok := parseID(sess.ClientID)
	if !ok {
		return 0, records.ClientNotFound(sess.ClientID)
	}
	transcript, err := encodeTranscript(sess.Transcript)
	if err != nil {
		return 0, err
	}
	columns := []string{"client_id", "session_date", "session_time", "session_type", "duration", "title", "description", "transcript", "private_note"}
	values := []any{clientID, sess.Date, sess.Time, sess.Type, nullableInt(sess.Duration), sess.Title, sess.Description, transcript, nullableString(sess.PrivateNote)}
	if id > 0 {
		columns = append([]string{"id"}, columns...)
		values = append([]any{id}, values...)
	}
	query, args, err := psql.Insert("sessions").Columns(columns...).Values(values...).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert session: %w", err)
	}
	var inserted int64
	if err := q.QueryRow(ctx, query, args...).Scan(&inserted); err != nil {
		return 0, mapError(fmt.Errorf("insert session: %w", err), records.ClientNotFound(sess.ClientID))
	}
	return inserted, nil
}

func encodeTranscript(entries []records.TranscriptEntry) ([]byte, error) {
	if entries == nil {
		entries = []records.TranscriptEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return raw, nil
}
