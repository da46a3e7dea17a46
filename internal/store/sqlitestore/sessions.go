package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mindscribe/internal/records"
)

const sessionColumns = "id, client_id, session_date, session_time, session_type, duration, title, description, transcript_json, private_note"

func scanSession(row scanner) (records.Session, error) {
	var (
		id          int64
		clientID    int64
		s           records.Session
		duration    sql.NullInt64
		transcript  string
		privateNote sql.NullString
	)
	if err := row.Scan(&id, &clientID, &s.Date, &s.Time, &s.Type, &duration, &s.Title, &s.Description, &transcript, &privateNote); err != nil {
		return records.Session{}, err
	}
	s.ID = formatID(id)
	s.ClientID = formatID(clientID)
	s.Duration = int(duration.Int64)
	s.PrivateNote = privateNote.String
	if err := json.Unmarshal([]byte(transcript), &s.Transcript); err != nil {
		return records.Session{}, fmt.Errorf("decode transcript for session %d: %w", id, err)
	}
	if s.Transcript == nil {
		s.Transcript = []records.TranscriptEntry{}
	}
	return s, nil
}

func (s *Store) ListSessions(ctx context.Context, clientID string) ([]records.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if clientID != "" {
		n, ok := parseID(clientID)
		if !ok {
			return []records.Session{}, nil
		}
		query += ` WHERE client_id = ?`
		args = append(args, n)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	return getSession(ctx, s.db, n, id)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSession(ctx context.Context, q rowQueryer, n int64, id string) (records.Session, error) {
	sess, err := scanSession(q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return records.Session{}, records.SessionNotFound(id)
	}
	if err != nil {
		return records.Session{}, fmt.Errorf("get session: %w", err)
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
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM clients WHERE id = ?`, clientID).Scan(&exists); err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if exists == 0 {
			return records.ClientNotFound(session.ClientID)
		}
		id, err := insertSessionRow(ctx, tx, 0, session)
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
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getSession(ctx, tx, n, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		transcript, err := encodeTranscript(updated.Transcript)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions
             SET session_date = ?, session_time = ?, session_type = ?, duration = ?,
                 title = ?, description = ?, transcript_json = ?, private_note = ?
             WHERE id = ?`,
			updated.Date,
			updated.Time,
			updated.Type,
			nullableInt(updated.Duration),
			updated.Title,
			updated.Description,
			transcript,
			nullableString(updated.PrivateNote),
			n,
		); err != nil {
			return fmt.Errorf("update session: %w", err)
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
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, n)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return records.SessionNotFound(id)
	}
	return nil
}

func insertSession(ctx context.Context, tx *sql.Tx, id int64, sess records.Session) error {
	_, err := insertSessionRow(ctx, tx, id, sess)
	return err
}

func insertSessionRow(ctx context.Context, tx *sql.Tx, id int64, sess records.Session) (int64, error) {
	clientID, ok := parseID(sess.ClientID)
	if !ok {
		return 0, records.ClientNotFound(sess.ClientID)
	}
	transcript, err := encodeTranscript(sess.Transcript)
	if err != nil {
		return 0, err
	}
	var idArg any
	if id > 0 {
		idArg = id
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (
            id, client_id, session_date, session_time, session_type, duration,
            title, description, transcript_json, private_note, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idArg,
		clientID,
		sess.Date,
		sess.Time,
		sess.Type,
		nullableInt(sess.Duration),
		sess.Title,
		sess.Description,
		transcript,
		nullableString(sess.PrivateNote),
		now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	inserted, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return inserted, nil
}

func encodeTranscript(entries []records.TranscriptEntry) (string, error) {
	if entries == nil {
		entries = []records.TranscriptEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return string(raw), nil
}
