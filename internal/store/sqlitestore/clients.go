package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mindscribe/internal/records"
)

const clientColumns = "id, first_name, last_name, email, pronouns, modalities_json, client_type, client2_json"

type scanner interface{ Scan(dest ...any) error }

func scanClient(row scanner) (records.Client, error) {
	var (
		id          int64
		c           records.Client
		email       sql.NullString
		pronouns    sql.NullString
		modalities  string
		clientType  string
		client2JSON sql.NullString
	)
	if err := row.Scan(&id, &c.FirstName, &c.LastName, &email, &pronouns, &modalities, &clientType, &client2JSON); err != nil {
		return records.Client{}, err
	}
	c.ID = formatID(id)
	c.Email = email.String
	c.Pronouns = pronouns.String
	c.Type = records.ClientType(clientType)
	if err := json.Unmarshal([]byte(modalities), &c.Modalities); err != nil {
		return records.Client{}, fmt.Errorf("decode modalities for client %d: %w", id, err)
	}
	if c.Modalities == nil {
		c.Modalities = []string{}
	}
	if client2JSON.Valid && client2JSON.String != "" {
		var partner records.Partner
		if err := json.Unmarshal([]byte(client2JSON.String), &partner); err != nil {
			return records.Client{}, fmt.Errorf("decode client2 for client %d: %w", id, err)
		}
		c.Client2 = &partner
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]records.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []records.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (records.Client, error) {
	n, ok := parseID(id)
	if !ok {
		return records.Client{}, records.ClientNotFound(id)
	}
	c, err := scanClient(s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return records.Client{}, records.ClientNotFound(id)
	}
	if err != nil {
		return records.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *Store) CreateClient(ctx context.Context, draft records.ClientDraft) (records.Client, error) {
	client, err := records.NewClient("", draft)
	if err != nil {
		return records.Client{}, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := insertClientRow(ctx, tx, 0, client)
		if err != nil {
			return err
		}
		client.ID = formatID(id)
		return nil
	})
	if err != nil {
		return records.Client{}, err
	}
	return client, nil
}

// DeleteClient removes the client and its sessions in one transaction. The
// foreign key cascade covers sessions too; the explicit delete keeps the rule
// intact on databases opened without foreign_keys.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return records.ClientNotFound(id)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE client_id = ?`, n); err != nil {
			return fmt.Errorf("delete client sessions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, n)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete client rows affected: %w", err)
		}
		if affected == 0 {
			return records.ClientNotFound(id)
		}
		return nil
	})
}

func insertClient(ctx context.Context, tx *sql.Tx, id int64, c records.Client) error {
	_, err := insertClientRow(ctx, tx, id, c)
	return err
}

// insertClientRow writes c with the given id, or lets SQLite assign one when
// id is zero.
func insertClientRow(ctx context.Context, tx *sql.Tx, id int64, c records.Client) (int64, error) {
	modalities := c.Modalities
	if modalities == nil {
		modalities = []string{}
	}
	modalitiesJSON, err := json.Marshal(modalities)
	if err != nil {
		return 0, fmt.Errorf("encode modalities: %w", err)
	}
	var client2 any
	if c.Client2 != nil {
		raw, err := json.Marshal(c.Client2)
		if err != nil {
			return 0, fmt.Errorf("encode client2: %w", err)
		}
		client2 = string(raw)
	}
	var idArg any
	if id > 0 {
		idArg = id
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO clients (id, first_name, last_name, email, pronouns, modalities_json, client_type, client2_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idArg,
		c.FirstName,
		c.LastName,
		nullableString(c.Email),
		nullableString(c.Pronouns),
		string(modalitiesJSON),
		string(c.Type),
		client2,
		now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}
	inserted, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return inserted, nil
}
