package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"mindscribe/internal/records"
)

var clientColumns = []string{"id", "first_name", "last_name", "email", "pronouns", "modalities", "client_type", "client2"}

func scanClient(row pgx.Row) (records.Client, error) {
	var (
		id         int64
		c          records.Client
		email      *string
		pronouns   *string
		modalities []string
		clientType string
		client2    []byte
	)
	if err := row.Scan(&id, &c.FirstName, &c.LastName, &email, &pronouns, &modalities, &clientType, &client2); err != nil {
		return records.Client{}, err
	}
	c.ID = formatID(id)
	c.Email = deref(email)
	c.Pronouns = deref(pronouns)
	c.Type = records.ClientType(clientType)
	c.Modalities = modalities
	if c.Modalities == nil {
		c.Modalities = []string{}
	}
	if len(client2) > 0 && string(client2) != "null" {
		var partner records.Partner
		if err := json.Unmarshal(client2, &partner); err != nil {
			return records.Client{}, fmt.Errorf("decode client2 for client %d: %w", id, err)
		}
		c.Client2 = &partner
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]records.Client, error) {
	query, args, err := psql.Select(clientColumns...).From("clients").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list clients: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
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
	query, args, err := psql.Select(clientColumns...).From("clients").Where(sq.Eq{"id": n}).ToSql()
	if err != nil {
		return records.Client{}, fmt.Errorf("build get client: %w", err)
	}
	c, err := scanClient(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return records.Client{}, mapError(err, records.ClientNotFound(id))
	}
	return c, nil
}

func (s *Store) CreateClient(ctx context.Context, draft records.ClientDraft) (records.Client, error) {
	client, err := records.NewClient("", draft)
	if err != nil {
		return records.Client{}, err
	}
	id, err := insertClient(ctx, s.db, 0, client)
	if err != nil {
		return records.Client{}, err
	}
	client.ID = formatID(id)
	return client, nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return records.ClientNotFound(id)
	}
	return s.runInTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Delete("sessions").Where(sq.Eq{"client_id": n}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete sessions: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete client sessions: %w", err)
		}
		query, args, err = psql.Delete("clients").Where(sq.Eq{"id": n}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete client: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return records.ClientNotFound(id)
		}
		return nil
	})
}

// insertClient writes c and returns its id. A zero id lets the identity
// column assign one.
func insertClient(ctx context.Context, q querier, id int64, c records.Client) (int64, error) {
	modalities := c.Modalities
	if modalities == nil {
		modalities = []string{}
	}
	var client2 []byte
	if c.Client2 != nil {
		raw, err := json.Marshal(c.Client2)
		if err != nil {
			return 0, fmt.Errorf("encode client2: %w", err)
		}
		client2 = raw
	}
	columns := []string{"first_name", "last_name", "email", "pronouns", "modalities", "client_type", "client2"}
	values := []any{c.FirstName, c.LastName, nullableString(c.Email), nullableString(c.Pronouns), modalities, string(c.Type), client2}
	if id > 0 {
		columns = append([]string{"id"}, columns...)
		values = append([]any{id}, values...)
	}
	query, args, err := psql.Insert("clients").Columns(columns...).Values(values...).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert client: %w", err)
	}
	var inserted int64
	if err := q.QueryRow(ctx, query, args...).Scan(&inserted); err != nil {
		return 0, mapError(fmt.Errorf("insert client: %w", err), records.ClientNotFound(c.ID))
	}
	return inserted, nil
}
