package ingest

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mindscribe/internal/records"
)

// Clients lists clients ordered by last name. A non-empty query keeps only
// clients whose "first last" name contains it, ignoring case.
func (f *Flow) Clients(ctx context.Context, query string) ([]records.Client, error) {
	f.mu.Lock()
	closed := f.state == StateClosed
	f.mu.Unlock()
	if closed {
		return nil, ErrFlowClosed
	}

	clients, err := f.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return SearchClients(clients, query), nil
}

// SearchClients filters and sorts clients the way the selection step shows them.
func SearchClients(clients []records.Client, query string) []records.Client {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	out := make([]records.Client, 0, len(clients))
	for _, client := range clients {
		if needle != "" && !strings.Contains(fold.String(client.FirstName+" "+client.LastName), needle) {
			continue
		}
		out = append(out, client)
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b records.Client) int {
		return col.CompareString(a.LastName, b.LastName)
	})
	return out
}
