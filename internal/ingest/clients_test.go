package ingest_test

import (
	"context"
	"testing"

	"mindscribe/internal/ingest"
	"mindscribe/internal/records"
	"mindscribe/internal/testsupport"
)

func lastNames(clients []records.Client) []string {
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.LastName)
	}
	return names
}

func TestClientsSortedByLastName(t *testing.T) {
	st := testsupport.SeededStore(t)
	testsupport.MustClient(t, st, "Anna", "Zimmer")
	testsupport.MustClient(t, st, "Bob", "adams")
	flow := newFlow(t, st, &testsupport.StubTranscriber{})

	clients, err := flow.Clients(context.Background(), "")
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	got := lastNames(clients)
	want := []string{"adams", "Garcia Sanchez", "Pasano", "Zimmer"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSearchClientsMatchesFullNameIgnoringCase(t *testing.T) {
	clients := []records.Client{
		{ID: "1", FirstName: "Rhonda", LastName: "Garcia Sanchez"},
		{ID: "2", FirstName: "Tony", LastName: "Pasano"},
		{ID: "3", FirstName: "Élodie", LastName: "Durand"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"3", "1", "2"}},
		{"rhonda g", []string{"1"}},
		{"  TONY ", []string{"2"}},
		{"ÉLODIE", []string{"3"}},
		{"a s", []string{"1"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		got := ingest.SearchClients(clients, tt.query)
		if len(got) != len(tt.want) {
			t.Fatalf("query %q: got %d clients, want %v", tt.query, len(got), tt.want)
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Fatalf("query %q: position %d = %s, want %s", tt.query, i, got[i].ID, id)
			}
		}
	}
}
