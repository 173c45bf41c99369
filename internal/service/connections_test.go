package service_test

import (
	"context"
	"testing"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
)

func TestSendRequestRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	_, err := f.connections.Send(ctx, a.ID, a.ID)
	wantCode(t, err, apperr.CodeInvalidArgument)

	_, err = f.connections.Send(ctx, a.ID, "missing")
	wantCode(t, err, apperr.CodeNotFound)
	_, err = f.connections.Send(ctx, "missing", b.ID)
	wantCode(t, err, apperr.CodeNotFound)

	c, err := f.connections.Send(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if c.Status != models.ConnectionPending || c.Receiver == nil || c.Receiver.ID != b.ID {
		t.Fatalf("unexpected connection: %#v", c)
	}

	// both directions of the same pair are blocked
	_, err = f.connections.Send(ctx, a.ID, b.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)
	_, err = f.connections.Send(ctx, b.ID, a.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)

	// a rejected pair stays blocked
	if _, err := f.connections.Respond(ctx, b.ID, c.ID, models.ConnectionRejected); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	_, err = f.connections.Send(ctx, a.ID, b.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)
}

func TestRespondClassifiesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	c, err := f.connections.Send(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	tests := []struct {
		name   string
		userID string
		connID string
		status models.ConnectionStatus
		code   apperr.Code
	}{
		{"bad status", b.ID, c.ID, models.ConnectionPending, apperr.CodeInvalidArgument},
		{"missing", b.ID, "missing", models.ConnectionAccepted, apperr.CodeNotFound},
		{"sender cannot respond", a.ID, c.ID, models.ConnectionAccepted, apperr.CodePermissionDenied},
		{"receiver accepts", b.ID, c.ID, models.ConnectionAccepted, ""},
		{"already responded", b.ID, c.ID, models.ConnectionRejected, apperr.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.connections.Respond(ctx, tt.userID, tt.connID, tt.status)
			wantCode(t, err, tt.code)
			if tt.code == "" {
				if got.Status != models.ConnectionAccepted || got.RespondedAt == nil {
					t.Fatalf("unexpected connection: %#v", got)
				}
				if got.Sender == nil || got.Sender.ID != a.ID {
					t.Fatalf("expected sender to be embedded")
				}
			}
		})
	}

	status, err := f.connections.Status(ctx, b.ID, a.ID)
	if err != nil || status == nil || *status != models.ConnectionAccepted {
		t.Fatalf("Status: %v, %v", status, err)
	}
}

func TestConnectionListsAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.user(t, "me@example.com")
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	c := f.user(t, "c@example.com")

	fromA, _ := f.connections.Send(ctx, a.ID, me.ID)
	if _, err := f.connections.Send(ctx, b.ID, me.ID); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := f.connections.Send(ctx, me.ID, c.ID); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := f.connections.Respond(ctx, me.ID, fromA.ID, models.ConnectionAccepted); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	requests, err := f.connections.Requests(ctx, me.ID)
	if err != nil || len(requests) != 1 || requests[0].Sender.ID != b.ID {
		t.Fatalf("Requests: %#v, %v", requests, err)
	}
	sent, err := f.connections.Sent(ctx, me.ID)
	if err != nil || len(sent) != 1 || sent[0].Receiver.ID != c.ID {
		t.Fatalf("Sent: %#v, %v", sent, err)
	}
	all, err := f.connections.Connections(ctx, me.ID)
	if err != nil || len(all) != 1 || all[0].Sender == nil || all[0].Receiver == nil {
		t.Fatalf("Connections: %#v, %v", all, err)
	}

	stats, err := f.connections.Stats(ctx, me.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := models.ConnectionStats{TotalConnections: 1, PendingRequests: 1, SentRequests: 1}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}

	none, err := f.connections.Status(ctx, a.ID, c.ID)
	if err != nil || none != nil {
		t.Fatalf("expected no status between strangers, got %v, %v", none, err)
	}
}

func TestRemoveConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	outsider := f.user(t, "x@example.com")
	c, _ := f.connections.Send(ctx, a.ID, b.ID)

	err := f.connections.Remove(ctx, outsider.ID, c.ID)
	wantCode(t, err, apperr.CodeNotFound)

	if err := f.connections.Remove(ctx, b.ID, c.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	err = f.connections.Remove(ctx, b.ID, c.ID)
	wantCode(t, err, apperr.CodeNotFound)

	// the pair may connect again once the row is gone
	if _, err := f.connections.Send(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Send after remove: %v", err)
	}
}
