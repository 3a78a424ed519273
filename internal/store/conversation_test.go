package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore_CreateConversation(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	lead := createTestLead(t, testDB)

	latency := int64(90)
	user := createTestUser(t, testDB)
	link := createTestTrackingLink(t, testDB, user.ID, "5511999991000", "Olá!")
	click := createTestClickLog(t, testDB, link.ID, uuid.New().String()[:8])

	conversation, err := testDB.Store.CreateConversation(ctx, Conversation{
		LeadID:                       lead.ID,
		ClickLogID:                   &click.ID,
		MatchMethod:                  MatchMethodZeroWidthExact,
		MatchConfidence:              1.0,
		OriginLabel:                  OriginLabelMetaAds,
		OriginReason:                 OriginReasonFbclid,
		ClickToMessageLatencySeconds: &latency,
		MessageText:                  "Olá! Quero saber mais",
		ReceivedAt:                   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if conversation.ID == uuid.Nil {
		t.Error("expected non-nil conversation ID")
	}
	if conversation.MatchMethod != MatchMethodZeroWidthExact {
		t.Errorf("MatchMethod = %q, want ZERO_WIDTH_EXACT", conversation.MatchMethod)
	}
	if conversation.ClickToMessageLatencySeconds == nil || *conversation.ClickToMessageLatencySeconds != 90 {
		t.Errorf("ClickToMessageLatencySeconds = %v, want 90", conversation.ClickToMessageLatencySeconds)
	}
}

func TestStore_CreateConversation_ClickClaimedOnce(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	user := createTestUser(t, testDB)
	link := createTestTrackingLink(t, testDB, user.ID, "5511999991001", "Oi!")
	click := createTestClickLog(t, testDB, link.ID, uuid.New().String()[:8])

	first := createTestLead(t, testDB)
	second := createTestLead(t, testDB)

	_, err := testDB.Store.CreateConversation(ctx, Conversation{
		LeadID:       first.ID,
		ClickLogID:   &click.ID,
		MatchMethod:  MatchMethodZeroWidthExact,
		OriginLabel:  OriginLabelUntracked,
		OriginReason: OriginReasonUntracked,
		MessageText:  "Oi!",
		ReceivedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("first CreateConversation() error = %v", err)
	}

	// The partial unique index rejects a second claim of the same click.
	_, err = testDB.Store.CreateConversation(ctx, Conversation{
		LeadID:       second.ID,
		ClickLogID:   &click.ID,
		MatchMethod:  MatchMethodZeroWidthExact,
		OriginLabel:  OriginLabelUntracked,
		OriginReason: OriginReasonUntracked,
		MessageText:  "Oi!",
		ReceivedAt:   time.Now().UTC(),
	})
	if !errors.Is(err, ErrClickAlreadyClaimed) {
		t.Errorf("second claim error = %v, want ErrClickAlreadyClaimed", err)
	}
}

func TestStore_CreateConversation_MultipleOrganicAllowed(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	lead := createTestLead(t, testDB)

	// Organic conversations carry no click; the partial index must not apply.
	for i := 0; i < 2; i++ {
		_, err := testDB.Store.CreateConversation(ctx, Conversation{
			LeadID:       lead.ID,
			MatchMethod:  MatchMethodOrganic,
			OriginLabel:  OriginLabelUntracked,
			OriginReason: OriginReasonUntracked,
			MessageText:  "mensagem orgânica",
			ReceivedAt:   time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("organic CreateConversation() #%d error = %v", i+1, err)
		}
	}
}

func TestStore_UpsertLead(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	phone := "5511" + uuid.New().String()[:8]

	firstSeen := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	lead, err := testDB.Store.UpsertLead(ctx, phone, firstSeen)
	if err != nil {
		t.Fatalf("UpsertLead() error = %v", err)
	}

	laterSeen := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := testDB.Store.UpsertLead(ctx, phone, laterSeen)
	if err != nil {
		t.Fatalf("UpsertLead() second call error = %v", err)
	}

	if updated.ID != lead.ID {
		t.Errorf("upsert created a new lead: %v != %v", updated.ID, lead.ID)
	}
	if !updated.FirstSeenAt.Equal(firstSeen) {
		t.Errorf("FirstSeenAt = %v, want %v", updated.FirstSeenAt, firstSeen)
	}
	if !updated.LastSeenAt.Equal(laterSeen) {
		t.Errorf("LastSeenAt = %v, want %v", updated.LastSeenAt, laterSeen)
	}
}
