package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func createTestUser(t *testing.T, testDB *TestDB) User {
	t.Helper()

	email := fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8])
	user, err := testDB.Store.CreateUser(context.Background(), email, "$2a$10$fixturehashfixturehashfixturehash")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestTrackingLink(t *testing.T, testDB *TestDB, userID uuid.UUID, whatsappNumber, preFilledMessage string) TrackingLink {
	t.Helper()

	slug := fmt.Sprintf("promo-%s", uuid.New().String()[:8])
	platform := PlatformMeta
	link, err := testDB.Store.CreateTrackingLink(context.Background(), CreateTrackingLinkParams{
		UserID:           userID,
		Slug:             slug,
		Name:             "Test Link " + slug,
		Platform:         &platform,
		WhatsAppNumber:   &whatsappNumber,
		PreFilledMessage: &preFilledMessage,
	})
	if err != nil {
		t.Fatalf("failed to create test tracking link: %v", err)
	}
	return link
}

func createTestClickLog(t *testing.T, testDB *TestDB, linkID uuid.UUID, shortID string) ClickLog {
	t.Helper()

	click, err := testDB.Store.CreateClickLog(context.Background(), CreateClickLogParams{
		ShortID:        shortID,
		TrackingLinkID: linkID,
	})
	if err != nil {
		t.Fatalf("failed to create test click log: %v", err)
	}
	return click
}

func setClickCreatedAt(t *testing.T, testDB *TestDB, clickID uuid.UUID, createdAt time.Time) {
	t.Helper()

	if _, err := testDB.db.Exec(`UPDATE click_logs SET created_at = $1 WHERE id = $2`, createdAt, clickID); err != nil {
		t.Fatalf("failed to set click created_at: %v", err)
	}
}

func createTestLead(t *testing.T, testDB *TestDB) Lead {
	t.Helper()

	phone := fmt.Sprintf("5511%d", time.Now().UnixNano()%100000000)
	lead, err := testDB.Store.UpsertLead(context.Background(), phone, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to create test lead: %v", err)
	}
	return lead
}
