package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/migrations"
	"github.com/theoboldt/juvem-sub001/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	t.Helper()
	ctx := context.Background()

	cfg := database.DefaultPostgresConfig()
	cfg.Host = getEnv("TEST_POSTGRES_HOST", cfg.Host)
	cfg.User = getEnv("TEST_POSTGRES_USER", cfg.User)
	cfg.Password = getEnv("TEST_POSTGRES_PASSWORD", cfg.Password)
	cfg.Database = getEnv("TEST_POSTGRES_DATABASE", "juvem_test")
	cfg.MaxConns = 5
	cfg.MinConns = 1

	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	_, err := database.RunMigrations(migrations.FS, ".", url)
	require.NoError(t, err)

	db, err := database.NewPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func testEvent() *domain.Event {
	now := time.Now().UTC().Truncate(time.Millisecond)
	price := int64(12500)
	return &domain.Event{
		ID:           uuid.New().String(),
		Title:        "Integrationsfreizeit",
		StartDate:    time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		IsVisible:    true,
		IsActive:     true,
		Price:        &price,
		AttributeIDs: []string{},
		CreatedAt:    now,
		ModifiedAt:   now,
	}
}

func TestPostgresEventRepository_Lifecycle(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	repos := NewPostgresRepositories(db.Pool())
	ctx := context.Background()

	event := testEvent()
	require.NoError(t, repos.Events.Create(ctx, event))

	got, err := repos.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, event.Title, got.Title)
	require.NotNil(t, got.Price)
	assert.Equal(t, int64(12500), *got.Price)

	require.NoError(t, repos.Events.SoftDelete(ctx, event.ID, time.Now()))
	got, err = repos.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	require.NoError(t, repos.Events.Restore(ctx, event.ID))
	got, err = repos.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())

	missing, err := repos.Events.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repos.Events.Restore(ctx, uuid.New().String()), ErrNotFound)
}

func TestPostgresParticipationRepository_Status(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	repos := NewPostgresRepositories(db.Pool())
	ctx := context.Background()

	event := testEvent()
	require.NoError(t, repos.Events.Create(ctx, event))

	now := time.Now().UTC().Truncate(time.Millisecond)
	participant := &domain.Participant{
		ID:         uuid.New().String(),
		EventID:    event.ID,
		NameFirst:  "Lena",
		NameLast:   "Muster",
		Birthday:   time.Date(2014, 3, 4, 0, 0, 0, 0, time.UTC),
		Gender:     domain.GenderFemale,
		Food:       []string{},
		Status:     domain.StatusUnconfirmed,
		Fillouts:   []*domain.Fillout{},
		CreatedAt:  now,
		ModifiedAt: now,
	}
	participation := &domain.Participation{
		ID:           uuid.New().String(),
		EventID:      event.ID,
		NameFirst:    "Maria",
		NameLast:     "Muster",
		Email:        "maria@example.com",
		Phones:       []domain.Phone{{Number: "0711 123456"}},
		Participants: []*domain.Participant{participant},
		Fillouts:     []*domain.Fillout{},
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	participant.ParticipationID = participation.ID
	require.NoError(t, repos.Participations.Create(ctx, participation))

	loaded, err := repos.Participations.GetByID(ctx, participation.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Participants, 1)
	assert.Equal(t, "Lena", loaded.Participants[0].NameFirst)

	participant.Status = domain.StatusConfirmed
	require.NoError(t, repos.Participants.UpdateStatus(ctx, participant, &domain.StatusTransition{
		ID:            uuid.New().String(),
		ParticipantID: participant.ID,
		FromStatus:    domain.StatusUnconfirmed,
		ToStatus:      domain.StatusConfirmed,
		ChangedAt:     now,
	}))

	history, err := repos.Participants.ListTransitions(ctx, participant.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusConfirmed, history[0].ToStatus)

	count, err := repos.Participants.CountActiveByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgresInvoiceRepository_NextSequence(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	repos := NewPostgresRepositories(db.Pool())
	ctx := context.Background()

	event := testEvent()
	require.NoError(t, repos.Events.Create(ctx, event))

	first, err := repos.Invoices.NextSequence(ctx, event.ID)
	require.NoError(t, err)
	second, err := repos.Invoices.NextSequence(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}
