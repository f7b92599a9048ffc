package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser() *core.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &core.User{
		ID:           uuid.New().String(),
		Email:        "aisha@example.com",
		Name:         "Aisha",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testStoredTour() *core.Tour {
	now := time.Now().UTC().Truncate(time.Second)
	return &core.Tour{
		ID:           uuid.New().String(),
		Name:         "Hunza Valley",
		Description:  "Northern loop",
		Destinations: []string{"Hunza", "Skardu"},
		Members: []core.Member{
			{ID: "m-1", Name: "Aisha", AmountPaid: core.Money{Cents: 15000}},
			{ID: "m-2", Name: "Bilal"},
		},
		Expenses: []core.Expense{
			{ID: "e-1", Name: "Fuel", Price: core.Money{Cents: 15000}, Category: "Transport", PaidBy: "m-1", Date: now},
		},
		TotalBudget:  core.Money{Cents: 100000},
		Currency:     "PKR",
		TotalExpense: core.Money{Cents: 15000},
		PerHead:      core.Money{Cents: 7500},
		Status:       core.StatusPlanning,
		StartDate:    now,
		OwnerID:      "owner-1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUser()

	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, int64(0), got.PasswordVersion)

	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Duplicate email is rejected by the unique index.
	dup := testUser()
	dup.ID = uuid.New().String()
	assert.Error(t, repo.CreateUser(ctx, dup))
}

func TestUpdatePassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUser()
	require.NoError(t, repo.CreateUser(ctx, user))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$10$newhash"))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", got.PasswordHash)
	assert.Equal(t, int64(1), got.PasswordVersion)

	// Each change bumps the version by exactly one.
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$10$thirdhash"))
	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.PasswordVersion)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "hash"), ErrNotFound)
}

func TestSaveAndGetTour(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := testStoredTour()

	require.NoError(t, repo.SaveTour(ctx, tour))

	got, err := repo.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.Name, got.Name)
	assert.Equal(t, tour.Destinations, got.Destinations)
	require.Len(t, got.Members, 2)
	assert.Equal(t, int64(15000), got.Members[0].AmountPaid.Cents)
	require.Len(t, got.Expenses, 1)
	assert.Equal(t, "m-1", got.Expenses[0].PaidBy)
	assert.Equal(t, core.StatusPlanning, got.Status)
	assert.False(t, got.StartDate.IsZero())
	assert.True(t, got.EndDate.IsZero())

	_, err = repo.GetTour(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveTourUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := testStoredTour()
	require.NoError(t, repo.SaveTour(ctx, tour))

	tour.Name = "Hunza Extended"
	tour.Expenses = append(tour.Expenses, core.Expense{
		ID: "e-2", Name: "Hotel", Price: core.Money{Cents: 30000}, Category: "Stay", Date: time.Now().UTC(),
	})
	tour.TotalExpense = core.Money{Cents: 45000}
	require.NoError(t, repo.SaveTour(ctx, tour))

	got, err := repo.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hunza Extended", got.Name)
	assert.Len(t, got.Expenses, 2)
	assert.Equal(t, int64(45000), got.TotalExpense.Cents)

	tours, err := repo.ListTours(ctx)
	require.NoError(t, err)
	assert.Len(t, tours, 1)
}

func TestListToursNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := testStoredTour()
	older.Name = "Older"
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.SaveTour(ctx, older))

	newer := testStoredTour()
	newer.Name = "Newer"
	require.NoError(t, repo.SaveTour(ctx, newer))

	tours, err := repo.ListTours(ctx)
	require.NoError(t, err)
	require.Len(t, tours, 2)
	assert.Equal(t, "Newer", tours[0].Name)
	assert.Equal(t, "Older", tours[1].Name)
}

func TestDeleteTour(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := testStoredTour()
	require.NoError(t, repo.SaveTour(ctx, tour))

	require.NoError(t, repo.DeleteTour(ctx, tour.ID))

	_, err := repo.GetTour(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTour(ctx, tour.ID), ErrNotFound)
}
