package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innerAtlasAPI/internal/types/dream"
	"innerAtlasAPI/internal/types/goal"
	"innerAtlasAPI/internal/types/user"
	"innerAtlasAPI/tests/helpers"
)

func TestUserLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	svc := NewUserService(pool)
	ctx := context.Background()
	clerkID := helpers.TestClerkID("usr")

	created, err := svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "test.user@example.com",
		Username:  "testuser",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)

	fetched, err := svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "test.user@example.com", fetched.Email)

	// webhook replays upsert instead of failing
	_, err = svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "renamed@example.com",
		Username: "renamed",
	})
	require.NoError(t, err)

	fetched, err = svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "renamed@example.com", fetched.Email)

	newName := "Renata"
	require.NoError(t, svc.UpdateUserByClerkID(ctx, clerkID, &user.UpdateUserRequest{FirstName: &newName}))

	fetched, err = svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "Renata", fetched.FirstName)
	assert.Equal(t, "renamed", fetched.Username)

	require.NoError(t, svc.DeleteUserByClerkID(ctx, clerkID))

	_, err = svc.GetUserByClerkID(ctx, clerkID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegisterDevice(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	svc := NewUserService(pool)
	ctx := context.Background()
	clerkID := helpers.TestClerkID("dev")

	var v *ValidationError
	err := svc.RegisterDevice(ctx, clerkID, "   ")
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "token", v.Field)

	err = svc.RegisterDevice(ctx, clerkID, "fcm-token-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.CreateUser(ctx, &user.CreateUserRequest{ClerkID: clerkID})
	require.NoError(t, err)

	require.NoError(t, svc.RegisterDevice(ctx, clerkID, "fcm-token-1"))

	fetched, err := svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	require.NotNil(t, fetched.FCMToken)
	assert.Equal(t, "fcm-token-1", *fetched.FCMToken)
}

func TestUsersNeedingReminder(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	users := NewUserService(pool)
	dreams := NewDreamService(pool, nil)
	ctx := context.Background()
	today := goal.Today()

	hasDevice := helpers.TestClerkID("remind")
	noDevice := helpers.TestClerkID("nodevice")
	journaled := helpers.TestClerkID("journaled")

	for _, id := range []string{hasDevice, noDevice, journaled} {
		_, err := users.CreateUser(ctx, &user.CreateUserRequest{ClerkID: id})
		require.NoError(t, err)
	}
	require.NoError(t, users.RegisterDevice(ctx, hasDevice, "tok-a"))
	require.NoError(t, users.RegisterDevice(ctx, journaled, "tok-b"))

	_, err := dreams.CreateDream(ctx, journaled, &dream.CreateDreamRequest{
		Title:   "Today's dream",
		Content: "Already written down this morning, nice and fresh.",
	})
	require.NoError(t, err)

	targets, err := users.UsersNeedingReminder(ctx, today)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, tgt := range targets {
		ids[tgt.ClerkID] = true
	}
	assert.True(t, ids[hasDevice])
	assert.False(t, ids[noDevice])
	assert.False(t, ids[journaled])

	// once nudged, a user drops out for the rest of the day
	require.NoError(t, users.MarkReminded(ctx, hasDevice, today))

	targets, err = users.UsersNeedingReminder(ctx, today)
	require.NoError(t, err)
	for _, tgt := range targets {
		assert.NotEqual(t, hasDevice, tgt.ClerkID)
	}
}
