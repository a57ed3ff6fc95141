package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/circleapp/circle-server/internal/errors"
)

func TestGetItemsMatchingFilter(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, GetItemsMatchingFilter([]string{"a", "b", "c"}, []string{"b", "c", "d"}))
	assert.Equal(t, []string{}, GetItemsMatchingFilter([]string{}, []string{"x", "y"}))
	assert.Equal(t, []string{"x", "x"}, GetItemsMatchingFilter([]string{"x"}, []string{"x", "x"}))
}

func TestFilterService_SavedFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	label := env.label(t, alice, "close", "user-a", "user-c")

	filter, err := env.filters.CreateFilter(ctx, alice.ID, CreateFilterRequest{Name: "Close only", LabelID: label.ID})
	require.NoError(t, err)

	got, err := env.filters.ApplyFilter(ctx, alice.ID, filter.ID, []string{"user-c", "user-b", "user-a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-c", "user-a"}, got)

	filters, err := env.filters.ListFilters(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, "Close only", filters[0].Name)

	_, err = env.filters.ApplyFilter(ctx, bob.ID, filter.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotAllowed)

	assert.ErrorIs(t, env.filters.DeleteFilter(ctx, bob.ID, filter.ID), domainerrors.ErrNotAllowed)
	require.NoError(t, env.filters.DeleteFilter(ctx, alice.ID, filter.ID))
	require.NoError(t, env.filters.DeleteFilter(ctx, alice.ID, filter.ID))

	_, err = env.filters.ApplyFilter(ctx, alice.ID, filter.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFilterService_CreateRequiresOwnLabel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	label := env.label(t, bob, "theirs")

	_, err := env.filters.CreateFilter(ctx, alice.ID, CreateFilterRequest{Name: "x", LabelID: label.ID})
	assert.ErrorIs(t, err, domainerrors.ErrNotAllowed)

	_, err = env.filters.CreateFilter(ctx, alice.ID, CreateFilterRequest{Name: "x", LabelID: "label-missing"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.filters.CreateFilter(ctx, alice.ID, CreateFilterRequest{LabelID: label.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
