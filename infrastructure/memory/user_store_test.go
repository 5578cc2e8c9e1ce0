package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user := &models.User{Email: "ann@example.com", FirstName: "Ann", Password: "hash"}
	require.NoError(t, store.Create(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	err := store.Create(ctx, &models.User{Email: "ANN@example.com"})
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)

	byEmail, err := store.GetByEmail(ctx, "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.FirstName)

	_, err = store.GetByID(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
