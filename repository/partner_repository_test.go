package repository

import (
	"context"
	"errors"
	"testing"

	"partnerpay/models"
	"partnerpay/repository/testutil"
	"partnerpay/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPartnerRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Partner{Name: "W2", SharePercentage: decimal.NewFromInt(30)}))
	require.NoError(t, repo.Create(ctx, &models.Partner{Name: "W1", SharePercentage: decimal.NewFromInt(40)}))

	t.Run("duplicate", func(t *testing.T) {
		err := repo.Create(ctx, &models.Partner{Name: "W1"})
		assert.True(t, errors.Is(err, service.ErrDuplicateName))
	})

	t.Run("ordered by name", func(t *testing.T) {
		partners, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, partners, 2)
		assert.Equal(t, "W1", partners[0].Name)
		assert.True(t, partners[0].SharePercentage.Equal(decimal.NewFromInt(40)))
	})

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, "W2", &models.Partner{Name: "Ola", SharePercentage: decimal.NewFromInt(35)}))

		err := repo.Update(ctx, "Ola", &models.Partner{Name: "W1"})
		assert.True(t, errors.Is(err, service.ErrDuplicateName))

		err = repo.Update(ctx, "W2", &models.Partner{Name: "X"})
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "Ola"))
		assert.True(t, errors.Is(repo.Delete(ctx, "Ola"), service.ErrNotFound))
	})
}
