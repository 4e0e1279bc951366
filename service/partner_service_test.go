package service

import (
	"context"
	"errors"
	"testing"

	"partnerpay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPartnerService_AddPartner(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()
	m.uow.On("Commit").Return(nil)

	m.partners.On("Create", ctx, mock.MatchedBy(func(p *models.Partner) bool {
		return p.Name == "W4" && p.SharePercentage.Equal(dec("12.5"))
	})).Return(nil)

	partner, err := NewPartnerService(m.factory, nil).AddPartner(ctx, "W4", 12.5)

	require.NoError(t, err)
	assert.Equal(t, "W4", partner.Name)
}

func TestPartnerService_AddPartner_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()

	m.partners.On("Create", ctx, mock.Anything).Return(&DuplicateNameError{Entity: "partner", Name: "W1"})

	_, err := NewPartnerService(m.factory, nil).AddPartner(ctx, "W1", 10)

	assert.True(t, errors.Is(err, ErrDuplicateName))
	m.uow.AssertNotCalled(t, "Commit")
}

func TestPartnerService_AddPartner_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		pname string
		share float64
	}{
		{name: "blank name", pname: " ", share: 10},
		{name: "negative share", pname: "W1", share: -1},
		{name: "share above hundred", pname: "W1", share: 100.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newUoWMocks()
			_, err := NewPartnerService(m.factory, nil).AddPartner(context.Background(), tt.pname, tt.share)
			assert.True(t, errors.Is(err, ErrValidation))
			m.factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestPartnerService_UpdatePartner(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()
	m.uow.On("Commit").Return(nil)

	m.partners.On("Update", ctx, "W1", mock.MatchedBy(func(p *models.Partner) bool {
		return p.Name == "Ala"
	})).Return(nil)

	err := NewPartnerService(m.factory, nil).UpdatePartner(ctx, "W1", "Ala", 40)

	require.NoError(t, err)
	m.partners.AssertExpectations(t)
}

func TestPartnerService_PartnerNames(t *testing.T) {
	ctx := context.Background()
	defaults := []string{"W1", "W2", "W3"}

	t.Run("stored partners", func(t *testing.T) {
		m := newUoWMocks()
		m.partners.On("GetAll", ctx).Return([]*models.Partner{{Name: "Ala"}, {Name: "Ola"}}, nil)

		names, err := NewPartnerService(m.factory, defaults).PartnerNames(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"Ala", "Ola"}, names)
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		m := newUoWMocks()
		m.partners.On("GetAll", ctx).Return(nil, nil)

		names, err := NewPartnerService(m.factory, defaults).PartnerNames(ctx)

		require.NoError(t, err)
		assert.Equal(t, defaults, names)

		names[0] = "changed"
		assert.Equal(t, "W1", defaults[0], "callers get a copy of the defaults")
	})
}
