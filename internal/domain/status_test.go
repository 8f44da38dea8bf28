package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Apartado", StatusReserved},
		{"pending", StatusReserved},
		{" Elaborado ", StatusPrepared},
		{"En Camino", StatusOnTheWay},
		{"en-camino", StatusOnTheWay},
		{"ENTREGADO", StatusDelivered},
		{"1", StatusCart},
		{"4", StatusOnTheWay},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "cancelado", "0", "6"} {
		_, err := ParseStatus(in)
		assert.Error(t, err, in)
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "En Camino", StatusOnTheWay.String())
	assert.Equal(t, "Status(9)", Status(9).String())
	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusOnTheWay.Terminal())
	assert.Equal(t, 3, StatusPrepared.ID())
}

func TestRoleLanding(t *testing.T) {
	assert.Equal(t, "/admin-inventory", RoleAdmin.LandingPath())
	assert.Equal(t, "/delivery-backorders", RoleDelivery.LandingPath())
	assert.Equal(t, "/", RoleCustomer.LandingPath())
	assert.Equal(t, "/", Role(7).LandingPath())
}

func TestOrderValidate(t *testing.T) {
	assert.NoError(t, Order{ID: 1, Status: StatusReserved}.Validate())
	assert.Error(t, Order{ID: 0, Status: StatusReserved}.Validate())
	assert.ErrorIs(t, Order{ID: 1, Status: Status(0)}.Validate(), ErrInvalidStatus)
}
