package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

func TestClientCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr := &AddressInput{Cep: "55730000", Number: validation.NewText("12A"), Neighborhood: "Derby", City: "Bom Jardim", State: "PE"}

	created, err := f.clients.Create(ctx, "u1", ClientInput{Name: "Carlos Henrique", Email: "email@gmail.com", Phone: "99999999", Address: addr})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UserID)

	got, err := f.clients.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, entity.Address{
		ID:           created.Address.ID,
		ClientID:     created.ID,
		Cep:          "55730000",
		Number:       "12A",
		Neighborhood: "Derby",
		City:         "Bom Jardim",
		State:        "PE",
	}, *got.Address)
}

func TestClientCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.clients.Create(context.Background(), "u1", ClientInput{Email: "not-an-email"})

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The name field is required."}, ve.Fields["name"])
	assert.Equal(t, []string{"The email must be a valid email address."}, ve.Fields["email"])
}

func TestClientUpdateByNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "owner", "Carlos")

	t.Run("valid payload", func(t *testing.T) {
		err := f.clients.Update(ctx, "intruder", c.ID, ClientInput{Name: "X", Email: "x@example.com"})
		var az *apperr.AuthorizationError
		assert.ErrorAs(t, err, &az)
	})

	t.Run("invalid payload", func(t *testing.T) {
		err := f.clients.Update(ctx, "intruder", c.ID, ClientInput{})
		var az *apperr.AuthorizationError
		assert.ErrorAs(t, err, &az)
	})

	t.Run("delete", func(t *testing.T) {
		var az *apperr.AuthorizationError
		assert.ErrorAs(t, f.clients.Delete(ctx, "intruder", c.ID), &az)
	})

	got, err := f.clients.Get(ctx, "owner", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", got.Name)
}

func TestClientUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	withAddr, err := f.clients.Create(ctx, "u1", ClientInput{Name: "A", Email: "a@example.com", Address: &AddressInput{City: "Recife"}})
	require.NoError(t, err)
	noAddr := f.client(t, "u1", "B")

	newAddr := &AddressInput{City: "Olinda", State: "PE"}
	require.NoError(t, f.clients.Update(ctx, "u1", withAddr.ID, ClientInput{Name: "A2", Email: "a2@example.com", Address: newAddr}))
	require.NoError(t, f.clients.Update(ctx, "u1", noAddr.ID, ClientInput{Name: "B2", Email: "b2@example.com", Address: newAddr}))

	got, err := f.clients.Get(ctx, "u1", withAddr.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, "Olinda", got.Address.City)

	got, err = f.clients.Get(ctx, "u1", noAddr.ID)
	require.NoError(t, err)
	assert.Equal(t, "B2", got.Name)
	assert.Nil(t, got.Address)

	err = f.clients.Update(ctx, "u1", "missing", ClientInput{Name: "x", Email: "x@example.com"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestClientListAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.client(t, "u1", "Maria")
	}
	f.client(t, "u2", "Maria")
	_, err := f.clients.Create(ctx, "u2", ClientInput{Name: "Joao", Email: "j@example.com", Address: &AddressInput{City: "Recife", State: "PE"}})
	require.NoError(t, err)

	page, err := f.clients.List(ctx, "u1", ClientQuery{Name: "MAR"})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 5, page.PerPage)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 2, page.LastPage)

	page, err = f.clients.List(ctx, "u1", ClientQuery{PageQuery: PageQuery{Page: 2, Take: 5}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	stats, err := f.clients.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.ClientStat{{City: "Recife", State: "PE", Total: 1}}, stats)
}

func TestClientDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "u1", "Carlos")

	require.NoError(t, f.clients.Delete(ctx, "u1", c.ID))
	assert.True(t, apperr.IsNotFound(f.clients.Delete(ctx, "u1", c.ID)))
}
