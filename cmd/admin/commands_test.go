package main

import (
	"errors"
	"testing"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Positional", func(t *testing.T) {
		fs := newFlagSet("delete")
		pos, err := parse(fs, []string{"product", "p1", "--config", "x.yaml"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"product", "p1"}, pos)
	})

	t.Run("WrongCount", func(t *testing.T) {
		_, err := parse(newFlagSet("delete"), []string{"product"}, 2)
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		_, err := parse(newFlagSet("logout"), []string{"--force"}, 0)
		assert.ErrorIs(t, err, errUsage)
	})
}

func TestListFlags(t *testing.T) {
	fs := newFlagSet("list")
	flags := bindListFlags(fs)
	_, err := parse(fs, []string{"order", "--payment-status", "paid", "--search", "", "--page", "3"}, 1)
	require.NoError(t, err)

	lf := flags()
	patch := lf.change.Filters
	require.NotNil(t, patch.PaymentStatus)
	assert.Equal(t, "paid", *patch.PaymentStatus)
	require.NotNil(t, patch.Search)
	assert.Empty(t, *patch.Search)
	assert.Nil(t, patch.Status)
	assert.Equal(t, 3, lf.change.Page)
	assert.Zero(t, lf.change.Limit)
}

func TestDescribe(t *testing.T) {
	err := &domain.ValidationError{Fields: domain.FieldErrors{"name": "is required"}}
	assert.Equal(t, "invalid input:\n  name: is required", describe(err))

	assert.Equal(t, "Category not found",
		describe(&domain.ServerError{Status: 404, Message: "Category not found"}))

	assert.Equal(t, "open x.json: no such file", describe(errors.New("open x.json: no such file")))
}
