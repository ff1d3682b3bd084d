package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder_NumbersPlaceholders(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.sql())

	w.add("o.status = $%d", "accepted")
	w.add("(o.firstname ILIKE $%[1]d OR o.lastname ILIKE $%[1]d)", likePattern(" ann "))

	assert.Equal(t, "WHERE o.status = $1 AND (o.firstname ILIKE $2 OR o.lastname ILIKE $2)", w.sql())
	assert.Equal(t, []any{"accepted", "%ann%"}, w.args)
}

func TestIntPtr(t *testing.T) {
	assert.Nil(t, intPtr(pgtype.Int4{}))
	p := intPtr(pgtype.Int4{Int32: 7, Valid: true})
	if assert.NotNil(t, p) {
		assert.Equal(t, 7, *p)
	}
}

func TestWrapPgError(t *testing.T) {
	assert.ErrorIs(t, wrapPgError(pgx.ErrNoRows, "get order %d", 1), ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "restaurant_menu_items_restaurant_product_key"}
	assert.ErrorIs(t, wrapPgError(dup, "create menu item"), ErrDuplicate)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "order_items_order_id_fkey"}
	assert.ErrorIs(t, wrapPgError(fk, "create item"), ErrConflict)

	other := errors.New("connection reset")
	err := wrapPgError(other, "update product %d", 3)
	assert.ErrorIs(t, err, other)
	assert.Equal(t, "update product 3: connection reset", err.Error())
}
