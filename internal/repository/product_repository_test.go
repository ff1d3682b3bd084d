package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productMockColumns = []string{
	"product_id", "name", "category_id", "category_name",
	"price", "image", "special_status", "description",
}

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock
}

func TestProductRepo_ListAvailable(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	rows := pgxmock.NewRows(append(productMockColumns, "restaurant_id", "restaurant_name")).
		AddRow(1, "Cheeseburger", int64(3), "Burgers", "199.00", "cheeseburger.png", false, "", 2, "Star Burger Arbat").
		AddRow(4, "Fries", nil, nil, "89.50", "", true, "Salted", 5, "Star Burger Tverskaya")

	mock.ExpectQuery(`(?s)JOIN LATERAL \(.*WHERE m\.product_id = p\.product_id AND m\.availability.*ORDER BY rs\.restaurant_id\s+LIMIT 1\s+\) r ON TRUE\s+ORDER BY p\.product_id`).
		WillReturnRows(rows)

	products, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, 1, products[0].ProductID)
	require.NotNil(t, products[0].CategoryID)
	assert.Equal(t, 3, *products[0].CategoryID)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Burgers", products[0].Category.Name)
	assert.Equal(t, "199.00", products[0].Price.StringFixed(2))
	assert.Equal(t, 2, products[0].Restaurant.RestaurantID)
	assert.Equal(t, "Star Burger Arbat", products[0].Restaurant.Name)

	assert.Nil(t, products[1].CategoryID)
	assert.Nil(t, products[1].Category)
	assert.True(t, products[1].SpecialStatus)
	assert.Equal(t, 5, products[1].Restaurant.RestaurantID)
}

func TestProductRepo_ListAvailableEmpty(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`JOIN LATERAL`).
		WillReturnRows(pgxmock.NewRows(append(productMockColumns, "restaurant_id", "restaurant_name")))

	products, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductRepo_GetByIDs(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`WHERE p\.product_id = ANY\(\$1::int\[\]\)`).
		WithArgs([]int{1, 2, 99}).
		WillReturnRows(pgxmock.NewRows(productMockColumns).
			AddRow(1, "Cheeseburger", nil, nil, "199.00", "", false, "").
			AddRow(2, "Fries", nil, nil, "89.50", "", false, ""))

	found, err := repo.GetByIDs(context.Background(), []int{1, 2, 99})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Fries", found[2].Name)
	assert.Equal(t, "89.50", found[2].Price.StringFixed(2))
	assert.NotContains(t, found, 99)
}

func TestProductRepo_GetByIDsSkipsEmptyLookup(t *testing.T) {
	repo := NewProductRepository(newMockDB(t))

	found, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestProductRepo_Delete(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM restaurant_menu_items WHERE product_id = \$1`).
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`UPDATE order_items SET product_id = NULL WHERE product_id = \$1`).
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`DELETE FROM products WHERE product_id = \$1`).
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
}

func TestProductRepo_DeleteMissing(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM restaurant_menu_items`).WithArgs(7).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`UPDATE order_items SET product_id = NULL`).WithArgs(7).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM products`).WithArgs(7).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 7), ErrNotFound)
}

func TestProductRepo_DeleteStopsOnMenuFailure(t *testing.T) {
	mock := newMockDB(t)
	repo := NewProductRepository(mock)

	boom := errors.New("connection reset")
	mock.ExpectExec(`DELETE FROM restaurant_menu_items`).WithArgs(7).WillReturnError(boom)

	err := repo.Delete(context.Background(), 7)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "menu items of product 7")
}
