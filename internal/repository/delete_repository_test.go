package repository

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KillerBee88/star-burger/internal/database"
)

func TestCategoryRepo_DeleteUncategorizesFirst(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec(`UPDATE products SET category_id = NULL WHERE category_id = \$1`).
		WithArgs(3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))
	mock.ExpectExec(`DELETE FROM product_categories WHERE category_id = \$1`).
		WithArgs(3).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
}

func TestRestaurantRepo_DeleteDropsMenuAndUnassignsOrders(t *testing.T) {
	mock := newMockDB(t)
	repo := NewRestaurantRepository(mock)

	mock.ExpectExec(`DELETE FROM restaurant_menu_items WHERE restaurant_id = \$1`).
		WithArgs(2).
		WillReturnResult(pgxmock.NewResult("DELETE", 6))
	mock.ExpectExec(`UPDATE orders SET restaurant_id = NULL WHERE restaurant_id = \$1`).
		WithArgs(2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM restaurants WHERE restaurant_id = \$1`).
		WithArgs(2).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 2))
}

func TestOrderRepo_DeleteRemovesItemsBeforeOrder(t *testing.T) {
	mock := newMockDB(t)
	repo := NewOrderRepository(mock)

	mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
		WithArgs(10).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM orders WHERE order_id = \$1`).
		WithArgs(10).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 10))
}

func TestDeleteNotFound(t *testing.T) {
	tests := []struct {
		name   string
		delete func(db database.DBTX) error
		execs  []string
	}{
		{
			name:   "category",
			delete: func(db database.DBTX) error { return NewCategoryRepository(db).Delete(context.Background(), 9) },
			execs:  []string{`UPDATE products`, `DELETE FROM product_categories`},
		},
		{
			name:   "restaurant",
			delete: func(db database.DBTX) error { return NewRestaurantRepository(db).Delete(context.Background(), 9) },
			execs:  []string{`DELETE FROM restaurant_menu_items`, `UPDATE orders`, `DELETE FROM restaurants`},
		},
		{
			name:   "order",
			delete: func(db database.DBTX) error { return NewOrderRepository(db).Delete(context.Background(), 9) },
			execs:  []string{`DELETE FROM order_items`, `DELETE FROM orders`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			for _, sql := range tt.execs {
				mock.ExpectExec(sql).WithArgs(9).WillReturnResult(pgxmock.NewResult("DELETE", 0))
			}

			assert.ErrorIs(t, tt.delete(mock), ErrNotFound)
		})
	}
}

func TestDeleteRejectsZeroID(t *testing.T) {
	db := newMockDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, NewCategoryRepository(db).Delete(ctx, 0), ErrInvalidInput)
	assert.ErrorIs(t, NewRestaurantRepository(db).Delete(ctx, 0), ErrInvalidInput)
	assert.ErrorIs(t, NewOrderRepository(db).Delete(ctx, 0), ErrInvalidInput)
	assert.ErrorIs(t, NewProductRepository(db).Delete(ctx, -1), ErrInvalidInput)
}
