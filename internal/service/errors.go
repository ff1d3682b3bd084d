package service

import "errors"

// ErrOrderCreation wraps any persistence failure while creating an order.
// The transaction is rolled back before it is returned.
var ErrOrderCreation = errors.New("order creation failed")
