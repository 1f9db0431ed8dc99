package catalog

import "errors"

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")
)
