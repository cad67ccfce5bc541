package invoice

import "errors"

// Ошибки входных данных; повторять запрос смысла нет.
var (
	ErrCategoryNotFound = errors.New("linen category not found")
	ErrCategoryInactive = errors.New("linen category is inactive")
	ErrInvalidPeriod    = errors.New("invalid period")
)
