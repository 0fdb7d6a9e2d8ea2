package service

import "errors"

// Типизированные ошибки сервисного слоя. HTTP-слой отображает их
// в коды ответов: валидация — 400, not found — 404, конфликт — 409.
var (
	ErrNotFound       = errors.New("not found")
	ErrLabelRequired  = errors.New("label is required")
	ErrNameRequired   = errors.New("name is required")
	ErrSelfParent     = errors.New("location cannot be its own parent")
	ErrBadCredentials = errors.New("invalid credentials")
)
