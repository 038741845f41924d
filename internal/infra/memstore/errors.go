package memstore

import "errors"

var (
	// ErrSessionNotFound возвращается, когда сессия не найдена в хранилище
	ErrSessionNotFound = errors.New("memstore: session not found")
)
