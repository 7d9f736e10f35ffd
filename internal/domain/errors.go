package domain

import "errors"

var (
	// Ошибки реестров — защитные инварианты; корректный транспорт их не вызывает.
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrUnknownConnection   = errors.New("connection not registered")

	ErrInvalidMessage   = errors.New("invalid message")
	ErrStoreUnavailable = errors.New("message store unavailable")
	ErrDeliveryFailed   = errors.New("message delivery failed")

	ErrChatNotFound = errors.New("chat not found")
)
