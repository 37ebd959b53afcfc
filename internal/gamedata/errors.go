package gamedata

import "errors"

var (
	// ErrMalformedDocument - импортируемые данные не являются JSON-объектом.
	ErrMalformedDocument = errors.New("malformed game document")
	// ErrIndexOutOfRange - индекс промпта или варианта вне диапазона.
	ErrIndexOutOfRange = errors.New("index out of range")
)
