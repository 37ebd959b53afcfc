package remote

import (
	"errors"
	"fmt"

	"sergis-author/internal/rpc"
)

// ErrClosed возвращается вызовам после разрыва соединения или до Init.
var ErrClosed = errors.New("remote storage connection closed")

// RemoteError - отказ сервера в выполнении вызова.
type RemoteError struct {
	Method  string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s", e.Method, e.Message)
}

// Unwrap позволяет сравнивать отказ с ошибками model через errors.Is.
func (e *RemoteError) Unwrap() error {
	return rpc.ErrorForCode(e.Code)
}
