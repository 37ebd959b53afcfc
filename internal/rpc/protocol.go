// Package rpc описывает протокол вызовов хранилища поверх websocket.
//
// Клиент шлет Request с токеном сессии и массивом аргументов, сервер отвечает
// Response с тем же ID. Resolved=false означает отказ; тогда Data содержит ErrorData.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
)

// Методы хранилища.
const (
	MethodGetGameList   = "getGameList"
	MethodLoadGame      = "loadGame"
	MethodSaveGame      = "saveGame"
	MethodRenameGame    = "renameGame"
	MethodRemoveGame    = "removeGame"
	MethodCheckGameName = "checkGameName"
	MethodPreviewGame   = "previewGame"
	MethodPublishGame   = "publishGame"
	MethodLockPrompts   = "lockPrompts"
	MethodUnlockPrompts = "unlockPrompts"
)

// Request - вызов метода.
type Request struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Token  string            `json:"token"`
	Args   []json.RawMessage `json:"args"`
}

// Response - результат вызова.
type Response struct {
	ID       uint64          `json:"id"`
	Resolved bool            `json:"resolved"`
	Data     json.RawMessage `json:"data"`
}

// ErrorData - содержимое Data отклоненного вызова.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PublishResult - ответ previewGame и publishGame.
type PublishResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Коды ошибок.
const (
	CodeNotFound          = "not_found"
	CodeGameExists        = "game_exists"
	CodeInvalidGameName   = "invalid_game_name"
	CodePromptLocked      = "prompt_locked"
	CodeInvalidInput      = "invalid_input"
	CodeMalformedDocument = "malformed_document"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeUnknownMethod     = "unknown_method"
	CodeInternal          = "internal"
)

// ErrUnknownMethod возвращается для неизвестного метода.
var ErrUnknownMethod = errors.New("unknown method")

var codeErrors = []struct {
	code string
	err  error
}{
	{CodeNotFound, model.ErrNotFound},
	{CodeGameExists, model.ErrGameExists},
	{CodeInvalidGameName, model.ErrInvalidGameName},
	{CodePromptLocked, model.ErrPromptLocked},
	{CodeMalformedDocument, gamedata.ErrMalformedDocument},
	{CodeInvalidInput, model.ErrInvalidInput},
	{CodeInvalidInput, model.ErrBadRequest},
	{CodeUnauthorized, model.ErrUnauthorized},
	{CodeUnauthorized, model.ErrTokenInvalid},
	{CodeUnauthorized, model.ErrTokenExpired},
	{CodeUnauthorized, model.ErrTokenMalformed},
	{CodeForbidden, model.ErrForbidden},
	{CodeUnknownMethod, ErrUnknownMethod},
}

// CodeFor подбирает код для ошибки сервиса.
func CodeFor(err error) string {
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return ce.code
		}
	}
	return CodeInternal
}

// ErrorForCode возвращает сигнальную ошибку для кода или nil.
func ErrorForCode(code string) error {
	for _, ce := range codeErrors {
		if ce.code == code {
			return ce.err
		}
	}
	return nil
}

// Resolve строит успешный ответ.
func Resolve(id uint64, data any) (Response, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal %T: %w", data, err)
	}
	return Response{ID: id, Resolved: true, Data: raw}, nil
}

// Reject строит ответ-отказ.
func Reject(id uint64, code, message string) Response {
	raw, _ := json.Marshal(ErrorData{Code: code, Message: message})
	return Response{ID: id, Resolved: false, Data: raw}
}

// DecodeArgs раскладывает аргументы по dst. Лишние аргументы игнорируются.
func DecodeArgs(args []json.RawMessage, dst ...any) error {
	if len(args) < len(dst) {
		return fmt.Errorf("%w: expected %d arguments, got %d", model.ErrInvalidInput, len(dst), len(args))
	}
	for i, d := range dst {
		if err := json.Unmarshal(args[i], d); err != nil {
			if errors.Is(err, gamedata.ErrMalformedDocument) {
				return err
			}
			return fmt.Errorf("%w: argument %d: %v", model.ErrInvalidInput, i, err)
		}
	}
	return nil
}

// EncodeArgs сериализует аргументы вызова.
func EncodeArgs(args ...any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(args))
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal argument %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}
