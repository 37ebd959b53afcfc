package rpc

import (
	"encoding/json"
	"fmt"
	"testing"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFor(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("saving: %w", model.ErrGameExists): CodeGameExists,
		model.ErrTokenExpired:                         CodeUnauthorized,
		gamedata.ErrMalformedDocument:                 CodeMalformedDocument,
		ErrUnknownMethod:                              CodeUnknownMethod,
		fmt.Errorf("boom"):                            CodeInternal,
	}
	for err, code := range cases {
		assert.Equal(t, code, CodeFor(err), err.Error())
	}
}

func TestErrorForCode(t *testing.T) {
	assert.Equal(t, model.ErrPromptLocked, ErrorForCode(CodePromptLocked))
	assert.Equal(t, model.ErrUnauthorized, ErrorForCode(CodeUnauthorized))
	assert.Nil(t, ErrorForCode(CodeInternal))
}

func TestArgsRoundTrip(t *testing.T) {
	game := gamedata.NewGame("g", "a")
	args, err := EncodeArgs("Flood", game, []int{1, 2})
	require.NoError(t, err)

	var (
		name    string
		decoded gamedata.Game
		indices []int
	)
	require.NoError(t, DecodeArgs(args, &name, &decoded, &indices))
	assert.Equal(t, "Flood", name)
	assert.Equal(t, "a", decoded.Author)
	assert.Equal(t, []int{1, 2}, indices)

	assert.ErrorIs(t, DecodeArgs(args[:1], &name, &decoded), model.ErrInvalidInput)
	assert.ErrorIs(t, DecodeArgs([]json.RawMessage{[]byte(`5`)}, &name), model.ErrInvalidInput)
	assert.ErrorIs(t, DecodeArgs([]json.RawMessage{[]byte(`"x"`)}, &decoded), gamedata.ErrMalformedDocument)
}

func TestRejectAndResolve(t *testing.T) {
	resp := Reject(7, CodeNotFound, "game missing")
	assert.False(t, resp.Resolved)
	assert.JSONEq(t, `{"code":"not_found","message":"game missing"}`, string(resp.Data))

	ok, err := Resolve(8, map[string]bool{"ok": true})
	require.NoError(t, err)
	assert.True(t, ok.Resolved)
	assert.Equal(t, uint64(8), ok.ID)
}
