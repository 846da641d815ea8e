package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_RoundTripsKnownTypes(t *testing.T) {
	t.Parallel()
	msg := Waiting{Type: TypeWaiting, PlayerCount: 2, Names: []string{"a", "b"}}
	raw, err := Marshal(&msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"waiting"`)
	assert.Contains(t, string(raw), `"player_count":2`)

	var back Waiting
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, msg, back)
}

func TestMarshal_RejectsUnknownType(t *testing.T) {
	t.Parallel()
	_, err := Marshal(struct{ Foo string }{Foo: "bar"})
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestPeekType_ReadsTypeWithoutFullDecode(t *testing.T) {
	t.Parallel()
	typ, err := PeekType([]byte(`{"type":"join","name":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "join", typ)
}

func TestPeekType_InvalidJSON(t *testing.T) {
	t.Parallel()
	_, err := PeekType([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseJoin_ValidName(t *testing.T) {
	t.Parallel()
	j, err := ParseJoin([]byte(`{"type":"join","name":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", j.Name)
}

func TestParseJoin_RejectsEmptyName(t *testing.T) {
	t.Parallel()
	_, err := ParseJoin([]byte(`{"type":"join","name":""}`))
	assert.Error(t, err)
}

func TestParseJoin_RejectsNameOver32CodePoints(t *testing.T) {
	t.Parallel()
	name := strings.Repeat("a", 33)
	_, err := ParseJoin([]byte(`{"type":"join","name":"` + name + `"}`))
	assert.Error(t, err)
}

func TestParseJoin_AcceptsNameAtBoundary(t *testing.T) {
	t.Parallel()
	name := strings.Repeat("a", 32)
	_, err := ParseJoin([]byte(`{"type":"join","name":"` + name + `"}`))
	assert.NoError(t, err)
}

func TestParseJoin_CountsCodePointsNotBytes(t *testing.T) {
	t.Parallel()
	// 32 multi-byte code points - well over 32 bytes, but exactly the
	// code-point limit, so this must be accepted.
	name := strings.Repeat("é", 32)
	_, err := ParseJoin([]byte(`{"type":"join","name":"` + name + `"}`))
	assert.NoError(t, err)
}

func TestParseAction_FoldCheckCallRequireNoAmount(t *testing.T) {
	t.Parallel()
	for _, typ := range []string{"fold", "check", "call"} {
		a, err := ParseAction([]byte(`{"type":"action","action":{"type":"` + typ + `"}}`))
		require.NoError(t, err, typ)
		assert.Equal(t, typ, a.Action.Type)
	}
}

func TestParseAction_RaiseRequiresAmount(t *testing.T) {
	t.Parallel()
	_, err := ParseAction([]byte(`{"type":"action","action":{"type":"raise"}}`))
	assert.Error(t, err)
}

func TestParseAction_RaiseWithAmount(t *testing.T) {
	t.Parallel()
	a, err := ParseAction([]byte(`{"type":"action","action":{"type":"raise","amount":500}}`))
	require.NoError(t, err)
	require.NotNil(t, a.Action.Amount)
	assert.Equal(t, 500, *a.Action.Amount)
}

func TestParseAction_RejectsUnknownActionType(t *testing.T) {
	t.Parallel()
	_, err := ParseAction([]byte(`{"type":"action","action":{"type":"allin"}}`))
	assert.Error(t, err)
}

func TestIntPtr(t *testing.T) {
	t.Parallel()
	p := IntPtr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}
