package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/parinfer/core"
)

// run mirrors what a JSON host does with one request.
func run(input []byte) []byte {
	req, err := Decode(input)
	if err != nil {
		return Encode(core.AnswerFromError(err))
	}
	return Encode(Process(req))
}

func decodeAnswer(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m), string(out))
	return m
}

func errorName(t *testing.T, m map[string]any) string {
	t.Helper()
	e, ok := m["error"].(map[string]any)
	require.True(t, ok, "expected an error object, got %v", m["error"])
	return e["name"].(string)
}

func TestRun(t *testing.T) {
	out := run([]byte(`{"mode":"indent","text":"(def x\n  1","options":{}}`))
	m := decodeAnswer(t, out)

	assert.Equal(t, true, m["success"])
	assert.Equal(t, "(def x\n  1)", m["text"])
	assert.Nil(t, m["error"])
	assert.Equal(t, []any{}, m["tabStops"])
}

func TestRun_OptionsDefaultWhenOmitted(t *testing.T) {
	out := run([]byte(`{"mode":"indent","text":"(a ; )\n b"}`))
	m := decodeAnswer(t, out)
	assert.Equal(t, true, m["success"], string(out))
	assert.Equal(t, "(a ; )\n b)", m["text"])
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  core.ErrorName
	}{
		{"invalid utf8", []byte("{\"mode\":\"indent\",\"text\":\"\xff\"}"), core.ErrUTF8},
		{"malformed json", []byte(`{"mode":`), core.ErrJSON},
		{"wrong type", []byte(`{"mode":"indent","text":42}`), core.ErrJSON},
		{"bad mode", []byte(`{"mode":"sideways","text":"(a"}`), core.ErrJSON},
		{"long comment char", []byte(`{"mode":"indent","text":"","options":{"commentChar":";;"}}`), core.ErrJSON},
		{"empty delimiter", []byte(`{"mode":"indent","text":"","options":{"stringDelimiters":[""]}}`), core.ErrJSON},
		{"engine error", []byte(`{"mode":"paren","text":"(a"}`), core.ErrUnclosedParen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeAnswer(t, run(tt.input))
			assert.Equal(t, false, m["success"])
			assert.Equal(t, string(tt.want), errorName(t, m))
		})
	}
}

func TestDecode_UTF8Offset(t *testing.T) {
	_, err := Decode([]byte("ab\xc3"))
	require.NotNil(t, err)
	assert.Equal(t, core.ErrUTF8, err.Name)
	assert.Contains(t, err.Message, "byte 2")
}

func TestProcess_RecoversPanic(t *testing.T) {
	orig := process
	defer func() { process = orig }()
	process = func(core.Request) core.Answer { panic("boom") }

	answer := Process(core.Request{Mode: core.ModeIndent, Text: "(a"})
	assert.False(t, answer.Success)
	require.NotNil(t, answer.Error)
	assert.Equal(t, core.ErrPanic, answer.Error.Name)
	assert.Equal(t, "Internal error (please report!)", answer.Error.Message)
	assert.Equal(t, "(a", answer.Text)
}

func TestRun_PrevTextDrivesChanges(t *testing.T) {
	in := `{"mode":"smart","text":"(ab (b\n     c))","options":{"prevText":"(a (b\n     c))","cursorX":3,"cursorLine":0}}`
	m := decodeAnswer(t, run([]byte(in)))
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "(ab (b\n      c))", m["text"])
}
