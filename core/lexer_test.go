package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		enable func(*Options)
	}{
		{
			name:   "lisp block comment",
			text:   "(foo #| ) |# bar)",
			enable: func(o *Options) { o.LispBlockComments = true },
		},
		{
			name:   "nested lisp block comment",
			text:   "(foo #| #| ) |# ) |# bar)",
			enable: func(o *Options) { o.LispBlockComments = true },
		},
		{
			name:   "guile block comment",
			text:   "(foo #! ) !# bar)",
			enable: func(o *Options) { o.GuileBlockComments = true },
		},
		{
			name:   "vertical line symbol",
			text:   "(foo |a ) b| bar)",
			enable: func(o *Options) { o.LispVlineSymbols = true },
		},
		{
			name:   "janet long string",
			text:   "(foo `` ` ) `` bar)",
			enable: func(o *Options) { o.JanetLongStrings = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.enable(&opts)
			answer := ParenMode(tt.text, opts)
			require.True(t, answer.Success, "enabled: %+v", answer.Error)
			assert.Equal(t, tt.text, answer.Text)

			plain := ParenMode(tt.text, DefaultOptions())
			require.False(t, plain.Success, "disabled dialect should see a stray close-paren")
			assert.Equal(t, ErrUnmatchedCloseParen, plain.Error.Name)
		})
	}
}

func TestDialects_NearMissSyntaxIsCode(t *testing.T) {
	inputs := []string{
		"(foo #(bar) baz)",
		"(foo #|bar| baz)",
		"(foo #!bar baz)",
		"(foo #_bar `baz`)",
	}
	for _, in := range inputs {
		answer := ParenMode(in, DefaultOptions())
		assert.True(t, answer.Success, in)
		assert.Equal(t, in, answer.Text)
	}
}

func TestDialects_ReaderSyntaxBacktracks(t *testing.T) {
	opts := DefaultOptions()
	opts.LispBlockComments = true

	answer := ParenMode("(foo #(bar) baz)", opts)
	require.True(t, answer.Success)

	answer = IndentMode("(foo #(bar", opts)
	require.True(t, answer.Success)
	assert.Equal(t, "(foo #(bar))", answer.Text)
}

func TestDialects_SchemeSexpComment(t *testing.T) {
	opts := DefaultOptions()
	opts.SchemeSexpComments = true

	answer := IndentMode("(foo #;(bar", opts)
	require.True(t, answer.Success)
	assert.Equal(t, "(foo #;(bar))", answer.Text)
}

func TestDialects_UnclosedBlockComment(t *testing.T) {
	opts := DefaultOptions()
	opts.LispBlockComments = true

	answer := ParenMode("(foo #| bar)", opts)
	require.False(t, answer.Success)
	assert.Equal(t, ErrUnclosedQuote, answer.Error.Name)
}

func TestCustomDelimiters(t *testing.T) {
	opts := DefaultOptions()
	opts.CommentChar = "#"
	opts.StringDelimiters = []string{`"`, "'"}

	answer := ParenMode("(foo # )\n 'a)' bar)", opts)
	require.True(t, answer.Success, "%+v", answer.Error)
	assert.Equal(t, "(foo # )\n 'a)' bar)", answer.Text)
}

func TestClassify(t *testing.T) {
	d := newDialect(&Options{LispBlockComments: true})

	ctx, ev := d.classify(codeContext, "#")
	assert.Equal(t, inLispReaderSyntax, ctx.kind)
	assert.Equal(t, evNone, ev)

	ctx, ev = d.classify(ctx, "(")
	assert.Equal(t, codeContext, ctx)
	assert.Equal(t, evOpenParen, ev)

	ctx, _ = d.classify(lexContext{kind: inLispReaderSyntax}, "|")
	assert.Equal(t, lexContext{kind: inLispBlockComment, depth: 1}, ctx)

	ctx, _ = d.classify(ctx, "#")
	ctx, _ = d.classify(ctx, "|")
	assert.Equal(t, lexContext{kind: inLispBlockComment, depth: 2}, ctx)

	ctx, _ = d.classify(ctx, "|")
	ctx, _ = d.classify(ctx, "#")
	assert.Equal(t, lexContext{kind: inLispBlockComment, depth: 1}, ctx)

	ctx, _ = d.classify(ctx, "|")
	ctx, _ = d.classify(ctx, "#")
	assert.Equal(t, codeContext, ctx)

	_, ev = d.classify(codeContext, ";")
	assert.Equal(t, evCommentStart, ev)
	_, ev = d.classify(lexContext{kind: inComment}, `"`)
	assert.Equal(t, evCommentQuote, ev)
}

func TestClassify_JanetFenceLength(t *testing.T) {
	d := newDialect(&Options{JanetLongStrings: true})

	ctx, ev := d.classify(codeContext, "`")
	assert.Equal(t, evStringStart, ev)
	ctx, _ = d.classify(ctx, "`")
	ctx, _ = d.classify(ctx, "a")
	assert.Equal(t, lexContext{kind: inJanetLongString, openDelimLen: 2}, ctx)

	ctx, _ = d.classify(ctx, "`")
	ctx, _ = d.classify(ctx, "b")
	assert.Equal(t, lexContext{kind: inJanetLongString, openDelimLen: 2}, ctx, "a short fence does not close")

	ctx, _ = d.classify(ctx, "`")
	ctx, _ = d.classify(ctx, "`")
	assert.Equal(t, codeContext, ctx)
}
