package makerule

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteLenNoSpecialChars(t *testing.T) {
	quoted, n := QuoteLen("plain.s")
	assert.Equal(t, "plain.s", quoted)
	assert.Equal(t, len("plain.s"), n)
}

func TestQuoteLenDollar(t *testing.T) {
	quoted, n := QuoteLen("a$b")
	assert.Equal(t, "a$$b", quoted)
	assert.Equal(t, 4, n)
}

func TestQuoteLenSpace(t *testing.T) {
	quoted, _ := QuoteLen("a b")
	assert.Equal(t, `a\ b`, quoted)
}

func TestQuoteLenBackslashBeforeSpace(t *testing.T) {
	// a, backslash, space, b -> N=1 trailing backslash becomes 2N+1=3
	// backslashes before the space.
	quoted, _ := QuoteLen("a\\ b")
	assert.Equal(t, "a\\\\\\ b", quoted)
}

func TestQuoteLenTrailingBackslashesNoSpace(t *testing.T) {
	quoted, n := QuoteLen(`a\\b`)
	assert.Equal(t, `a\\b`, quoted)
	assert.Equal(t, 4, n)
}

func TestQuoteLenNulTerminates(t *testing.T) {
	quoted, n := QuoteLen("abc\x00def")
	assert.Equal(t, "abc", quoted)
	assert.Equal(t, 3, n)
}

func TestWriteRuleSimple(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{W: &buf}
	_, err := w.WriteRule("out.o", []string{"a.s", "b.s"})
	require.NoError(t, err)
	assert.Equal(t, "out.o: a.s b.s\n", buf.String())
}

func TestWriteRuleWrapsLongDeps(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{W: &buf}
	deps := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		"c",
	}
	_, err := w.WriteRule("o", deps)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, " \\\n ")

	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\\\n") {
		assert.LessOrEqual(t, len(line), MaxColumns)
	}
}

func TestWriteRuleDryRunCountsWithoutWriting(t *testing.T) {
	dry := &Writer{W: io.Discard}
	n, err := dry.WriteRule("out.o", []string{"a.s", "b.s"})
	require.NoError(t, err)

	var buf bytes.Buffer
	real := &Writer{W: &buf}
	_, err = real.WriteRule("out.o", []string{"a.s", "b.s"})
	require.NoError(t, err)

	assert.Equal(t, buf.Len(), n)
}
