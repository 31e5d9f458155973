package parser_test

import (
	"testing"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/VitalyAnkh/rune/parser"
	"github.com/VitalyAnkh/rune/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"5", "5"},
		{"-5", "-5"},
		{"+5", "5"},
		{"1.5", "1.5"},
		{"-1.5", "-1.5"},
		{"1e3", "1000.0"},
		{"1.5e2", "150.0"},
		{`"foo"`, `"foo"`},
		{`"a\nb"`, `"a\nb"`},
		{`"say \"hi\""`, `"say \"hi\""`},
		{"foo", "foo"},
		{"foo-bar", "foo-bar"},
		{"let*", "let*"},
		{"&rest", "&rest"},
		{":key", ":key"},
		{"nil", "nil"},
		{"t", "t"},
		{"(1 2 3)", "(1 2 3)"},
		{"()", "nil"},
		{"( )", "nil"},
		{"(1 . 2)", "(1 . 2)"},
		{"(1 2 . 3)", "(1 2 . 3)"},
		{"(1 . (2 . (3 . nil)))", "(1 2 3)"},
		{"((1) (2))", "((1) (2))"},
		{"(1 (2 (3)))", "(1 (2 (3)))"},
		{"'x", "(quote x)"},
		{"''x", "(quote (quote x))"},
		{"'(1 2)", "(quote (1 2))"},
		{"#'car", "(function car)"},
		{"#'(lambda (x) x)", "(function (lambda (x) x))"},
		{"[1 2 [3]]", "[1 2 [3]]"},
		{"[]", "[]"},
		{`[1 2.5 "three" four]`, `[1 2.5 "three" four]`},
		{"#s(point 1 2)", "#s(point 1 2)"},
		{"; note\n5", "5"},
		{"(1 ; note\n 2)", "(1 2)"},
		{";; header\n;; more\n(+ 1 2)", "(+ 1 2)"},
	}
	for _, test := range tests {
		cx := lisp.NewArena()
		table := symbol.CopyGlobalTable()
		root, _, err := parser.Parse(cx, table, []byte(test.text))
		if !assert.NoError(t, err, "text: %s", test.text) {
			continue
		}
		if !assert.NotNil(t, root, "text: %s", test.text) {
			continue
		}
		assert.Equal(t, test.want, lisp.FormatString(root.Bind(), table), "text: %s", test.text)
		root.Release()
	}
}

func TestParseNilAndTrueConstants(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()
	root, _, err := parser.Parse(cx, table, []byte("nil"))
	require.NoError(t, err)
	assert.True(t, lisp.IsNil(root.Bind()))
	root.Release()

	root, _, err = parser.Parse(cx, table, []byte("t"))
	require.NoError(t, err)
	assert.True(t, lisp.Eq(lisp.True(), root.Bind()))
	root.Release()
}

func TestParseRest(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()

	root1, rest, err := parser.Parse(cx, table, []byte("1 (2 3) x"))
	require.NoError(t, err)
	assert.Equal(t, "1", lisp.FormatString(root1.Bind(), table))

	root2, rest, err := parser.Parse(cx, table, rest)
	require.NoError(t, err)
	assert.Equal(t, "(2 3)", lisp.FormatString(root2.Bind(), table))

	root3, rest, err := parser.Parse(cx, table, rest)
	require.NoError(t, err)
	assert.Equal(t, "x", lisp.FormatString(root3.Bind(), table))

	root4, rest, err := parser.Parse(cx, table, rest)
	require.NoError(t, err)
	assert.Nil(t, root4)
	assert.Nil(t, rest)

	root3.Release()
	root2.Release()
	root1.Release()
}

func TestParseOnlyCommentText(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()
	root, rest, err := parser.Parse(cx, table, []byte("  ; just a note\n"))
	require.NoError(t, err)
	assert.Nil(t, root)
	assert.Nil(t, rest)
}

func TestParseAll(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()
	vs, err := parser.ParseAll(cx, table, []byte(`(1 2) [3] "s" foo`))
	require.NoError(t, err)
	require.Equal(t, 4, vs.Len())

	cx.Collect(true) // parsed values are rooted and must survive

	assert.Equal(t, "(1 2)", lisp.FormatString(vs.At(0), table))
	assert.Equal(t, "[3]", lisp.FormatString(vs.At(1), table))
	assert.Equal(t, `"s"`, lisp.FormatString(vs.At(2), table))
	assert.Equal(t, "foo", lisp.FormatString(vs.At(3), table))
	vs.Release()
}

func TestParsePartial(t *testing.T) {
	texts := []string{
		"(foo",
		"(foo (bar)",
		"[1 2",
		`"abc`,
		`(a "b`,
		"'",
		"#'",
		"'(1 2",
	}
	for _, text := range texts {
		cx := lisp.NewArena()
		table := symbol.CopyGlobalTable()
		_, err := parser.ParseAll(cx, table, []byte(text))
		assert.ErrorIs(t, err, parser.ErrPartial, "text: %s", text)
	}
}

func TestParseErrors(t *testing.T) {
	texts := []string{
		")",
		"]",
		"(1))",
		".",
		"(1 . 2 3)",
		"(. 2)",
		"#s()",
		`"a\qb"`,
	}
	for _, text := range texts {
		cx := lisp.NewArena()
		table := symbol.CopyGlobalTable()
		_, err := parser.ParseAll(cx, table, []byte(text))
		if assert.Error(t, err, "text: %s", text) {
			assert.NotErrorIs(t, err, parser.ErrPartial, "text: %s", text)
		}
	}
}

func TestParseConst(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()
	vs, err := parser.ParseConst(cx, table, []byte("(1 2)"))
	require.NoError(t, err)
	require.Equal(t, 1, vs.Len())

	c, ok := lisp.GetCons(vs.At(0))
	require.True(t, ok)
	err = c.SetCar(lisp.Int(9))
	require.Error(t, err)
	assert.ErrorIs(t, err, lisp.ErrImmutable)
	vs.Release()
}

func TestParseAllMutable(t *testing.T) {
	cx := lisp.NewArena()
	table := symbol.CopyGlobalTable()
	vs, err := parser.ParseAll(cx, table, []byte("(1 2)"))
	require.NoError(t, err)
	require.Equal(t, 1, vs.Len())

	c, ok := lisp.GetCons(vs.At(0))
	require.True(t, ok)
	require.NoError(t, c.SetCar(lisp.Int(9)))
	assert.Equal(t, "(9 2)", lisp.FormatString(vs.At(0), table))
	vs.Release()
}

var benchSource = []byte(`
;; list heavy sample program
(defvar scale 10)
(defalias 'twice #'(lambda (x) (+ x x)))
(let ((acc nil) (n 100))
  (while (< 0 n)
    (setq acc (cons (twice n) acc))
    (setq n (- n 1)))
  acc)
[1 2.5 "three" four]
(condition-case e (error "boom") (error e))
`)

func BenchmarkParseAll(b *testing.B) {
	table := symbol.CopyGlobalTable()
	for i := 0; i < b.N; i++ {
		cx := lisp.NewArena()
		vs, err := parser.ParseAll(cx, table, benchSource)
		if err != nil {
			b.Fatal(err)
		}
		vs.Release()
	}
}
