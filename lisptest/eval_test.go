package lisptest

import (
	"testing"
)

func TestEval(t *testing.T) {
	tests := TestSuite{
		{"self evaluation", TestSequence{
			{"3", "3"},
			{"-5", "-5"},
			{"1.5", "1.5"},
			{"1e3", "1000.0"},
			{`"hello"`, `"hello"`},
			{"t", "t"},
			{"nil", "nil"},
			{"()", "nil"},
			{":keyword", ":keyword"},
			{"[1 2 3]", "[1 2 3]"},
		}},
		{"quotes", TestSequence{
			{"'3", "3"},
			{"'foo", "foo"},
			{"''3", "(quote 3)"},
			{"'(1 2 3)", "(1 2 3)"},
			{"'(1 . 2)", "(1 . 2)"},
			{"'(1 2 . 3)", "(1 2 . 3)"},
			{"'()", "nil"},
		}},
		{"arithmetic", TestSequence{
			{"(+ 1 2)", "3"},
			{"(+)", "0"},
			{"(+ 1 2.5)", "3.5"},
			{"(- 7 2 1)", "4"},
			{"(- 3)", "-3"},
			{"(*)", "1"},
			{"(* 2 3 4)", "24"},
			{"(/ 7 2)", "3"},
			{"(/ 7.0 2)", "3.5"},
			{"(/ -7 2)", "-3"},
			{"(+ (* 2 3) (/ 8 2))", "10"},
		}},
		{"comparison", TestSequence{
			{"(< 1 2 3)", "t"},
			{"(< 1 3 2)", "nil"},
			{"(<= 1 1 2)", "t"},
			{"(> 3 2 1)", "t"},
			{"(>= 3 3 1)", "t"},
			{"(= 2 2.0)", "t"},
			{"(= 2 3)", "nil"},
		}},
		{"lists", TestSequence{
			{"(cons 1 2)", "(1 . 2)"},
			{"(car '(1 2))", "1"},
			{"(cdr '(1 2))", "(2)"},
			{"(car nil)", "nil"},
			{"(cdr nil)", "nil"},
			{"(list 1 2 3)", "(1 2 3)"},
			{"(list)", "nil"},
			{"(length '(1 2 3))", "3"},
			{"(length nil)", "0"},
			{`(length "hello")`, "5"},
			{"(nth 1 '(a b c))", "b"},
			{"(nth 5 '(a b c))", "nil"},
			{"(nth 0 nil)", "nil"},
		}},
		{"predicates", TestSequence{
			{"(eq 'a 'a)", "t"},
			{"(eq '(1) '(1))", "nil"},
			{"(eq nil '())", "t"},
			{"(equal '(1 2 (3)) '(1 2 (3)))", "t"},
			{"(equal '(1 2) '(1 2 3))", "nil"},
			{"(not nil)", "t"},
			{"(not 3)", "nil"},
		}},
		{"eval", TestSequence{
			{"(eval '(+ 1 2))", "3"},
			{"(eval ''foo)", "foo"},
			{"(eval 3)", "3"},
		}},
		{"funcall and apply", TestSequence{
			{"(funcall #'+ 1 2)", "3"},
			{"(funcall #'(lambda (x) (* x x)) 5)", "25"},
			{"(apply #'+ 1 '(2 3))", "6"},
			{"(apply #'list 1 2 '(3 4))", "(1 2 3 4)"},
			{"(apply #'+ nil)", "0"},
		}},
		{"closure construction", TestSequence{
			{"(function (lambda))", "(closure (t))"},
			{"(function (lambda (x) x))", "(closure (t) (x) x)"},
			{"(let ((y 1)) (function (lambda (x) x)))", "(closure ((y . 1) t) (x) x)"},
			{"(function foo)", "foo"},
			{"(function 3)", "3"},
		}},
		{"closure arguments", TestSequence{
			{"(funcall #'(lambda (a &optional b) (list a b)) 1)", "(1 nil)"},
			{"(funcall #'(lambda (a &optional b) (list a b)) 1 2)", "(1 2)"},
			{"(funcall #'(lambda (a &rest r) (cons a r)) 1 2 3)", "(1 2 3)"},
			{"(funcall #'(lambda (&rest r) r))", "nil"},
			{"(funcall #'(lambda (a &optional b &rest r) (list a b r)) 1)", "(1 nil nil)"},
			{"(funcall #'(lambda (a &optional b &rest r) (list a b r)) 1 2 3 4)", "(1 2 (3 4))"},
		}},
		{"printing", TestSequence{
			{`(prin1-to-string '(1 "two" 3))`, `"(1 \"two\" 3)"`},
			{"(prin1-to-string 'sym)", `"sym"`},
			{"(prin1-to-string nil)", `"nil"`},
		}},
		{"type-of", TestSequence{
			{"(type-of 1)", "integer"},
			{"(type-of 1.0)", "float"},
			{"(type-of 'a)", "symbol"},
			{"(type-of nil)", "symbol"},
			{"(type-of t)", "symbol"},
			{`(type-of "s")`, "string"},
			{"(type-of '(1))", "cons"},
			{"(type-of [1])", "vector"},
			{"(type-of (symbol-function 'car))", "subr"},
		}},
	}
	RunTestSuite(t, tests)
}

func TestEvalComments(t *testing.T) {
	tests := TestSuite{
		{"comments", TestSequence{
			{"; leading note\n(+ 1 2)", "3"},
			{"(+ 1 ; inline\n 2)", "3"},
		}},
	}
	RunTestSuite(t, tests)
}
