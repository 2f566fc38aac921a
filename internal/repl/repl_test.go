package repl

import "testing"

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{`var a = 1;`, false},
		{`print(a);`, false},
		{`fun add(a, b) {`, true},
		{`fun add(a, b) { return a + b; }`, false},
		{`print(foo(`, true},
		{`"unterminated`, true},
		{`"closed"`, false},
		{`{ { } `, true},
		{`{ { } }`, false},
		// 注释里的括号不计
		{`var a = 1; // (unbalanced {`, false},
		// 字符串里的括号不计
		{`var s = "({";`, false},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}
