package runtime

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/tangzhangming/lox/internal/errors"
)

func TestMain(m *testing.M) {
	// 诊断输出断言依赖无色文本
	errors.SetColorsEnabled(false)
	os.Exit(m.Run())
}

// run 运行一段源代码，返回程序输出和诊断输出
func run(t *testing.T, source string) (string, string, *Runtime) {
	t.Helper()

	var stdout, diag bytes.Buffer
	rt := NewWithOptions(Options{
		Stdout:   &stdout,
		Reporter: errors.NewReporterTo(&diag),
	})
	rt.Run(source, "test.lox")
	return stdout.String(), diag.String(), rt
}

// expectOutput 运行源代码并断言完整的标准输出
func expectOutput(t *testing.T, source, expected string) {
	t.Helper()

	stdout, diag, rt := run(t, source)
	if rt.HadError() || rt.HadRuntimeError() {
		t.Fatalf("unexpected diagnostics:\n%s", diag)
	}
	if stdout != expected {
		t.Errorf("expected output %q, got %q", expected, stdout)
	}
}

// expectRuntimeError 运行源代码并断言出现指定的运行时错误
func expectRuntimeError(t *testing.T, source, message string) {
	t.Helper()

	_, diag, rt := run(t, source)
	if !rt.HadRuntimeError() {
		t.Fatalf("%q: expected a runtime error", source)
	}
	if !strings.Contains(diag, message) {
		t.Errorf("%q: diagnostics %q do not contain %q", source, diag, message)
	}
}

// ============================================================================
// 端到端场景
// ============================================================================

func TestClosureCapturesByReference(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var c = makeCounter();
print(c()); print(c()); print(c());
`, "1\n2\n3\n")
}

func TestInheritanceAndSuper(t *testing.T) {
	expectOutput(t, `
class A { hello() { return "A"; } }
class B < A { hello() { return "B/" + super.hello(); } }
print(B().hello());
`, "B/A\n")
}

func TestInitializerReturnsInstance(t *testing.T) {
	expectOutput(t, `
class Box { init(v) { this.v = v; return; } }
print(Box(7).v);
`, "7\n")
}

func TestForLoop(t *testing.T) {
	expectOutput(t, `
for (var i = 0; i < 3; i = i + 1) print(i);
`, "0\n1\n2\n")
}

func TestCompoundAssignment(t *testing.T) {
	expectOutput(t, `
var a = 10; a += 5; a *= 2; print(a);
class K { init() { this.x = 1; } }
var k = K(); k.x += 41; print(k.x);
`, "30\n42\n")
}

func TestStaticScopingAcrossShadowing(t *testing.T) {
	expectOutput(t, `
var a = "global";
{
  fun show() { print(a); }
  show();
  var a = "local";
  show();
}
`, "global\nglobal\n")
}

// ============================================================================
// 求值语义
// ============================================================================

func TestArithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print(1 + 2 * 3);`, "7\n"},
		{`print(10 / 4);`, "2.5\n"},
		{`print(10 % 3);`, "1\n"},
		{`print(-5 + 3);`, "-2\n"},
		{`print(1 / 0);`, "+Inf\n"},
		{`print(-1 / 0);`, "-Inf\n"},
		{`print(0 / 0);`, "NaN\n"},
		{`print(0.1 + 0.2);`, "0.30000000000000004\n"},
	}

	for _, tt := range tests {
		expectOutput(t, tt.source, tt.expected)
	}
}

func TestStringConcatenation(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print("a" + "b");`, "ab\n"},
		{`print("n=" + 1);`, "n=1\n"},
		{`print(1 + "!");`, "1!\n"},
		{`print("v:" + nil);`, "v:nil\n"},
		{`print("b:" + true);`, "b:true\n"},
	}

	for _, tt := range tests {
		expectOutput(t, tt.source, tt.expected)
	}
}

func TestComparisonAndEquality(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print(1 < 2);`, "true\n"},
		{`print(2 <= 2);`, "true\n"},
		{`print(3 > 4);`, "false\n"},
		{`print(1 == 1);`, "true\n"},
		{`print(1 == "1");`, "false\n"},
		{`print("a" == "a");`, "true\n"},
		{`print(nil == nil);`, "true\n"},
		{`print(nil != false);`, "true\n"},
		{`fun f() {} print(f == f);`, "true\n"},
		{`class C {} print(C() == C());`, "false\n"},
		{`class C {} var a = C(); var b = a; print(a == b);`, "true\n"},
	}

	for _, tt := range tests {
		expectOutput(t, tt.source, tt.expected)
	}
}

func TestTruthiness(t *testing.T) {
	expectOutput(t, `
if (nil) print("nil"); else print("not nil");
if (false) print("false"); else print("not false");
if (0) print("zero is truthy");
if ("") print("empty is truthy");
print(!nil);
print(!0);
`, "not nil\nnot false\nzero is truthy\nempty is truthy\ntrue\nfalse\n")
}

func TestLogicalReturnsOperand(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print(nil or "fallback");`, "fallback\n"},
		{`print("left" or "right");`, "left\n"},
		{`print(nil and "never");`, "nil\n"},
		{`print(1 and 2);`, "2\n"},
		{`print(false or nil);`, "nil\n"},
	}

	for _, tt := range tests {
		expectOutput(t, tt.source, tt.expected)
	}
}

func TestShortCircuit(t *testing.T) {
	// 右操作数在短路时不求值
	expectOutput(t, `
var called = false;
fun sideEffect() { called = true; return true; }
var r = false and sideEffect();
print(called);
r = true or sideEffect();
print(called);
`, "false\nfalse\n")
}

func TestNonLocalReturn(t *testing.T) {
	// return 从任意深的嵌套中一路退出函数，对调用方不可见
	expectOutput(t, `
fun find() {
  var i = 0;
  while (true) {
    if (i == 5) {
      { return i; }
    }
    i = i + 1;
  }
}
print(find());
print("after");
`, "5\nafter\n")
}

func TestFunctionReturnsNilByDefault(t *testing.T) {
	expectOutput(t, `
fun noop() {}
print(noop());
`, "nil\n")
}

func TestClosuresShareEnvironment(t *testing.T) {
	// 多个闭包引用同一个环境，互相可见对方的赋值
	expectOutput(t, `
var inc; var get;
{
  var i = 0;
  fun bump() { i = i + 1; }
  fun read() { return i; }
  inc = bump; get = read;
}
inc(); inc();
print(get());
`, "2\n")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print(fib(10));
`, "55\n")
}

func TestBoundMethodKeepsThis(t *testing.T) {
	expectOutput(t, `
class P {
  init(n) { this.n = n; }
  greet() { return "hi " + this.n; }
}
var m = P("bob").greet;
print(m());
`, "hi bob\n")
}

func TestMethodInheritance(t *testing.T) {
	expectOutput(t, `
class A {
  name() { return "A"; }
  describe() { return "I am " + this.name(); }
}
class B < A {
  name() { return "B"; }
}
print(B().describe());
`, "I am B\n")
}

func TestInheritedInitializer(t *testing.T) {
	// init 在继承链上查找，构造调用的元数也跟着它
	expectOutput(t, `
class A { init(v) { this.v = v; } }
class B < A {}
print(B(9).v);
`, "9\n")
}

func TestFieldsShadowMethods(t *testing.T) {
	expectOutput(t, `
class C {
  m() { return "method"; }
}
var c = C();
c.m = 42;
print(c.m);
`, "42\n")
}

func TestStringification(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print(nil);`, "nil\n"},
		{`print(true);`, "true\n"},
		{`print(3.0);`, "3\n"},
		{`print(3.14);`, "3.14\n"},
		{`print("text");`, "text\n"},
		{`fun g() {} print(g);`, "<fun g>\n"},
		{`print(print);`, "<native fn>\n"},
		{`class C {} print(C);`, "<class C>\n"},
		{`class C {} print(C());`, "<C instance>\n"},
		{`print(Object);`, "<class Object>\n"},
		{`print(Object());`, "<Object instance>\n"},
	}

	for _, tt := range tests {
		expectOutput(t, tt.source, tt.expected)
	}
}

// ============================================================================
// 内置函数
// ============================================================================

func TestBuiltinInput(t *testing.T) {
	var stdout, diag bytes.Buffer
	rt := NewWithOptions(Options{
		Stdout:   &stdout,
		Stdin:    strings.NewReader("Alice\n"),
		Reporter: errors.NewReporterTo(&diag),
	})
	rt.Run(`print("hello " + input("name: "));`, "test.lox")

	if rt.HadError() || rt.HadRuntimeError() {
		t.Fatalf("unexpected diagnostics:\n%s", &diag)
	}
	if got := stdout.String(); got != "name: hello Alice\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestBuiltinInputAtEOF(t *testing.T) {
	var stdout bytes.Buffer
	rt := NewWithOptions(Options{
		Stdout:   &stdout,
		Stdin:    strings.NewReader(""),
		Reporter: errors.NewReporterTo(&bytes.Buffer{}),
	})
	rt.Run(`print(input("? ") + "|");`, "test.lox")

	if got := stdout.String(); got != "? |\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestBuiltinClock(t *testing.T) {
	expectOutput(t, `print(clock() > 0);`, "true\n")
}

// ============================================================================
// 运行时错误
// ============================================================================

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`print(nope);`, "Undefined variable 'nope'."},
		{`nope = 1;`, "Undefined variable 'nope'."},
		{`nope += 1;`, "Undefined variable 'nope'."},
		{`print(-nil);`, "Unary minus on nil is not supported."},
		{`print(-"s");`, "Operand must be a number."},
		{`print(1 - "s");`, "Operands must be numbers."},
		{`print(1 < "s");`, "Operands must be numbers."},
		{`print(1 + true);`, "Operands must be two numbers or two strings."},
		{`"text"();`, "Can only call functions and classes."},
		{`fun f(a, b) {} f(1);`, "Expected 2 arguments but got 1."},
		{`class Box { init(v) {} } Box();`, "Expected 1 arguments but got 0."},
		{`print(1.field);`, "Only instances have properties."},
		{`var s = "x"; s.field = 1;`, "Only instances have properties."},
		{`class C {} print(C().missing);`, "Undefined property 'missing'."},
		{`class C { init() { this.x = 1; } } var c = C(); c.missing += 1;`, "Undefined property 'missing'."},
		{`var x = 1; class A < x {}`, "Superclass must be a class."},
		{`class A {} class B < A { m() { return super.missing(); } } B().m();`, "Undefined property 'missing'."},
	}

	for _, tt := range tests {
		expectRuntimeError(t, tt.source, tt.expected)
	}
}

func TestRuntimeErrorStopsStatementList(t *testing.T) {
	stdout, _, rt := run(t, `print(1); nope; print(2);`)

	if !rt.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}
	if stdout != "1\n" {
		t.Errorf("expected execution to stop after the error, got output %q", stdout)
	}
}

func TestCompileErrorSkipsExecution(t *testing.T) {
	// 语法错误时求值器完全不运行
	stdout, _, rt := run(t, `print(1); var 2 = 3;`)

	if !rt.HadError() {
		t.Fatal("expected a compile error")
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestResolveErrorSkipsExecution(t *testing.T) {
	stdout, diag, rt := run(t, `print(1); return 2;`)

	if !rt.HadError() {
		t.Fatal("expected a compile error")
	}
	if !strings.Contains(diag, "Cannot return from top-level code.") {
		t.Errorf("unexpected diagnostics %q", diag)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

// ============================================================================
// 会话（REPL 语义）
// ============================================================================

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	var stdout, diag bytes.Buffer
	rt := NewWithOptions(Options{
		Stdout:   &stdout,
		Reporter: errors.NewReporterTo(&diag),
	})

	rt.Run(`var a = 1; fun next() { a = a + 1; return a; }`, "repl")
	rt.Run(`print(next());`, "repl")
	rt.Run(`print(next());`, "repl")

	if rt.HadError() || rt.HadRuntimeError() {
		t.Fatalf("unexpected diagnostics:\n%s", &diag)
	}
	if got := stdout.String(); got != "2\n3\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestErrorFlagsReset(t *testing.T) {
	var stdout bytes.Buffer
	rt := NewWithOptions(Options{
		Stdout:   &stdout,
		Reporter: errors.NewReporterTo(&bytes.Buffer{}),
	})

	rt.Run(`nope;`, "repl")
	if !rt.HadRuntimeError() {
		t.Fatal("expected a runtime error")
	}

	rt.ResetErrors()
	rt.Run(`print("ok");`, "repl")

	if rt.HadError() || rt.HadRuntimeError() {
		t.Error("flags should be clear after reset and a clean run")
	}
	if got := stdout.String(); got != "ok\n" {
		t.Errorf("unexpected output %q", got)
	}
}
