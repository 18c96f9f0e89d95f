// Package preprocessor selects the active branches of #if/#ifdef/#else
// blocks in a source file, the way the C preprocessor does, without
// expanding macros in ordinary lines.
package preprocessor

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fwessels/cppcond"
)

// Branch records the decision taken at one conditional directive.
type Branch struct {
	File      string
	Line      int
	Directive string // if, elif, ifdef, ifndef, else, endif
	Expr      string
	Taken     bool // the lines after the directive are active
}

type Preprocessor struct {
	// Macros is the caller's table. It is never modified; #define and
	// #undef only change a per-file copy.
	Macros cppcond.Macros
	Logger *zap.Logger
	Trace  bool

	// KeepDirectives writes conditional directives through instead of
	// replacing them with blank lines.
	KeepDirectives bool

	Branches []Branch
}

func NewPreprocessor(macros cppcond.Macros) *Preprocessor {
	return &Preprocessor{Macros: macros, Logger: zap.NewNop()}
}

// file is the state of one Process call.
type file struct {
	p    *Preprocessor
	name string
	log  *zap.Logger
	ev   *cppcond.Evaluator
	env  cppcond.Macros
	cond *condStack
	out  bytes.Buffer
}

// Process reads r, keeps the lines of active branches and writes them to w.
// Inactive lines and conditional directives become empty lines so that
// line numbers are preserved. Nothing is written if an error occurs.
func (p *Preprocessor) Process(filename string, r io.Reader, w io.Writer) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	f := &file{
		p:    p,
		name: filename,
		log:  log.With(zap.String("file", shortPath(filename))),
		ev:   cppcond.New(cppcond.WithLogger(log), cppcond.WithTrace(p.Trace)),
		env:  p.Macros.Clone(),
		cond: newCondStack(),
	}

	lr := newLineReader(r)
	lineNo := 0
	for {
		line, ok, err := lr.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		lineNo++

		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			if f.cond.Active() {
				f.out.WriteString(line)
			}
			f.out.WriteByte('\n')
			continue
		}

		start := lineNo
		full := []string{line}
		for lineContinues(line) {
			next, ok, err := lr.next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			lineNo++
			line = next
			full = append(full, next)
		}
		if err := f.directive(start, full); err != nil {
			return err
		}
	}

	if f.cond.Depth() != 0 {
		return fmt.Errorf("%s:%d: unclosed #%s", shortPath(filename), f.cond.UnclosedLine(), f.cond.UnclosedDirective())
	}
	_, err := w.Write(f.out.Bytes())
	return err
}

// directive handles one logical directive line spanning len(raw) physical
// lines starting at lineNo.
func (f *file) directive(lineNo int, raw []string) error {
	joined := make([]string, len(raw))
	for i, l := range raw {
		joined[i] = stripLineContinuation(l)
	}
	fields := splitDirective(strings.TrimSpace(strings.Join(joined, " ")))

	conditional := true
	switch fields.cmd {
	case "if":
		err := f.push(lineNo, fields, func() (bool, error) { return f.eval(lineNo, fields.arg) })
		if err != nil {
			return err
		}
	case "ifdef", "ifndef":
		err := f.push(lineNo, fields, func() (bool, error) {
			name := fields.arg
			if !cppcond.IsIdentifier(name) {
				return false, f.errorf(lineNo, "#%s: expected a macro name, got %q", fields.cmd, name)
			}
			_, ok := f.env.Lookup(name)
			return ok == (fields.cmd == "ifdef"), nil
		})
		if err != nil {
			return err
		}
	case "elif":
		top := f.cond.Top()
		switch {
		case top == nil:
			return f.errorf(lineNo, "#elif without #if")
		case top.sawElse:
			return f.errorf(lineNo, "#elif after #else")
		}
		v := false
		if top.parentActive && !top.taken {
			var err error
			if v, err = f.eval(lineNo, fields.arg); err != nil {
				return err
			}
		}
		f.cond.Elif(v)
		f.record(lineNo, fields, f.cond.Active())
	case "else":
		top := f.cond.Top()
		switch {
		case top == nil:
			return f.errorf(lineNo, "#else without #if")
		case top.sawElse:
			return f.errorf(lineNo, "#else after #else")
		}
		f.cond.Else()
		f.record(lineNo, fields, f.cond.Active())
	case "endif":
		if f.cond.Depth() == 0 {
			return f.errorf(lineNo, "#endif without #if")
		}
		f.cond.Pop()
		f.record(lineNo, fields, f.cond.Active())
	default:
		conditional = false
	}

	if !conditional && f.cond.Active() {
		switch fields.cmd {
		case "define":
			if err := f.define(lineNo, fields.arg); err != nil {
				return err
			}
		case "undef":
			if !cppcond.IsIdentifier(fields.arg) {
				return f.errorf(lineNo, "#undef: expected a macro name, got %q", fields.arg)
			}
			delete(f.env, fields.arg)
			f.log.Debug("undef", zap.Int("line", lineNo), zap.String("name", fields.arg))
		}
	}

	keep := (conditional && f.p.KeepDirectives) || (!conditional && f.cond.Active())
	for _, l := range raw {
		if keep {
			f.out.WriteString(l)
		}
		f.out.WriteByte('\n')
	}
	return nil
}

// push opens a new #if/#ifdef/#ifndef level. cond is only evaluated when
// the enclosing region is active.
func (f *file) push(lineNo int, fields directiveFields, cond func() (bool, error)) error {
	v := false
	if f.cond.Active() {
		var err error
		if v, err = cond(); err != nil {
			return err
		}
	}
	f.cond.Push(v, lineNo, fields.cmd)
	f.record(lineNo, fields, f.cond.Active())
	return nil
}

func (f *file) record(lineNo int, fields directiveFields, taken bool) {
	b := Branch{File: f.name, Line: lineNo, Directive: fields.cmd, Expr: fields.arg, Taken: taken}
	f.p.Branches = append(f.p.Branches, b)
	f.log.Debug("branch",
		zap.Int("line", lineNo),
		zap.String("directive", b.Directive),
		zap.String("expr", b.Expr),
		zap.Bool("taken", b.Taken))
}

func (f *file) eval(lineNo int, expr string) (bool, error) {
	if expr == "" {
		return false, f.errorf(lineNo, "missing expression")
	}
	v, err := f.ev.Evaluate(expr, f.env)
	if err != nil {
		return false, f.errorf(lineNo, "%w", err)
	}
	return v.Truthy(), nil
}

// define records NAME with the value of its body. An empty body is 1; a
// body that is not a valid expression, or a function-like macro, is 0 but
// still counts as defined.
func (f *file) define(lineNo int, arg string) error {
	name, params, body, ok := parseDefineDirective(arg)
	if !ok {
		return f.errorf(lineNo, "bad #define: %q", arg)
	}

	v := cppcond.Int(1)
	switch {
	case params != nil:
		v = cppcond.Int(0)
	case strings.TrimSpace(body) != "":
		var err error
		if v, err = f.ev.Evaluate(body, f.env); err != nil {
			f.log.Debug("define body is not an expression",
				zap.Int("line", lineNo), zap.String("name", name), zap.Error(err))
			v = cppcond.Int(0)
		}
	}
	if _, dup := f.env[name]; dup {
		f.log.Debug("redefined", zap.Int("line", lineNo), zap.String("name", name))
	}
	f.env[name] = v
	f.log.Debug("define", zap.Int("line", lineNo), zap.String("name", name), zap.Stringer("value", v))
	return nil
}

func (f *file) errorf(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%s:%d: "+format, append([]any{shortPath(f.name), lineNo}, args...)...)
}

type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next line without its newline; ok is false at EOF.
func (lr *lineReader) next() (line string, ok bool, err error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if len(s) == 0 && err == io.EOF {
		return "", false, nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r"), true, nil
}

func lineContinues(s string) bool {
	return strings.HasSuffix(strings.TrimRight(s, " \t"), "\\")
}

func stripLineContinuation(s string) string {
	t := strings.TrimRight(s, " \t")
	if strings.HasSuffix(t, "\\") {
		return strings.TrimRight(t[:len(t)-1], " \t")
	}
	return s
}

type directiveFields struct {
	cmd string
	arg string
}

func splitDirective(trim string) directiveFields {
	// trim begins with '#'
	trim = strings.TrimSpace(trim[1:])
	if trim == "" {
		return directiveFields{}
	}
	i := 0
	for i < len(trim) && isIdentPart(trim[i]) {
		i++
	}
	if i == 0 {
		return directiveFields{cmd: trim}
	}
	return directiveFields{cmd: trim[:i], arg: strings.TrimSpace(stripComment(trim[i:]))}
}

// stripComment removes a trailing // or /* */ comment from a directive.
func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	for {
		i := strings.Index(s, "/*")
		if i < 0 {
			return s
		}
		j := strings.Index(s[i+2:], "*/")
		if j < 0 {
			return s[:i]
		}
		s = s[:i] + " " + s[i+2+j+2:]
	}
}

func parseDefineDirective(arg string) (name string, params []string, body string, ok bool) {
	if arg == "" || !isIdentStart(arg[0]) {
		return "", nil, "", false
	}
	i := 1
	for i < len(arg) && isIdentPart(arg[i]) {
		i++
	}
	name = arg[:i]
	rest := arg[i:]

	// function-like only if '(' immediately follows name
	if strings.HasPrefix(rest, "(") {
		j := strings.IndexByte(rest, ')')
		if j < 0 {
			return "", nil, "", false
		}
		params = []string{}
		if list := strings.TrimSpace(rest[1:j]); list != "" {
			for _, p := range strings.Split(list, ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}
		return name, params, strings.TrimSpace(rest[j+1:]), true
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", nil, "", false
	}
	return name, nil, strings.TrimSpace(rest), true
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func shortPath(p string) string {
	// nicer errors
	if p == "" {
		return p
	}
	return filepath.Base(p)
}

// ---------------- Conditionals ----------------

type condStack struct {
	stack []condFrame
}

type condFrame struct {
	parentActive bool
	taken        bool // some branch of this level was active
	active       bool
	sawElse      bool
	line         int
	directive    string
}

func newCondStack() *condStack  { return &condStack{} }
func (c *condStack) Depth() int { return len(c.stack) }

func (c *condStack) Active() bool {
	if len(c.stack) == 0 {
		return true
	}
	return c.stack[len(c.stack)-1].active
}

// Top returns the innermost level, or nil outside any conditional.
func (c *condStack) Top() *condFrame {
	if len(c.stack) == 0 {
		return nil
	}
	return &c.stack[len(c.stack)-1]
}

func (c *condStack) Push(cond bool, line int, directive string) {
	parent := c.Active()
	active := parent && cond
	c.stack = append(c.stack, condFrame{
		parentActive: parent,
		taken:        active,
		active:       active,
		line:         line,
		directive:    directive,
	})
}

func (c *condStack) Elif(cond bool) {
	top := c.Top()
	if top == nil {
		return
	}
	if !top.parentActive || top.taken {
		top.active = false
		return
	}
	top.active = cond
	top.taken = cond
}

func (c *condStack) Else() {
	top := c.Top()
	if top == nil {
		return
	}
	top.sawElse = true
	if !top.parentActive {
		top.active = false
		return
	}
	top.active = !top.taken
	top.taken = true
}

func (c *condStack) Pop() {
	if len(c.stack) == 0 {
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *condStack) UnclosedLine() int {
	if top := c.Top(); top != nil {
		return top.line
	}
	return 0
}

func (c *condStack) UnclosedDirective() string {
	if top := c.Top(); top != nil {
		return top.directive
	}
	return ""
}
