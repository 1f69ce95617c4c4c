// Package command implements the top-level command-processing loop: it
// reads `(command ...)` forms, dispatches each to the term parser and the
// Backend, and drives the output emitter.
package command

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/emit"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/term"
	"github.com/nilforge/smtfront/token"
)

// Driver owns one command-processing session over a shared term.Context.
// Exactly one Driver exists per parse call; it is constructed explicitly by
// the caller (smtfront.Parse) and threaded through the call graph as an
// ordinary value, never as a package global.
type Driver struct {
	ctx  *term.Context
	opts *Options
	out  *emit.Emitter
	log  *slog.Logger

	logic    string
	logicSet bool

	checkSatCount     int
	haveResult        bool
	lastResult        backend.CheckSatResult
	assumptionHandles []string

	inModel bool

	// levelStack records the ctx.ScopeLevel value assigned to each pushed
	// scope, since ctx.ScopeLevel is monotonically increasing
	// (term/binders.go's let/forall never decrement it) — declarations made
	// inside a pushed scope carry its level or a higher one raised by a later
	// let/forall, so pop closes the recorded level and every level above it
	// rather than counting down from the current level.
	levelStack []int

	done bool
}

// New constructs a Driver. out receives emitted responses; log receives
// structured diagnostics for each dispatched command.
func New(ctx *term.Context, opts *Options, out *emit.Emitter, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{ctx: ctx, opts: opts, out: out, log: log}
}

// Logic returns the final logic name: the one set explicitly, or inferred
// from observed features if set-logic was never called. An explicit QF_BV
// is upgraded, with a warning, to the inferred logic once uninterpreted
// functions have been used.
func (d *Driver) Logic() string {
	if d.logicSet {
		if d.logic == "QF_BV" && d.ctx.NeedFunctions {
			upgraded := d.inferLogic()
			d.log.Warn("upgrading logic beyond QF_BV", "requested", d.logic, "final", upgraded)
			return upgraded
		}
		return d.logic
	}
	return d.inferLogic()
}

func (d *Driver) inferLogic() string {
	switch {
	case d.ctx.NeedQuantifiers:
		return "BV"
	case d.ctx.NeedFunctions && d.ctx.NeedArrays:
		return "QF_AUFBV"
	case d.ctx.NeedFunctions:
		return "QF_UFBV"
	default:
		return "QF_BV"
	}
}

// CheckSatCount reports how many check-sat / check-sat-assuming calls ran,
// for the CLI's ParseResult.NSatCalls.
func (d *Driver) CheckSatCount() int { return d.checkSatCount }

// Run drives the command loop to completion: EOF, an `exit` command, or
// Backend termination. It returns reporter.ErrInvalidSource if any command
// failed, after the failing command's error has already been emitted.
func (d *Driver) Run() error {
	if err := d.ctx.Advance(); err != nil {
		return d.fail(err)
	}
	for !d.done {
		if d.ctx.Cur.Kind == token.EOF {
			return d.ctx.Handler.Error()
		}
		if d.ctx.Be.Terminated() {
			d.log.Info("backend signalled termination, stopping")
			return d.ctx.Handler.Error()
		}
		if err := d.step(); err != nil {
			d.reportError(err)
			return d.ctx.Handler.Error()
		}
	}
	return d.ctx.Handler.Error()
}

func (d *Driver) reportError(err error) {
	d.ctx.Handler.HandleError(err)
	d.out.Error(formatUserError(err))
}

func formatUserError(err error) string {
	if ep, ok := err.(reporter.ErrorWithPos); ok {
		return fmt.Sprintf("%s: %v", ep.GetPosition(), ep.Unwrap())
	}
	return err.Error()
}

func (d *Driver) fail(err error) error {
	d.reportError(err)
	return d.ctx.Handler.Error()
}

// step reads and dispatches exactly one `(command ...)` form.
func (d *Driver) step() error {
	pos := d.ctx.Cur.Pos
	if d.ctx.Cur.Kind != token.LPAR {
		return reporter.Errorf(pos, "expected '(', got %s", describeTok(d.ctx.Cur))
	}
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	cmd := d.ctx.Cur

	if d.inModel {
		switch cmd.Kind {
		case token.CMD_DEFINE_FUN:
			if err := d.cmdDefineFun(true); err != nil {
				return err
			}
			return d.closeParen()
		case token.RPAR:
			return reporter.Errorf(cmd.Pos, "empty command")
		default:
			return reporter.Errorf(cmd.Pos, "only 'define-fun' is accepted inside a model block, got %s", describeTok(cmd))
		}
	}

	d.log.Debug("dispatch", "cmd", describeTok(cmd), "line", cmd.Pos.Line, "col", cmd.Pos.Col)

	var err error
	switch cmd.Kind {
	case token.CMD_SET_LOGIC:
		err = d.cmdSetLogic()
	case token.CMD_SET_OPTION:
		err = d.cmdSetOption()
	case token.CMD_SET_INFO:
		err = d.cmdSetInfo()
	case token.CMD_DECLARE_SORT:
		err = d.cmdDeclareSort()
	case token.CMD_DEFINE_SORT:
		err = d.cmdDefineSort()
	case token.CMD_DECLARE_CONST:
		err = d.cmdDeclareFun(true)
	case token.CMD_DECLARE_FUN:
		err = d.cmdDeclareFun(false)
	case token.CMD_DEFINE_FUN:
		err = d.cmdDefineFun(false)
	case token.CMD_ASSERT:
		err = d.cmdAssert()
	case token.CMD_CHECK_SAT:
		err = d.cmdCheckSat()
	case token.CMD_CHECK_SAT_ASSUMING:
		err = d.cmdCheckSatAssuming()
	case token.CMD_GET_MODEL:
		err = d.cmdGetModel()
	case token.CMD_GET_VALUE:
		err = d.cmdGetValue()
	case token.CMD_GET_UNSAT_ASSUMPTIONS:
		err = d.cmdGetUnsatAssumptions()
	case token.CMD_PUSH:
		err = d.cmdPush()
	case token.CMD_POP:
		err = d.cmdPop()
	case token.CMD_ECHO:
		err = d.cmdEcho()
	case token.CMD_EXIT:
		err = d.cmdExit()
	case token.CMD_MODEL:
		err = d.cmdModel()
	default:
		err = reporter.Errorf(cmd.Pos, "unrecognized command %s", describeTok(cmd))
	}
	if err != nil {
		return err
	}
	return d.closeParen()
}

func (d *Driver) closeParen() error {
	if d.ctx.Cur.Kind != token.RPAR {
		return reporter.Errorf(d.ctx.Cur.Pos, "expected ')', got %s", describeTok(d.ctx.Cur))
	}
	return d.ctx.Advance()
}

func (d *Driver) printSuccess() {
	if d.opts.PrintSuccess {
		d.out.Success()
	}
}

// --- simple commands ---

func (d *Driver) cmdSetLogic() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	tok := d.ctx.Cur
	if tok.Kind != token.LOGIC && tok.Kind != token.SYMBOL {
		return reporter.Errorf(tok.Pos, "expected a logic name, got %s", describeTok(tok))
	}
	name := tok.Text
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if err := d.ctx.Be.SetLogic(name); err != nil {
		return reporter.Error(tok.Pos, reporter.CapabilityError{What: "set-logic " + name, Why: err.Error()})
	}
	d.logic, d.logicSet = name, true
	d.printSuccess()
	return nil
}

func (d *Driver) cmdSetOption() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	nameTok := d.ctx.Cur
	if nameTok.Kind != token.ATTRIBUTE {
		return reporter.Errorf(nameTok.Pos, "expected an option name, got %s", describeTok(nameTok))
	}
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	valueTok := d.ctx.Cur
	value := valueTok.Text
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if err := d.opts.Set(d.ctx.Be, nameTok.Text, value); err != nil {
		return reporter.Error(nameTok.Pos, err)
	}
	d.printSuccess()
	return nil
}

func (d *Driver) cmdSetInfo() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if d.ctx.Cur.Kind != token.ATTRIBUTE {
		return reporter.Errorf(d.ctx.Cur.Pos, "expected an info keyword, got %s", describeTok(d.ctx.Cur))
	}
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if d.ctx.Cur.Kind != token.RPAR {
		if err := d.skipAttributeValue(); err != nil {
			return err
		}
	}
	d.printSuccess()
	return nil
}

// skipAttributeValue consumes one attribute value: either a single atom
// token, or a single balanced parenthesized group.
func (d *Driver) skipAttributeValue() error {
	if d.ctx.Cur.Kind != token.LPAR {
		return d.ctx.Advance()
	}
	depth := 0
	for {
		switch d.ctx.Cur.Kind {
		case token.LPAR:
			depth++
		case token.RPAR:
			depth--
		case token.EOF:
			return reporter.Errorf(d.ctx.Cur.Pos, "unexpected end of input in attribute value")
		}
		if err := d.ctx.Advance(); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

func (d *Driver) cmdDeclareSort() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	nameTok, err := d.expectSymbol()
	if err != nil {
		return err
	}
	arity, pos, err := d.parseNumeral()
	if err != nil {
		return err
	}
	if arity != 0 {
		return reporter.Errorf(pos, "parametric sorts are not supported: declare-sort '%s' requires arity 0, got %d", nameTok.Text, arity)
	}
	if d.opts.DeclSortBVWidth == 0 {
		return reporter.Error(nameTok.Pos, reporter.CapabilityError{
			What: "declare-sort '" + nameTok.Text + "'",
			Why:  "no default bit-vector width configured (set-option :declsort-bv-width)",
		})
	}
	w, err := d.ctx.Sorts.BitVec(d.opts.DeclSortBVWidth)
	if err != nil {
		return reporter.Error(nameTok.Pos, err)
	}
	if err := d.ctx.Sorts.DefineAlias(nameTok.Text, w); err != nil {
		return reporter.Error(nameTok.Pos, err)
	}
	d.printSuccess()
	return nil
}

func (d *Driver) cmdDefineSort() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	nameTok, err := d.expectSymbol()
	if err != nil {
		return err
	}
	if err := d.expect(token.LPAR); err != nil {
		return err
	}
	if d.ctx.Cur.Kind != token.RPAR {
		return reporter.Errorf(d.ctx.Cur.Pos, "define-sort '%s' must be 0-ary (parametric sort definitions are not supported)", nameTok.Text)
	}
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	s, err := term.ParseSort(d.ctx)
	if err != nil {
		return err
	}
	if err := d.ctx.Sorts.DefineAlias(nameTok.Text, s); err != nil {
		return reporter.Error(nameTok.Pos, err)
	}
	d.printSuccess()
	return nil
}

func (d *Driver) cmdDeclareFun(isConst bool) error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	nameTok, err := d.expectSymbol()
	if err != nil {
		return err
	}
	if e := d.ctx.Tbl.Find(nameTok.Text); e != nil && (e.Node != nil || e.IsSortAlias) {
		return reporter.Error(nameTok.Pos, reporter.AlreadyDefined(nameTok.Text, e.Pos))
	}
	var args []backend.Sort
	if !isConst {
		if err := d.expect(token.LPAR); err != nil {
			return err
		}
		for d.ctx.Cur.Kind != token.RPAR {
			s, err := term.ParseSort(d.ctx)
			if err != nil {
				return err
			}
			args = append(args, s)
		}
		if err := d.ctx.Advance(); err != nil {
			return err
		}
	}
	result, err := term.ParseSort(d.ctx)
	if err != nil {
		return err
	}

	var node backend.Node
	if len(args) == 0 {
		node = d.ctx.Be.DeclareVariable(nameTok.Text, result)
		if result.Kind() == backend.KindArray {
			d.ctx.NeedArrays = true
		}
	} else {
		for _, a := range args {
			if _, ok := sort.IsBV(a); !ok {
				return reporter.Errorf(nameTok.Pos, "'%s' argument sorts must all be BitVec, got %s", nameTok.Text, sort.Describe(a))
			}
		}
		if _, ok := sort.IsBV(result); !ok {
			return reporter.Errorf(nameTok.Pos, "'%s' result sort must be BitVec, got %s", nameTok.Text, sort.Describe(result))
		}
		node = d.ctx.Be.DeclareFunction(nameTok.Text, args, result)
		d.ctx.NeedFunctions = true
	}
	d.ctx.Be.SetSymbol(node, nameTok.Text)
	e := d.ctx.Tbl.NewEntry(token.SYMBOL, nameTok.Text, d.ctx.ScopeLevel, nameTok.Pos)
	e.Node = node
	d.ctx.Tbl.Insert(e)
	d.printSuccess()
	return nil
}

// paramBinding is one (name sort) pair from a define-fun parameter list.
type paramBinding struct {
	name string
	pos  token.Pos
	sort backend.Sort
}

func (d *Driver) parseParamList() ([]paramBinding, error) {
	if err := d.expect(token.LPAR); err != nil {
		return nil, err
	}
	var params []paramBinding
	for d.ctx.Cur.Kind != token.RPAR {
		if err := d.expect(token.LPAR); err != nil {
			return nil, err
		}
		nameTok, err := d.expectSymbol()
		if err != nil {
			return nil, err
		}
		s, err := term.ParseSort(d.ctx)
		if err != nil {
			return nil, err
		}
		if err := d.expect(token.RPAR); err != nil {
			return nil, err
		}
		params = append(params, paramBinding{name: nameTok.Text, pos: nameTok.Pos, sort: s})
	}
	return params, d.ctx.Advance()
}

func (d *Driver) cmdDefineFun(inModel bool) error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	nameTok, err := d.expectSymbol()
	if err != nil {
		return err
	}
	params, err := d.parseParamList()
	if err != nil {
		return err
	}
	result, err := term.ParseSort(d.ctx)
	if err != nil {
		return err
	}

	if inModel {
		if len(params) != 0 {
			return reporter.Errorf(nameTok.Pos, "'define-fun' inside a model block must be 0-ary")
		}
		e := d.ctx.Tbl.Find(nameTok.Text)
		if e == nil || e.Node == nil {
			return reporter.Error(nameTok.Pos, reporter.UndefinedSymbolError{Name: nameTok.Text})
		}
		body, err := term.ParseTerm(d.ctx)
		if err != nil {
			return err
		}
		if !sort.SameSort(e.Node.Sort(), body.Sort()) {
			return reporter.Error(nameTok.Pos, reporter.SortMismatchError{
				Op: "define-fun " + nameTok.Text, Expected: sort.Describe(e.Node.Sort()), Actual: sort.Describe(body.Sort()),
			})
		}
		if !sort.SameSort(body.Sort(), result) {
			return reporter.Error(nameTok.Pos, reporter.SortMismatchError{
				Op: "define-fun " + nameTok.Text, Expected: sort.Describe(result), Actual: sort.Describe(body.Sort()),
			})
		}
		d.ctx.Be.Assert(d.ctx.Be.Eq(e.Node, body))
		return nil
	}

	if e := d.ctx.Tbl.Find(nameTok.Text); e != nil && (e.Node != nil || e.IsSortAlias) {
		return reporter.Error(nameTok.Pos, reporter.AlreadyDefined(nameTok.Text, e.Pos))
	}

	if len(params) == 0 {
		body, err := term.ParseTerm(d.ctx)
		if err != nil {
			return err
		}
		if !sort.SameSort(body.Sort(), result) {
			return reporter.Error(nameTok.Pos, reporter.SortMismatchError{
				Op: "define-fun " + nameTok.Text, Expected: sort.Describe(result), Actual: sort.Describe(body.Sort()),
			})
		}
		d.ctx.Be.SetSymbol(body, nameTok.Text)
		e := d.ctx.Tbl.NewEntry(token.SYMBOL, nameTok.Text, d.ctx.ScopeLevel, nameTok.Pos)
		e.Node = body
		d.ctx.Tbl.Insert(e)
		d.printSuccess()
		return nil
	}

	// Arity > 0: this Backend has no native "define function body"
	// primitive, so the definition is modeled the standard way — declare
	// an uninterpreted function of the same signature, bind each
	// parameter name while parsing the body, then assert a universally
	// quantified equality between an application of the function and the
	// body.
	argSorts := make([]backend.Sort, len(params))
	for i, p := range params {
		argSorts[i] = p.sort
	}
	fn := d.ctx.Be.DeclareFunction(nameTok.Text, argSorts, result)
	d.ctx.Be.SetSymbol(fn, nameTok.Text)
	d.ctx.NeedFunctions = true

	paramNodes := make([]backend.Node, len(params))
	var entries []*symtab.Entry
	for i, p := range params {
		uniqueName := d.ctx.NextParamName(p.name)
		pn := d.ctx.Be.DeclareParameter(uniqueName, p.sort)
		paramNodes[i] = pn
		e := d.ctx.Tbl.NewEntry(token.SYMBOL, p.name, d.ctx.ScopeLevel, p.pos)
		e.Node = pn
		e.Bound = true
		d.ctx.Tbl.Insert(e)
		entries = append(entries, e)
	}

	body, bodyErr := term.ParseTerm(d.ctx)
	for _, e := range entries {
		d.ctx.Tbl.Remove(e)
	}
	if bodyErr != nil {
		return bodyErr
	}
	if !sort.SameSort(body.Sort(), result) {
		return reporter.Error(nameTok.Pos, reporter.SortMismatchError{
			Op: "define-fun " + nameTok.Text, Expected: sort.Describe(result), Actual: sort.Describe(body.Sort()),
		})
	}

	e := d.ctx.Tbl.NewEntry(token.SYMBOL, nameTok.Text, d.ctx.ScopeLevel, nameTok.Pos)
	e.Node = fn
	d.ctx.Tbl.Insert(e)

	applied := d.ctx.Be.Apply(fn, paramNodes)
	eq := d.ctx.Be.Eq(applied, body)
	d.ctx.Be.Assert(d.ctx.Be.Forall(paramNodes, eq))
	d.printSuccess()
	return nil
}

func (d *Driver) cmdAssert() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	pos := d.ctx.Cur.Pos
	n, err := term.ParseTerm(d.ctx)
	if err != nil {
		return err
	}
	if !term.IsBoolLike(n.Sort()) {
		return reporter.Errorf(pos, "'assert' requires a Boolean argument, got %s", sort.Describe(n.Sort()))
	}
	d.ctx.Be.Assert(n)
	d.printSuccess()
	return nil
}

func (d *Driver) cmdCheckSat() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	d.lastResult = d.ctx.Be.CheckSat()
	d.haveResult = true
	d.checkSatCount++
	d.out.CheckSatResult(d.lastResult)
	return nil
}

func (d *Driver) cmdCheckSatAssuming() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if !d.opts.Incremental {
		return reporter.Error(d.ctx.Cur.Pos, reporter.CapabilityError{
			What: "check-sat-assuming", Why: "requires :incremental true",
		})
	}
	handles, err := d.parseCapturedTermList()
	if err != nil {
		return err
	}
	d.assumptionHandles = handles
	d.lastResult = d.ctx.Be.CheckSatAssuming(handles)
	d.haveResult = true
	d.checkSatCount++
	d.out.CheckSatResult(d.lastResult)
	return nil
}

// parseCapturedTermList parses "( e1 ... en )", each ei a 1-bit-BV-or-Bool
// term, asserting each via Assume and returning the captured source text of
// each operand as its assumption handle. Capture records (start,end) byte
// offsets on ctx.Captures while ctx.StoreTokens is set, and the handle text
// is sliced from the original source as each operand is parsed rather than
// reconstructed from re-printing the parsed term.
func (d *Driver) parseCapturedTermList() ([]string, error) {
	if err := d.expect(token.LPAR); err != nil {
		return nil, err
	}
	d.ctx.StoreTokens = true
	d.ctx.Captures = d.ctx.Captures[:0]
	var handles []string
	for d.ctx.Cur.Kind != token.RPAR {
		start := d.ctx.Cur.Pos.Offset
		pos := d.ctx.Cur.Pos
		n, err := term.ParseTerm(d.ctx)
		if err != nil {
			d.ctx.StoreTokens = false
			return nil, err
		}
		if !term.IsBoolLike(n.Sort()) {
			d.ctx.StoreTokens = false
			return nil, reporter.Errorf(pos, "check-sat-assuming operand must be Boolean, got %s", sort.Describe(n.Sort()))
		}
		end := d.ctx.Cur.Pos.Offset
		d.ctx.Captures = append(d.ctx.Captures, term.Span{Start: start, End: end})
		text := strings.TrimSpace(d.ctx.Lex.Slice(start, end))
		d.ctx.Be.Assume(n, text)
		handles = append(handles, text)
	}
	d.ctx.StoreTokens = false
	return handles, d.ctx.Advance()
}

func (d *Driver) cmdGetModel() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if !d.opts.ProduceModels {
		return reporter.Error(d.ctx.Cur.Pos, reporter.CapabilityError{
			What: "get-model", Why: "requires :produce-models true",
		})
	}
	d.out.Model(d.ctx.Be.GetModel())
	return nil
}

func (d *Driver) cmdGetValue() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if !d.haveResult || d.lastResult != backend.Sat {
		// get-value is only meaningful right after a sat result; outside
		// that it is a no-op, but the term list still has to be consumed
		// so the parser stays synchronized with the input.
		if err := d.expect(token.LPAR); err != nil {
			return err
		}
		for d.ctx.Cur.Kind != token.RPAR {
			if _, err := term.ParseTerm(d.ctx); err != nil {
				return err
			}
		}
		return d.ctx.Advance()
	}

	if err := d.expect(token.LPAR); err != nil {
		return err
	}
	d.ctx.StoreTokens = true
	d.ctx.Captures = d.ctx.Captures[:0]
	var pairs [][2]string
	for d.ctx.Cur.Kind != token.RPAR {
		start := d.ctx.Cur.Pos.Offset
		n, err := term.ParseTerm(d.ctx)
		if err != nil {
			d.ctx.StoreTokens = false
			return err
		}
		end := d.ctx.Cur.Pos.Offset
		d.ctx.Captures = append(d.ctx.Captures, term.Span{Start: start, End: end})
		text := strings.TrimSpace(d.ctx.Lex.Slice(start, end))
		pairs = append(pairs, [2]string{text, d.ctx.Be.GetValue(n)})
	}
	d.ctx.StoreTokens = false
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	d.out.Values(pairs)
	return nil
}

func (d *Driver) cmdGetUnsatAssumptions() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if !d.opts.ProduceUnsatAssumptions {
		return reporter.Error(d.ctx.Cur.Pos, reporter.CapabilityError{
			What: "get-unsat-assumptions", Why: "requires :produce-unsat-assumptions true",
		})
	}
	d.out.UnsatAssumptions(d.ctx.Be.FailedAssumptions())
	return nil
}

func (d *Driver) cmdPush() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	n, _, err := d.parseNumeral()
	if err != nil {
		return err
	}
	for i := int64(0); i < n; i++ {
		d.ctx.ScopeLevel++
		d.levelStack = append(d.levelStack, d.ctx.ScopeLevel)
		d.ctx.Be.Push()
	}
	d.printSuccess()
	return nil
}

func (d *Driver) cmdPop() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	n, pos, err := d.parseNumeral()
	if err != nil {
		return err
	}
	if int64(len(d.levelStack)) < n {
		return reporter.Errorf(pos, "'pop' %d exceeds current push depth %d", n, len(d.levelStack))
	}
	for i := int64(0); i < n; i++ {
		level := d.levelStack[len(d.levelStack)-1]
		d.levelStack = d.levelStack[:len(d.levelStack)-1]
		for lv := d.ctx.ScopeLevel; lv >= level; lv-- {
			removed := d.ctx.Tbl.CloseScope(lv, d.opts.GlobalDeclarations)
			for _, e := range removed {
				if e.Node != nil {
					d.ctx.Be.Release(e.Node)
				}
			}
		}
		d.ctx.Be.Pop()
	}
	d.printSuccess()
	return nil
}

func (d *Driver) cmdEcho() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	if d.ctx.Cur.Kind != token.STRINGLIT {
		return reporter.Errorf(d.ctx.Cur.Pos, "expected a string literal, got %s", describeTok(d.ctx.Cur))
	}
	text := d.ctx.Cur.Text
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	d.out.Echo(text)
	return nil
}

func (d *Driver) cmdExit() error {
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	d.printSuccess()
	d.done = true
	return nil
}

func (d *Driver) cmdModel() error {
	if d.inModel {
		return reporter.Errorf(d.ctx.Cur.Pos, "nested 'model' blocks are not allowed")
	}
	if err := d.ctx.Advance(); err != nil {
		return err
	}
	d.inModel = true
	for d.ctx.Cur.Kind == token.LPAR {
		if err := d.step(); err != nil {
			d.inModel = false
			return err
		}
	}
	d.inModel = false
	return nil
}

// --- small token helpers ---

func (d *Driver) expect(k token.Kind) error {
	if d.ctx.Cur.Kind != k {
		return reporter.Errorf(d.ctx.Cur.Pos, "expected %s, got %s", describeKind(k), describeTok(d.ctx.Cur))
	}
	return d.ctx.Advance()
}

func (d *Driver) expectSymbol() (token.Token, error) {
	if d.ctx.Cur.Kind != token.SYMBOL {
		return token.Token{}, reporter.Errorf(d.ctx.Cur.Pos, "expected a symbol, got %s", describeTok(d.ctx.Cur))
	}
	tok := d.ctx.Cur
	return tok, d.ctx.Advance()
}

func (d *Driver) parseNumeral() (int64, token.Pos, error) {
	tok := d.ctx.Cur
	if tok.Kind != token.NUMERAL {
		return 0, tok.Pos, reporter.Errorf(tok.Pos, "expected a numeral, got %s", describeTok(tok))
	}
	n, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return 0, tok.Pos, reporter.Errorf(tok.Pos, "invalid numeral %q", tok.Text)
	}
	return n, tok.Pos, d.ctx.Advance()
}

func describeTok(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	return "'" + t.Text + "'"
}

func describeKind(k token.Kind) string {
	switch k {
	case token.LPAR:
		return "'('"
	case token.RPAR:
		return "')'"
	case token.SYMBOL:
		return "a symbol"
	case token.NUMERAL:
		return "a numeral"
	default:
		return "a different token"
	}
}
