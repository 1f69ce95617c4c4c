package term

import (
	"fmt"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

// parseLet parses `(let ((x1 t1) ... (xn tn)) body)` with ctx.Cur == LET,
// having already entered the outer paren. Each ti is parsed in the outer
// scope (simultaneous, not sequential, binding per standard SMT-LIB
// semantics) before any xi shadows an outer name.
func (ctx *Context) parseLet(openPos token.Pos) (backend.Node, error) {
	if err := ctx.Advance(); err != nil { // consume 'let'
		return nil, err
	}
	if err := ctx.expect(token.LPAR); err != nil {
		return nil, err
	}
	ctx.enterParen(openPos)

	ctx.ScopeLevel++
	level := ctx.ScopeLevel
	var bound []*symtab.Entry
	type binding struct {
		name string
		pos  token.Pos
		val  backend.Node
	}
	var pending []binding

	for ctx.Cur.Kind == token.LPAR {
		bindingPos := ctx.Cur.Pos
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		ctx.enterParen(bindingPos)
		if ctx.Cur.Kind != token.SYMBOL {
			return nil, reporter.Errorf(ctx.Cur.Pos, "expected a symbol in let binding, got %s", describeTok(ctx.Cur))
		}
		name, namePos := ctx.Cur.Text, ctx.Cur.Pos
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		val, err := ParseTerm(ctx)
		if err != nil {
			return nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, err
		}
		ctx.exitParen()
		pending = append(pending, binding{name, namePos, val})
	}
	if len(pending) == 0 {
		return nil, reporter.Errorf(openPos, "'let' requires at least one binding")
	}
	for _, p := range pending {
		e := ctx.Tbl.NewEntry(token.SYMBOL, p.name, level, p.pos)
		e.Bound = true
		e.Node = p.val
		ctx.Tbl.Insert(e)
		bound = append(bound, e)
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()

	body, err := ParseTerm(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()

	for _, e := range bound {
		ctx.Tbl.Remove(e)
	}
	return body, nil
}

// parseQuantifier parses `(forall ((x1 s1) ... (xn sn)) body)` /
// `(exists ...)` with ctx.Cur positioned at FORALL/EXISTS, having already
// entered the outer paren. Each bound variable is given a fresh "sym!N"
// backend parameter name to avoid collisions with any outer symbol of the
// same user-visible name.
func (ctx *Context) parseQuantifier(openPos token.Pos, isForall bool) (backend.Node, error) {
	name := "forall"
	if !isForall {
		name = "exists"
	}
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	if err := ctx.expect(token.LPAR); err != nil {
		return nil, err
	}
	ctx.enterParen(openPos)

	ctx.ScopeLevel++
	level := ctx.ScopeLevel
	var bound []*symtab.Entry
	var params []backend.Node

	for ctx.Cur.Kind == token.LPAR {
		varPos := ctx.Cur.Pos
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		ctx.enterParen(varPos)
		if ctx.Cur.Kind != token.SYMBOL {
			return nil, reporter.Errorf(ctx.Cur.Pos, "expected a symbol in sorted variable, got %s", describeTok(ctx.Cur))
		}
		varName, namePos := ctx.Cur.Text, ctx.Cur.Pos
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		s, err := ParseSort(ctx)
		if err != nil {
			return nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, err
		}
		ctx.exitParen()

		ctx.paramCounter++
		uniqueName := fmt.Sprintf("%s!%d", varName, ctx.paramCounter)
		param := ctx.Be.DeclareParameter(uniqueName, s)

		e := ctx.Tbl.NewEntry(token.SYMBOL, varName, level, namePos)
		e.Bound = true
		e.Node = param
		ctx.Tbl.Insert(e)
		bound = append(bound, e)
		params = append(params, param)
	}
	if len(bound) == 0 {
		return nil, reporter.Errorf(openPos, "'%s' requires at least one sorted variable", name)
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()

	body, err := ParseTerm(ctx)
	if err != nil {
		return nil, err
	}
	if !isBoolLike(body.Sort()) {
		return nil, reporter.Error(openPos, reporter.SortMismatchError{Op: name, Expected: "Bool", Actual: describeSort(body.Sort())})
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()

	for _, e := range bound {
		ctx.Tbl.Remove(e)
	}
	ctx.NeedQuantifiers = true
	if isForall {
		return ctx.Be.Forall(params, body), nil
	}
	return ctx.Be.Exists(params, body), nil
}

// reduceBang parses `(! e :named n)` with ctx.Cur == BANG, having already
// entered the outer paren. Only :named is supported; no other term
// attribute is recognized.
func (ctx *Context) reduceBang(openPos token.Pos) (backend.Node, error) {
	if err := ctx.Advance(); err != nil { // consume '!'
		return nil, err
	}
	e, err := ParseTerm(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.Cur.Kind != token.ATTRIBUTE || ctx.Cur.Text != ":named" {
		return nil, reporter.Errorf(ctx.Cur.Pos, "only the ':named' annotation is supported, got %s", describeTok(ctx.Cur))
	}
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	if ctx.Cur.Kind != token.SYMBOL {
		return nil, reporter.Errorf(ctx.Cur.Pos, "expected a symbol after ':named', got %s", describeTok(ctx.Cur))
	}
	name, namePos := ctx.Cur.Text, ctx.Cur.Pos
	if existing := ctx.Tbl.Find(name); existing != nil && (existing.Node != nil || existing.IsSortAlias) {
		return nil, reporter.Error(namePos, reporter.AlreadyDefined(name, existing.Pos))
	}
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()

	ctx.Be.SetSymbol(e, name)
	entry := ctx.Tbl.NewEntry(token.SYMBOL, name, ctx.ScopeLevel, namePos)
	entry.Node = e
	ctx.Tbl.Insert(entry)
	return e, nil
}
