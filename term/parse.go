package term

import (
	"strconv"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

// parseParenTerm parses the body of a parenthesized term with ctx.Cur at
// the first token after '(', having not yet entered that paren. It
// dispatches on the first token to one of the binder/indexed/as-const
// special forms, or falls through to a generic operator/function
// application.
func (ctx *Context) parseParenTerm(openPos token.Pos) (backend.Node, error) {
	ctx.enterParen(openPos)
	switch ctx.Cur.Kind {
	case token.UNDERSCORE:
		node, desc, err := ctx.parseIndexedForm(openPos)
		if err != nil {
			return nil, err
		}
		ctx.exitParen()
		if node != nil {
			return node, nil
		}
		return nil, reporter.Errorf(openPos, "%s requires an enclosing argument list", desc.describe())

	case token.AS:
		_, err := ctx.parseAsForm(openPos)
		if err != nil {
			return nil, err
		}
		ctx.exitParen()
		return nil, reporter.Errorf(openPos, "'(as const T)' requires an enclosing argument list")

	case token.BANG:
		return ctx.reduceBang(openPos)

	case token.LET:
		return ctx.parseLet(openPos)

	case token.FORALL:
		return ctx.parseQuantifier(openPos, true)

	case token.EXISTS:
		return ctx.parseQuantifier(openPos, false)

	case token.LPAR:
		desc, err := ctx.parseNestedHead()
		if err != nil {
			return nil, err
		}
		if desc.kind == headIndexed && desc.op == token.FP_TO_FP {
			return ctx.parseToFPArgs(openPos, desc)
		}
		return ctx.parseApplicationArgs(openPos, desc)

	default:
		return ctx.parseOperatorApplication(openPos)
	}
}

// parseOperatorApplication parses `(op arg1 ... argn)` where op is a theory
// operator keyword or a user symbol naming a declared function, with
// ctx.Cur at op and the paren already entered.
func (ctx *Context) parseOperatorApplication(openPos token.Pos) (backend.Node, error) {
	opTok := ctx.Cur
	var fnEntry *symtab.Entry
	if opTok.Kind == token.SYMBOL {
		fnEntry = ctx.Tbl.Find(opTok.Text)
		if fnEntry == nil || fnEntry.Node == nil {
			return nil, reporter.Error(opTok.Pos, reporter.UndefinedSymbolError{Name: opTok.Text})
		}
	}
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	args, err := ctx.parseArgList(openPos)
	if err != nil {
		return nil, err
	}
	ctx.exitParen()

	if fnEntry != nil {
		return ctx.applyFunction(opTok.Pos, fnEntry, args)
	}
	return ctx.reduceOperator(opTok, args)
}

// parseApplicationArgs parses the remaining arguments of an application
// whose head is a headDescriptor (an indexed form or `as const`), with the
// paren already entered.
func (ctx *Context) parseApplicationArgs(openPos token.Pos, desc *headDescriptor) (backend.Node, error) {
	args, err := ctx.parseArgList(openPos)
	if err != nil {
		return nil, err
	}
	ctx.exitParen()
	return ctx.applyHead(desc, args)
}

// parseArgList parses zero or more terms up to (but not consuming) the
// closing ')', then consumes it.
func (ctx *Context) parseArgList(openPos token.Pos) ([]backend.Node, error) {
	var args []backend.Node
	for ctx.Cur.Kind != token.RPAR {
		if ctx.Cur.Kind == token.EOF {
			return nil, reporter.Errorf(openPos, "unexpected end of input inside parenthesized term")
		}
		a, err := ParseTerm(ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := ctx.Advance(); err != nil { // consume ')'
		return nil, err
	}
	return args, nil
}

func (ctx *Context) applyFunction(pos token.Pos, e *symtab.Entry, args []backend.Node) (backend.Node, error) {
	fs := e.Node.Sort()
	if fs.Kind() != backend.KindFunction {
		return nil, reporter.Errorf(pos, "'%s' is not a function and cannot be applied", e.Name)
	}
	argSorts, _ := fs.FunctionArgsResult()
	if len(args) != len(argSorts) {
		return nil, reporter.Error(pos, reporter.ArityError{
			Op: e.Name, Expected: strconv.Itoa(len(argSorts)), Actual: len(args), TooMany: len(args) > len(argSorts),
		})
	}
	for i, a := range args {
		if !sameSort(a.Sort(), argSorts[i]) {
			return nil, reporter.Error(pos, reporter.SortMismatchError{
				Op: e.Name, Expected: describeSort(argSorts[i]), Actual: describeSort(a.Sort()),
			})
		}
	}
	ctx.NeedFunctions = true
	return ctx.Be.Apply(e.Node, args), nil
}

func sameSort(a, b backend.Sort) bool { return sort.SameSort(a, b) }

func describeSort(s backend.Sort) string { return sort.Describe(s) }
