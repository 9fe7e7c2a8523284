package kernel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

var coordObjects = map[string]bool{"threadIdx": true, "blockIdx": true, "blockDim": true, "gridDim": true}
var coordComponents = map[string]string{"X": "x", "Y": "y", "Z": "z"}

const cudaIndent = "    "

type cudaLowerer struct {
	kernelName string
	shared     []string // __shared__ declarations, in declaration order
	locals     map[string]bool
	params     map[string]Param
}

// lowerBody renders a kernel's parameter list and block body to complete
// CUDA C source text (spec §4.8): a fixed header, the extern "C" __global__
// signature, then the body with any `__shared__` declarations hoisted to
// the front in the order they were declared.
func lowerBody(name string, params []Param, body []ast.Stmt) (string, error) {
	l := &cudaLowerer{kernelName: name, locals: map[string]bool{}, params: map[string]Param{}}
	for _, p := range params {
		l.params[p.Name] = p
	}

	var stmts strings.Builder
	for _, s := range body {
		text, err := l.stmt(s, 1)
		if err != nil {
			return "", err
		}
		stmts.WriteString(text)
	}

	var out strings.Builder
	out.WriteString("#include <stdint.h>\n")
	out.WriteString("#include <stdbool.h>\n")
	out.WriteString("#include <math.h>\n\n")
	fmt.Fprintf(&out, "extern \"C\" __global__ void %s(%s) {\n", name, l.paramList(params))
	for _, decl := range l.shared {
		out.WriteString(cudaIndent + decl + "\n")
	}
	out.WriteString(stmts.String())
	out.WriteString("}\n")
	return out.String(), nil
}

func (l *cudaLowerer) paramList(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Kind == ParamGlobalPtr {
			parts[i] = fmt.Sprintf("%s* %s", p.Elem, p.Name)
		} else {
			parts[i] = fmt.Sprintf("%s %s", p.Elem, p.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func (l *cudaLowerer) stmt(s ast.Stmt, indent int) (string, error) {
	pad := strings.Repeat(cudaIndent, indent)
	switch v := s.(type) {
	case *ast.LetStmt:
		l.locals[v.Name] = true
		named, ok := v.Type.(*ast.NamedType)
		if !ok || !scalarKinds[named.Name] {
			sp := v.Span()
			return "", errors.New(errors.KrnUnsupportedParam,
				fmt.Sprintf("let %q must have an explicit scalar type in a kernel body", v.Name), &sp)
		}
		val, err := l.expr(v.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s %s = %s;\n", pad, named.Name, v.Name, val), nil

	case *ast.ExprStmt:
		if bin, ok := v.X.(*ast.BinaryExpr); ok && bin.Op == "=" {
			lhs, err := l.expr(bin.Left)
			if err != nil {
				return "", err
			}
			rhs, err := l.expr(bin.Right)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s%s = %s;\n", pad, lhs, rhs), nil
		}
		val, err := l.expr(v.X)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s;\n", pad, val), nil

	case *ast.ReturnStmt:
		if v.Value != nil {
			sp := v.Span()
			return "", errors.New(errors.KrnFnShape, "kernel return must not carry a value (return type is void)", &sp)
		}
		return pad + "return;\n", nil

	case *ast.IfStmt:
		cond, err := l.expr(v.Cond)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%sif (%s) {\n", pad, cond)
		if err := l.block(&b, v.Then, indent+1); err != nil {
			return "", err
		}
		if v.Else != nil {
			fmt.Fprintf(&b, "%s} else {\n", pad)
			if err := l.block(&b, v.Else, indent+1); err != nil {
				return "", err
			}
		}
		fmt.Fprintf(&b, "%s}\n", pad)
		return b.String(), nil

	case *ast.ForStmt:
		if v.Kind != ast.ForCStyle {
			sp := v.Span()
			return "", errors.New(errors.KrnForLoopShape, "only a C-style for(let;cond;post) loop is accepted in a kernel body", &sp)
		}
		initLet, ok := v.Init.(*ast.LetStmt)
		if !ok {
			sp := v.Span()
			return "", errors.New(errors.KrnForLoopShape, "for-loop initializer must be a let binding", &sp)
		}
		named, ok := initLet.Type.(*ast.NamedType)
		if !ok || !scalarKinds[named.Name] {
			sp := v.Span()
			return "", errors.New(errors.KrnForLoopShape, "for-loop variable must have an explicit scalar type", &sp)
		}
		l.locals[initLet.Name] = true
		initVal, err := l.expr(initLet.Value)
		if err != nil {
			return "", err
		}
		cond, err := l.expr(v.Cond)
		if err != nil {
			return "", err
		}
		post, err := l.expr(v.Post)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%sfor (%s %s = %s; %s; %s) {\n", pad, named.Name, initLet.Name, initVal, cond, post)
		if err := l.block(&b, v.Body, indent+1); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s}\n", pad)
		return b.String(), nil

	case *ast.BlockStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "%s{\n", pad)
		if err := l.block(&b, v.Stmts, indent+1); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s}\n", pad)
		return b.String(), nil

	default:
		sp := s.Span()
		return "", errors.New(errors.KrnUnsupportedStmt, fmt.Sprintf("unsupported statement form %T in kernel body", s), &sp)
	}
}

func (l *cudaLowerer) block(b *strings.Builder, stmts []ast.Stmt, indent int) error {
	for _, s := range stmts {
		text, err := l.stmt(s, indent)
		if err != nil {
			return err
		}
		b.WriteString(text)
	}
	return nil
}

func (l *cudaLowerer) expr(e ast.Expr) (string, error) {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name, nil

	case *ast.AsExpr:
		named, ok := v.Type.(*ast.NamedType)
		if !ok || !scalarKinds[named.Name] {
			sp := v.Span()
			return "", errors.New(errors.KrnNonScalarCast, "kernel casts must target a scalar kind", &sp)
		}
		var inner string
		switch lit := v.Value.(type) {
		case *ast.IntLit:
			inner = strconv.FormatInt(lit.Value, 10)
		case *ast.FloatLit:
			inner = strconv.FormatFloat(lit.Value, 'g', -1, 64)
		case *ast.BoolLit:
			inner = strconv.FormatBool(lit.Value)
		default:
			sp := v.Span()
			return "", errors.New(errors.KrnNumericNeedsCast, "only literal values may be explicitly cast in a kernel body", &sp)
		}
		return fmt.Sprintf("(%s)(%s)", named.Name, inner), nil

	case *ast.IntLit:
		sp := v.Span()
		return "", errors.New(errors.KrnNumericNeedsCast, "numeric literals require an explicit scalar cast in a kernel body", &sp)

	case *ast.FloatLit:
		sp := v.Span()
		return "", errors.New(errors.KrnNumericNeedsCast, "numeric literals require an explicit scalar cast in a kernel body", &sp)

	case *ast.BoolLit:
		return strconv.FormatBool(v.Value), nil

	case *ast.BinaryExpr:
		left, err := l.expr(v.Left)
		if err != nil {
			return "", err
		}
		right, err := l.expr(v.Right)
		if err != nil {
			return "", err
		}
		if !isSupportedOperator(v.Op) {
			sp := v.Span()
			return "", errors.New(errors.KrnUnsupportedOperator, fmt.Sprintf("operator %q is not supported in a kernel body", v.Op), &sp)
		}
		return fmt.Sprintf("(%s %s %s)", left, v.Op, right), nil

	case *ast.UnaryExpr:
		if v.Op == "&" {
			inner, err := l.expr(v.X)
			if err != nil {
				return "", err
			}
			return "&" + inner, nil
		}
		inner, err := l.expr(v.X)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", v.Op, inner), nil

	case *ast.IndexExpr:
		obj, err := l.expr(v.Obj)
		if err != nil {
			return "", err
		}
		idx, err := l.expr(v.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", obj, idx), nil

	case *ast.MemberExpr:
		ident, ok := v.Obj.(*ast.Ident)
		comp, compOK := coordComponents[v.Prop]
		if ok && coordObjects[ident.Name] && compOK {
			return fmt.Sprintf("%s.%s", ident.Name, comp), nil
		}
		sp := v.Span()
		return "", errors.New(errors.KrnUnsupportedExpr, fmt.Sprintf("member access %s.%s is not a recognized kernel intrinsic", v.Obj, v.Prop), &sp)

	case *ast.CallExpr:
		return l.call(v)

	default:
		sp := e.Span()
		return "", errors.New(errors.KrnUnsupportedExpr, fmt.Sprintf("unsupported expression form %T in kernel body", e), &sp)
	}
}

func isSupportedOperator(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "<", ">", "<=", ">=", "==", "!=", "&&", "||":
		return true
	default:
		return false
	}
}

func (l *cudaLowerer) call(v *ast.CallExpr) (string, error) {
	sp := v.Span()
	callee, ok := v.Callee.(*ast.Ident)
	if !ok {
		return "", errors.New(errors.KrnUnsupportedCall, "kernel bodies may only call recognized intrinsics", &sp)
	}

	switch callee.Name {
	case "syncthreads":
		if len(v.Args) != 0 {
			return "", errors.New(errors.KrnSyncthreadsArgs, "syncthreads() takes no arguments", &sp)
		}
		return "__syncthreads()", nil

	case "expf":
		if len(v.Args) != 1 {
			return "", errors.New(errors.KrnExpfSignature, "expf(x) takes exactly one f32 argument", &sp)
		}
		arg, err := l.expr(v.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("expf(%s)", arg), nil

	case "addr":
		if len(v.Args) != 2 {
			return "", errors.New(errors.KrnAddrSignature, "addr(p, i) takes exactly two arguments", &sp)
		}
		p, err := l.expr(v.Args[0])
		if err != nil {
			return "", err
		}
		i, err := l.expr(v.Args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(&(%s)[%s])", p, i), nil

	case "atomicAdd":
		if len(v.Args) != 2 {
			return "", errors.New(errors.KrnAtomicAddSignature, "atomicAdd(&ptr, value) takes exactly two arguments", &sp)
		}
		ptr, err := l.expr(v.Args[0])
		if err != nil {
			return "", err
		}
		val, err := l.expr(v.Args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("atomicAdd(%s, %s)", ptr, val), nil

	case "sharedArray":
		return l.sharedArray(v)

	default:
		return "", errors.New(errors.KrnUnsupportedCall, fmt.Sprintf("%q is not a recognized kernel intrinsic", callee.Name), &sp)
	}
}

// sharedArray lowers `sharedArray<T, N>()`: declares a `__shared__ T name[N];`
// in the hoisted declaration block and returns the array's identifier as a
// shared pointer expression.
func (l *cudaLowerer) sharedArray(v *ast.CallExpr) (string, error) {
	sp := v.Span()
	if len(v.TypeArgs) != 2 || len(v.Args) != 0 {
		return "", errors.New(errors.KrnSharedArraySig, "sharedArray<T, N>() takes two type arguments and no call arguments", &sp)
	}
	elemType, ok := v.TypeArgs[0].(*ast.NamedType)
	if !ok || !scalarKinds[elemType.Name] {
		return "", errors.New(errors.KrnSharedArraySig, "sharedArray's element type must be a scalar kind", &sp)
	}
	lenType, ok := v.TypeArgs[1].(*ast.NamedType)
	if !ok {
		return "", errors.New(errors.KrnSharedArraySig, "sharedArray's length must be a positive integer literal type", &sp)
	}
	n, err := strconv.ParseInt(lenType.Name, 10, 64)
	if err != nil || n <= 0 {
		return "", errors.New(errors.KrnSharedArraySig, "sharedArray's length must be a positive integer literal type", &sp)
	}
	name := fmt.Sprintf("shared_%d", len(l.shared))
	l.shared = append(l.shared, fmt.Sprintf("__shared__ %s %s[%d];", elemType.Name, name, n))
	return name, nil
}
