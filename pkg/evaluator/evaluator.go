package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/caralang/cara/pkg/ast"
	"github.com/caralang/cara/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmtStart TraceEventType = "stmt_start"
	TraceStmtEnd   TraceEventType = "stmt_end"
	TraceLoopStart TraceEventType = "loop_start"
	TraceLoopEnd   TraceEventType = "loop_end"
	TraceCall      TraceEventType = "call"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// BuiltinFn defines a built-in function available to Cara programs.
type BuiltinFn struct {
	Name    string
	Execute func(args []Value) (Value, error)
}

// ExecOptions configures program execution.
type ExecOptions struct {
	Builtins map[string]*BuiltinFn
	Trace    func(event TraceEvent)
	RunID    string
}

// RuntimeError represents a runtime error during Cara execution.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts a runtime error into a reportable diagnostic.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// Loop control signals. They travel as errors through the statement
// walk and are absorbed by the innermost enclosing loop.
var (
	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
)

type evaluator struct {
	ctx  context.Context
	opts ExecOptions
	env  *Env
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span) {
	ev.emitWithData(event, span, nil)
}

func (ev *evaluator) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.opts.Trace != nil {
		ev.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

func (ev *evaluator) checkCanceled(span *ast.Span) error {
	select {
	case <-ev.ctx.Done():
		return &RuntimeError{
			Code:    diagnostics.ECanceled,
			Message: "execution canceled",
			Span:    span,
		}
	default:
		return nil
	}
}

// Execute runs a Cara program to completion in a fresh top-level
// environment.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) error {
	return ExecuteWithEnv(ctx, program, opts, NewEnv(nil))
}

// ExecuteWithEnv runs a program in a caller-supplied top-level
// environment. Bindings the program declares survive in env, which
// lets a REPL carry state across submissions.
func ExecuteWithEnv(ctx context.Context, program *ast.Program, opts ExecOptions, env *Env) error {
	ev := &evaluator{
		ctx:  ctx,
		opts: opts,
		env:  env,
	}

	span := program.Span
	ev.emit(TraceRunStart, &span)

	err := ev.execBlock(program.Statements, ev.env)

	ev.emit(TraceRunEnd, &span)

	// A break or continue that escaped every loop is a bug in the
	// program, not in the interpreter.
	if err == errBreak || err == errContinue {
		return &RuntimeError{
			Code:    diagnostics.ELoopCtrl,
			Message: fmt.Sprintf("'%s' outside of a loop", err.Error()),
			Span:    &span,
		}
	}
	return err
}

func (ev *evaluator) execBlock(stmts []ast.Stmt, env *Env) error {
	for _, stmt := range stmts {
		if err := ev.execStmt(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) execStmt(stmt ast.Stmt, env *Env) error {
	span := stmt.NodeSpan()
	ev.emit(TraceStmtStart, &span)
	defer ev.emit(TraceStmtEnd, &span)

	switch s := stmt.(type) {
	case *ast.VarDecl:
		val, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		if err := ev.requireStorable(val, s.Value); err != nil {
			return err
		}
		env.Declare(s.Name, val, false)
		return nil

	case *ast.ConstDecl:
		val, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		if err := ev.requireStorable(val, s.Value); err != nil {
			return err
		}
		env.Declare(s.Name, val, true)
		return nil

	case *ast.AssignStmt:
		return ev.execAssign(s, env)

	case *ast.ExprStmt:
		_, err := ev.evalExpr(s.Expr, env)
		return err

	case *ast.ForStmt:
		return ev.execFor(s, env)

	case *ast.WhileStmt:
		return ev.execWhile(s, env)

	case *ast.IfStmt:
		return ev.execIf(s, env)

	case *ast.BreakStmt:
		return errBreak

	case *ast.ContinueStmt:
		return errContinue

	default:
		return &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("unsupported statement kind '%s'", stmt.Kind()),
			Span:    &span,
		}
	}
}

// requireStorable rejects storing a unit value in a variable or array.
func (ev *evaluator) requireStorable(val Value, source ast.Expr) error {
	if _, ok := val.(Unit); ok {
		span := source.NodeSpan()
		return &RuntimeError{
			Code:    diagnostics.EType,
			Message: "expression has no value",
			Span:    &span,
		}
	}
	return nil
}

func (ev *evaluator) execAssign(s *ast.AssignStmt, env *Env) error {
	val, err := ev.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	if err := ev.requireStorable(val, s.Value); err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.Ident:
		switch env.Assign(target.Name, val) {
		case AssignOK:
			return nil
		case AssignConst:
			span := target.Span
			return &RuntimeError{
				Code:    diagnostics.EConstAssign,
				Message: fmt.Sprintf("cannot assign to constant '%s'", target.Name),
				Span:    &span,
			}
		default:
			span := target.Span
			return &RuntimeError{
				Code:    diagnostics.EUndeclared,
				Message: fmt.Sprintf("variable '%s' is not declared", target.Name),
				Span:    &span,
			}
		}

	case *ast.IndexExpr:
		arr, idx, err := ev.evalIndexPair(target, env)
		if err != nil {
			return err
		}
		arr.Items[idx] = val
		return nil

	default:
		span := s.Target.NodeSpan()
		return &RuntimeError{
			Code:    diagnostics.EType,
			Message: "invalid assignment target",
			Span:    &span,
		}
	}
}

// evalIndexPair evaluates an index expression's target and index and
// bounds-checks the index against the array length.
func (ev *evaluator) evalIndexPair(e *ast.IndexExpr, env *Env) (*Array, int64, error) {
	targetVal, err := ev.evalExpr(e.Target, env)
	if err != nil {
		return nil, 0, err
	}
	arr, ok := targetVal.(*Array)
	if !ok {
		span := e.Target.NodeSpan()
		return nil, 0, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("cannot index into %s", TypeName(targetVal)),
			Span:    &span,
		}
	}

	idxVal, err := ev.evalExpr(e.Index, env)
	if err != nil {
		return nil, 0, err
	}
	idx, ok := idxVal.(Int)
	if !ok {
		span := e.Index.NodeSpan()
		return nil, 0, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("array index must be int, got %s", TypeName(idxVal)),
			Span:    &span,
		}
	}

	if idx.Value < 0 || idx.Value >= int64(len(arr.Items)) {
		span := e.NodeSpan()
		return nil, 0, &RuntimeError{
			Code:    diagnostics.EIndex,
			Message: fmt.Sprintf("index %d out of bounds for array of length %d", idx.Value, len(arr.Items)),
			Span:    &span,
		}
	}

	return arr, idx.Value, nil
}

func (ev *evaluator) execFor(s *ast.ForStmt, env *Env) error {
	span := s.Span
	ev.emit(TraceLoopStart, &span)
	defer ev.emit(TraceLoopEnd, &span)

	start, err := ev.evalIntOperand(s.Range.Start, env, "range start")
	if err != nil {
		return err
	}
	end, err := ev.evalIntOperand(s.Range.End, env, "range end")
	if err != nil {
		return err
	}

	step := int64(1)
	if s.Range.Step != nil {
		step, err = ev.evalIntOperand(s.Range.Step, env, "range step")
		if err != nil {
			return err
		}
		if step <= 0 {
			stepSpan := s.Range.Step.NodeSpan()
			return &RuntimeError{
				Code:    diagnostics.ERange,
				Message: fmt.Sprintf("range step must be positive, got %d", step),
				Span:    &stepSpan,
			}
		}
	}

	// Half-open interval: the end bound itself is never visited, and
	// an empty or inverted range runs zero iterations.
	for i := start; i < end; i += step {
		if err := ev.checkCanceled(&span); err != nil {
			return err
		}

		iterEnv := env.Child()
		iterEnv.Declare(s.Binding, NewInt(i), true)

		err := ev.execBlock(s.Body, iterEnv)
		if err == errBreak {
			return nil
		}
		if err == errContinue {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) execWhile(s *ast.WhileStmt, env *Env) error {
	span := s.Span
	ev.emit(TraceLoopStart, &span)
	defer ev.emit(TraceLoopEnd, &span)

	for {
		if err := ev.checkCanceled(&span); err != nil {
			return err
		}

		cond, err := ev.evalIntOperand(s.Cond, env, "while condition")
		if err != nil {
			return err
		}
		if cond == 0 {
			return nil
		}

		err = ev.execBlock(s.Body, env.Child())
		if err == errBreak {
			return nil
		}
		if err == errContinue {
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (ev *evaluator) execIf(s *ast.IfStmt, env *Env) error {
	cond, err := ev.evalIntOperand(s.Cond, env, "if condition")
	if err != nil {
		return err
	}
	if cond != 0 {
		return ev.execBlock(s.ThenBody, env.Child())
	}
	if s.ElseBody != nil {
		return ev.execBlock(s.ElseBody, env.Child())
	}
	return nil
}

// evalIntOperand evaluates an expression that must produce an int,
// such as a loop bound or a condition.
func (ev *evaluator) evalIntOperand(expr ast.Expr, env *Env, what string) (int64, error) {
	val, err := ev.evalExpr(expr, env)
	if err != nil {
		return 0, err
	}
	n, ok := val.(Int)
	if !ok {
		span := expr.NodeSpan()
		return 0, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("%s must be int, got %s", what, TypeName(val)),
			Span:    &span,
		}
	}
	return n.Value, nil
}

// --- Expressions ---

func (ev *evaluator) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewInt(e.Value), nil

	case *ast.Ident:
		val, ok := env.Get(e.Name)
		if !ok {
			span := e.Span
			return nil, &RuntimeError{
				Code:    diagnostics.EUndeclared,
				Message: fmt.Sprintf("variable '%s' is not declared", e.Name),
				Span:    &span,
			}
		}
		return val, nil

	case *ast.FillArrayLiteral:
		return ev.evalFillArray(e, env)

	case *ast.ListLiteral:
		return ev.evalListLiteral(e, env)

	case *ast.BinaryExpr:
		return ev.evalBinary(e, env)

	case *ast.UnaryExpr:
		operand, err := ev.evalIntOperand(e.Operand, env, "negation operand")
		if err != nil {
			return nil, err
		}
		return NewInt(-operand), nil

	case *ast.IndexExpr:
		arr, idx, err := ev.evalIndexPair(e, env)
		if err != nil {
			return nil, err
		}
		return arr.Items[idx], nil

	case *ast.CallExpr:
		return ev.evalCall(e, env)

	default:
		span := expr.NodeSpan()
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("unsupported expression kind '%s'", expr.Kind()),
			Span:    &span,
		}
	}
}

// evalFillArray builds an array from the [fill; size] form. The fill
// value must be a scalar; filling with an array would make every slot
// share one handle, so it is rejected instead.
func (ev *evaluator) evalFillArray(e *ast.FillArrayLiteral, env *Env) (Value, error) {
	fill, err := ev.evalIntOperand(e.Fill, env, "array fill value")
	if err != nil {
		return nil, err
	}
	size, err := ev.evalIntOperand(e.Size, env, "array size")
	if err != nil {
		return nil, err
	}
	if size < 0 {
		span := e.Size.NodeSpan()
		return nil, &RuntimeError{
			Code:    diagnostics.EArraySize,
			Message: fmt.Sprintf("array size must be non-negative, got %d", size),
			Span:    &span,
		}
	}

	items := make([]Value, size)
	for i := range items {
		items[i] = NewInt(fill)
	}
	return NewArray(items), nil
}

func (ev *evaluator) evalListLiteral(e *ast.ListLiteral, env *Env) (Value, error) {
	items := make([]Value, 0, len(e.Elements))
	for _, elem := range e.Elements {
		val, err := ev.evalExpr(elem, env)
		if err != nil {
			return nil, err
		}
		if err := ev.requireStorable(val, elem); err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	return NewArray(items), nil
}

func (ev *evaluator) evalBinary(e *ast.BinaryExpr, env *Env) (Value, error) {
	// Every operator evaluates both sides; there is no short-circuit
	// form of '&&' or '||'.
	left, err := ev.evalIntOperand(e.Left, env, "operand")
	if err != nil {
		return nil, err
	}
	right, err := ev.evalIntOperand(e.Right, env, "operand")
	if err != nil {
		return nil, err
	}

	boolInt := func(b bool) Value {
		if b {
			return NewInt(1)
		}
		return NewInt(0)
	}

	switch e.Op {
	case ast.OpAdd:
		return NewInt(left + right), nil
	case ast.OpSub:
		return NewInt(left - right), nil
	case ast.OpMul:
		return NewInt(left * right), nil
	case ast.OpDiv:
		if right == 0 {
			span := e.Right.NodeSpan()
			return nil, &RuntimeError{
				Code:    diagnostics.EDivZero,
				Message: "division by zero",
				Span:    &span,
			}
		}
		if left == math.MinInt64 && right == -1 {
			return NewInt(math.MinInt64), nil
		}
		return NewInt(left / right), nil
	case ast.OpMod:
		if right == 0 {
			span := e.Right.NodeSpan()
			return nil, &RuntimeError{
				Code:    diagnostics.EDivZero,
				Message: "modulo by zero",
				Span:    &span,
			}
		}
		if left == math.MinInt64 && right == -1 {
			return NewInt(0), nil
		}
		return NewInt(left % right), nil
	case ast.OpShl, ast.OpShr:
		if right < 0 {
			span := e.Right.NodeSpan()
			return nil, &RuntimeError{
				Code:    diagnostics.EType,
				Message: fmt.Sprintf("shift count must be non-negative, got %d", right),
				Span:    &span,
			}
		}
		if e.Op == ast.OpShl {
			return NewInt(left << uint64(right)), nil
		}
		return NewInt(left >> uint64(right)), nil
	case ast.OpGt:
		return boolInt(left > right), nil
	case ast.OpLt:
		return boolInt(left < right), nil
	case ast.OpGtEq:
		return boolInt(left >= right), nil
	case ast.OpLtEq:
		return boolInt(left <= right), nil
	case ast.OpEqEq:
		return boolInt(left == right), nil
	case ast.OpNeq:
		return boolInt(left != right), nil
	case ast.OpAnd:
		return boolInt(left != 0 && right != 0), nil
	case ast.OpOr:
		return boolInt(left != 0 || right != 0), nil
	default:
		span := e.Span
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("unknown operator '%s'", e.Op),
			Span:    &span,
		}
	}
}

func (ev *evaluator) evalCall(e *ast.CallExpr, env *Env) (Value, error) {
	span := e.Span

	fn, ok := ev.opts.Builtins[e.Name]
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.EUndefFn,
			Message: fmt.Sprintf("function '%s' is not defined", e.Name),
			Span:    &span,
		}
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		val, err := ev.evalExpr(argExpr, env)
		if err != nil {
			return nil, err
		}
		if err := ev.requireStorable(val, argExpr); err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	ev.emitWithData(TraceCall, &span, map[string]string{"fn": e.Name})

	result, err := fn.Execute(args)
	if err != nil {
		// Built-ins report errors without positions; attach the
		// call site.
		if re, ok := err.(*RuntimeError); ok {
			if re.Span == nil {
				re.Span = &span
			}
			return nil, re
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: err.Error(),
			Span:    &span,
		}
	}
	return result, nil
}
