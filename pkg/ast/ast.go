// Package ast defines the Cara language AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
	OpShl  BinaryOp = "<<"
	OpShr  BinaryOp = ">>"
	OpGt   BinaryOp = ">"
	OpLt   BinaryOp = "<"
	OpGtEq BinaryOp = ">="
	OpLtEq BinaryOp = "<="
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpAnd  BinaryOp = "&&"
	OpOr   BinaryOp = "||"
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

// FillArrayLiteral is the [fill; count] array form.
type FillArrayLiteral struct {
	Span Span
	Fill Expr
	Size Expr
}

func (n *FillArrayLiteral) Kind() string   { return "FillArrayLiteral" }
func (n *FillArrayLiteral) NodeSpan() Span { return n.Span }
func (n *FillArrayLiteral) exprNode()      {}

// ListLiteral is the [a, b, c] array form.
type ListLiteral struct {
	Span     Span
	Elements []Expr
}

func (n *ListLiteral) Kind() string   { return "ListLiteral" }
func (n *ListLiteral) NodeSpan() Span { return n.Span }
func (n *ListLiteral) exprNode()      {}

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

// IndexExpr is a postfix index access, a[i]. Postfix operators bind
// tighter than any binary operator and chain left to right.
type IndexExpr struct {
	Span   Span
	Target Expr
	Index  Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// CallExpr is a call to a built-in procedure by name.
type CallExpr struct {
	Span Span
	Name string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// RangeExpr is the (start, end) or (start, end, step) component of a
// for loop, denoting the half-open interval [start, end). Step is nil
// in the two-component form. The parser only ever places a RangeExpr
// in ForStmt.Range.
type RangeExpr struct {
	Span  Span
	Start Expr
	End   Expr
	Step  Expr
}

func (n *RangeExpr) Kind() string   { return "RangeExpr" }
func (n *RangeExpr) NodeSpan() Span { return n.Span }
func (n *RangeExpr) exprNode()      {}

// --- Statements ---

type VarDecl struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

type ConstDecl struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *ConstDecl) Kind() string   { return "ConstDecl" }
func (n *ConstDecl) NodeSpan() Span { return n.Span }
func (n *ConstDecl) stmtNode()      {}

// AssignStmt rebinds a variable or writes through an index. Target is
// an *Ident or an *IndexExpr; the parser rejects anything else.
type AssignStmt struct {
	Span   Span
	Target Expr
	Value  Expr
}

func (n *AssignStmt) Kind() string   { return "AssignStmt" }
func (n *AssignStmt) NodeSpan() Span { return n.Span }
func (n *AssignStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type ForStmt struct {
	Span    Span
	Binding string
	Range   *RangeExpr
	Body    []Stmt
}

func (n *ForStmt) Kind() string   { return "ForStmt" }
func (n *ForStmt) NodeSpan() Span { return n.Span }
func (n *ForStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body []Stmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type IfStmt struct {
	Span     Span
	Cond     Expr
	ThenBody []Stmt
	ElseBody []Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type BreakStmt struct {
	Span Span
}

func (n *BreakStmt) Kind() string   { return "BreakStmt" }
func (n *BreakStmt) NodeSpan() Span { return n.Span }
func (n *BreakStmt) stmtNode()      {}

type ContinueStmt struct {
	Span Span
}

func (n *ContinueStmt) Kind() string   { return "ContinueStmt" }
func (n *ContinueStmt) NodeSpan() Span { return n.Span }
func (n *ContinueStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
