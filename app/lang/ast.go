package lang

// Statement is a parsed statement of a line.
type Statement interface {
	FirstToken() Token
	LastToken() Token
	statementTag()
}

// Expression is a parsed expression.
type Expression interface {
	FirstToken() Token
	LastToken() Token
	expressionTag()
}

// span holds the bounds of a node.
type span struct {
	First Token
	Last  Token
}

func (s span) FirstToken() Token { return s.First }
func (s span) LastToken() Token  { return s.Last }

// StartInLine returns the start offset of the node.
func (s span) StartInLine() int { return s.First.StartInLine }

// EndInLine returns the end offset of the node.
func (s span) EndInLine() int { return s.Last.EndInLine }

// NumericalCalculusStatement is a bare expression.
type NumericalCalculusStatement struct {
	span
	Expression Expression
}

// VariableDeclarationStatement is "name = expression".
type VariableDeclarationStatement struct {
	span
	Name       string
	Expression Expression
}

// ConditionStatement is "if cond then stmt [else stmt]". Only the chosen
// branch is parsed, so the other branch is nil.
type ConditionStatement struct {
	span
	Condition Expression
	Then      Statement
	Else      Statement
}

// CommentStatement is "// text" up to the end of the line.
type CommentStatement struct {
	span
	Text string
}

// HeaderStatement is "# title" at the start of a line.
type HeaderStatement struct {
	span
	Title string
}

func (*NumericalCalculusStatement) statementTag()   {}
func (*VariableDeclarationStatement) statementTag() {}
func (*ConditionStatement) statementTag()           {}
func (*CommentStatement) statementTag()             {}
func (*HeaderStatement) statementTag()              {}

// DataExpression is a single datum.
type DataExpression struct {
	span
	Data Data
}

// VariableReferenceExpression reads a variable.
type VariableReferenceExpression struct {
	span
	Name string
}

// BinaryOperatorExpression applies an operator. Implicit is set when the
// operator was inferred from adjacency.
type BinaryOperatorExpression struct {
	span
	Left     Expression
	Operator BinaryOperatorType
	Right    Expression
	Implicit bool
}

// UnaryExpression is a leading sign.
type UnaryExpression struct {
	span
	Negate  bool
	Operand Expression
}

// GroupExpression is a parenthesized expression.
type GroupExpression struct {
	span
	Inner Expression
}

// FunctionExpression is a function recognized from a template.
type FunctionExpression struct {
	span
	Function  *FunctionDefinition
	Arguments []Expression
}

// ConversionExpression is "expr to unit". Exactly one of Unit and Currency
// is set.
type ConversionExpression struct {
	span
	Expression Expression
	Unit       *Unit
	Currency   string
}

func (*DataExpression) expressionTag()              {}
func (*VariableReferenceExpression) expressionTag() {}
func (*BinaryOperatorExpression) expressionTag()    {}
func (*UnaryExpression) expressionTag()             {}
func (*GroupExpression) expressionTag()             {}
func (*FunctionExpression) expressionTag()          {}
func (*ConversionExpression) expressionTag()        {}

// BinaryOperatorType is an algebra or relation operator.
type BinaryOperatorType int

const (
	OpAddition BinaryOperatorType = iota
	OpSubtraction
	OpMultiply
	OpDivision
	OpEquality
	OpNoEquality
	OpLessThan
	OpLessThanOrEqualTo
	OpGreaterThan
	OpGreaterThanOrEqualTo
)

var operatorNames = [...]string{"+", "-", "*", "/", "==", "!=", "<", "<=", ">", ">="}

func (op BinaryOperatorType) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return "?"
}

// IsRelation reports whether op compares its operands.
func (op BinaryOperatorType) IsRelation() bool { return op >= OpEquality }

var operatorTokens = map[TokenType]BinaryOperatorType{
	TokenAddition:             OpAddition,
	TokenSubtraction:          OpSubtraction,
	TokenMultiply:             OpMultiply,
	TokenDivision:             OpDivision,
	TokenEquality:             OpEquality,
	TokenNoEquality:           OpNoEquality,
	TokenLessThan:             OpLessThan,
	TokenLessThanOrEqualTo:    OpLessThanOrEqualTo,
	TokenGreaterThan:          OpGreaterThan,
	TokenGreaterThanOrEqualTo: OpGreaterThanOrEqualTo,
}

// precedence returns the binding strength of op; higher binds tighter.
func (op BinaryOperatorType) precedence() int {
	switch op {
	case OpMultiply, OpDivision:
		return 3
	case OpAddition, OpSubtraction:
		return 2
	}
	return 1
}
