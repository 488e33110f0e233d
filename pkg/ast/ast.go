package ast

// NodeType identifies the variant of an AST node. The tag is stamped at
// construction and never changes afterwards.
type NodeType string

const (
	NodeProgram               NodeType = "Program"
	NodeVariableDeclaration   NodeType = "VariableDeclaration"
	NodeFunctionDeclaration   NodeType = "FunctionDeclaration"
	NodeFunctionParameter     NodeType = "FunctionParameter"
	NodeIfStatement           NodeType = "IfStatement"
	NodeForStatement          NodeType = "ForStatement"
	NodeWhileStatement        NodeType = "WhileStatement"
	NodeTryStatement          NodeType = "TryStatement"
	NodeReturnStatement       NodeType = "ReturnStatement"
	NodeImportStatement       NodeType = "ImportStatement"
	NodeExportStatement       NodeType = "ExportStatement"
	NodeTypeAlias             NodeType = "TypeAlias"
	NodeParallelBlock         NodeType = "ParallelBlock"
	NodeTogetherBlock         NodeType = "TogetherBlock"
	NodeNamedTask             NodeType = "NamedTask"
	NodeExpressionStatement   NodeType = "ExpressionStatement"
	NodeLiteral               NodeType = "Literal"
	NodeIdentifier            NodeType = "Identifier"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeCallExpression        NodeType = "CallExpression"
	NodeMemberExpression      NodeType = "MemberExpression"
	NodeIndexExpression       NodeType = "IndexExpression"
	NodeConditionalExpression NodeType = "ConditionalExpression"
	NodeArrowFunction         NodeType = "ArrowFunction"
	NodeArrayLiteral          NodeType = "ArrayLiteral"
	NodeObjectLiteral         NodeType = "ObjectLiteral"
	NodeObjectField           NodeType = "ObjectField"
	NodeAwaitExpression       NodeType = "AwaitExpression"
	NodeResultExpression      NodeType = "ResultExpression"
	NodeChannelExpression     NodeType = "ChannelExpression"
	NodePipeExpression        NodeType = "PipeExpression"
	NodeTemplateString        NodeType = "TemplateString"
)

// Position records where a node appeared in source, for diagnostics.
type Position struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	File   string `json:"file,omitempty"`
}

// Node is the shared behaviour of every AST node.
type Node interface {
	NodeType() NodeType
	Pos() *Position
	isNode()
}

type nodeImpl struct {
	Type     NodeType  `json:"type"`
	Position *Position `json:"position,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Pos() *Position     { return n.Position }
func (nodeImpl) isNode()              {}

// SetPos attaches source location metadata to the node.
func SetPos(node Node, pos *Position) {
	if node == nil || pos == nil {
		return
	}
	if setter, ok := node.(interface{ setPos(*Position) }); ok {
		setter.setPos(pos)
	}
}

func (n *nodeImpl) setPos(pos *Position) { n.Position = pos }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// IsExpression reports whether the node may appear in expression position.
func IsExpression(node Node) bool {
	_, ok := node.(Expression)
	return ok
}

// IsStatement reports whether the node may appear in statement position.
func IsStatement(node Node) bool {
	_, ok := node.(Statement)
	return ok
}

// Program

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Name           string     `json:"name"`
	TypeAnnotation string     `json:"typeAnnotation,omitempty"`
	Value          Expression `json:"value"`
	Const          bool       `json:"const,omitempty"`
}

func NewVariableDeclaration(name string, value Expression, constant bool) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Name: name, Value: value, Const: constant}
}

type FunctionParameter struct {
	nodeImpl

	Name           string `json:"name"`
	TypeAnnotation string `json:"typeAnnotation,omitempty"`
}

func NewFunctionParameter(name, typeAnnotation string) *FunctionParameter {
	return &FunctionParameter{nodeImpl: newNodeImpl(NodeFunctionParameter), Name: name, TypeAnnotation: typeAnnotation}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name       string               `json:"name"`
	Params     []*FunctionParameter `json:"params"`
	ReturnType string               `json:"returnType,omitempty"`
	Async      bool                 `json:"async,omitempty"`
	Body       []Statement          `json:"body"`
}

func NewFunctionDeclaration(name string, params []*FunctionParameter, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

// ElseIfClause pairs a condition with its branch inside an IfStatement.
type ElseIfClause struct {
	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression      `json:"condition"`
	Then      []Statement     `json:"then"`
	ElseIfs   []*ElseIfClause `json:"elseIfs,omitempty"`
	Else      []Statement     `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, alt []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: alt}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Variable string      `json:"variable"`
	Iterable Expression  `json:"iterable,omitempty"`
	From     Expression  `json:"from,omitempty"`
	To       Expression  `json:"to,omitempty"`
	Body     []Statement `json:"body"`
}

func NewForStatement(variable string, iterable Expression, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Variable: variable, Iterable: iterable, Body: body}
}

func NewForRangeStatement(variable string, from, to Expression, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Variable: variable, From: from, To: to, Body: body}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileStatement(condition Expression, body []Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Body       []Statement `json:"body"`
	CatchParam string      `json:"catchParam,omitempty"`
	Catch      []Statement `json:"catch,omitempty"`
	Finally    []Statement `json:"finally,omitempty"`
}

func NewTryStatement(body []Statement, catchParam string, catch, finally []Statement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, CatchParam: catchParam, Catch: catch, Finally: finally}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

// ImportItem names a single imported binding with an optional alias.
type ImportItem struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

type ImportStatement struct {
	nodeImpl
	statementMarker

	Items     []ImportItem `json:"items,omitempty"`
	Namespace string       `json:"namespace,omitempty"`
	All       bool         `json:"all,omitempty"`
	Source    string       `json:"source"`
}

func NewImportStatement(items []ImportItem, source string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Items: items, Source: source}
}

func NewNamespaceImport(namespace, source string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Namespace: namespace, Source: source}
}

type ExportStatement struct {
	nodeImpl
	statementMarker

	Declaration Statement `json:"declaration,omitempty"`
	Names       []string  `json:"names,omitempty"`
}

func NewExportStatement(declaration Statement, names []string) *ExportStatement {
	return &ExportStatement{nodeImpl: newNodeImpl(NodeExportStatement), Declaration: declaration, Names: names}
}

type TypeAlias struct {
	nodeImpl
	statementMarker

	Name string `json:"name"`
	Type string `json:"aliasedType"`
}

func NewTypeAlias(name, aliased string) *TypeAlias {
	return &TypeAlias{nodeImpl: newNodeImpl(NodeTypeAlias), Name: name, Type: aliased}
}

type ParallelBlock struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewParallelBlock(body []Statement) *ParallelBlock {
	return &ParallelBlock{nodeImpl: newNodeImpl(NodeParallelBlock), Body: body}
}

type NamedTask struct {
	nodeImpl

	Name string      `json:"name"`
	Body []Statement `json:"body"`
}

func NewNamedTask(name string, body []Statement) *NamedTask {
	return &NamedTask{nodeImpl: newNodeImpl(NodeNamedTask), Name: name, Body: body}
}

type TogetherBlock struct {
	nodeImpl
	statementMarker

	Tasks   []*NamedTask `json:"tasks"`
	Timeout Expression   `json:"timeout,omitempty"`
}

func NewTogetherBlock(tasks []*NamedTask) *TogetherBlock {
	return &TogetherBlock{nodeImpl: newNodeImpl(NodeTogetherBlock), Tasks: tasks}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type Literal struct {
	nodeImpl
	expressionMarker

	Value any `json:"value"`
}

func NewLiteral(value any) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: value}
}

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee Expression   `json:"callee"`
	Args   []Expression `json:"args"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Args: args}
}

type MemberExpression struct {
	nodeImpl
	expressionMarker

	Object   Expression `json:"object"`
	Property string     `json:"property"`
}

func NewMemberExpression(object Expression, property string) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: property}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker

	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewConditionalExpression(test, consequent, alternate Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

type ArrowFunction struct {
	nodeImpl
	expressionMarker

	Params []*FunctionParameter `json:"params"`
	Body   []Statement          `json:"body,omitempty"`
	Expr   Expression           `json:"expr,omitempty"`
	Async  bool                 `json:"async,omitempty"`
}

func NewArrowFunction(params []*FunctionParameter, body []Statement, expr Expression) *ArrowFunction {
	return &ArrowFunction{nodeImpl: newNodeImpl(NodeArrowFunction), Params: params, Body: body, Expr: expr}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type ObjectField struct {
	nodeImpl

	Key   string     `json:"key"`
	Value Expression `json:"value"`
}

func NewObjectField(key string, value Expression) *ObjectField {
	return &ObjectField{nodeImpl: newNodeImpl(NodeObjectField), Key: key, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker

	Fields []*ObjectField `json:"fields"`
}

func NewObjectLiteral(fields []*ObjectField) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Fields: fields}
}

type AwaitExpression struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
	Timeout Expression `json:"timeout,omitempty"`
}

func NewAwaitExpression(operand Expression) *AwaitExpression {
	return &AwaitExpression{nodeImpl: newNodeImpl(NodeAwaitExpression), Operand: operand}
}

type ResultExpression struct {
	nodeImpl
	expressionMarker

	Success bool       `json:"success"`
	Value   Expression `json:"value,omitempty"`
	Error   Expression `json:"error,omitempty"`
}

func NewResultExpression(success bool, value, errValue Expression) *ResultExpression {
	return &ResultExpression{nodeImpl: newNodeImpl(NodeResultExpression), Success: success, Value: value, Error: errValue}
}

// ChannelOp enumerates what a ChannelExpression does.
type ChannelOp string

const (
	ChannelCreate  ChannelOp = "create"
	ChannelSend    ChannelOp = "send"
	ChannelReceive ChannelOp = "receive"
)

type ChannelExpression struct {
	nodeImpl
	expressionMarker

	Op      ChannelOp  `json:"op"`
	Channel string     `json:"channel"`
	Value   Expression `json:"value,omitempty"`
	Size    Expression `json:"size,omitempty"`
}

func NewChannelExpression(op ChannelOp, channel string) *ChannelExpression {
	return &ChannelExpression{nodeImpl: newNodeImpl(NodeChannelExpression), Op: op, Channel: channel}
}

type PipeExpression struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewPipeExpression(left, right Expression) *PipeExpression {
	return &PipeExpression{nodeImpl: newNodeImpl(NodePipeExpression), Left: left, Right: right}
}

// TemplatePart is either a literal chunk (Text) or an interpolated expression.
type TemplatePart struct {
	Text string     `json:"text,omitempty"`
	Expr Expression `json:"expr,omitempty"`
}

type TemplateString struct {
	nodeImpl
	expressionMarker

	Parts []TemplatePart `json:"parts"`
}

func NewTemplateString(parts []TemplatePart) *TemplateString {
	return &TemplateString{nodeImpl: newNodeImpl(NodeTemplateString), Parts: parts}
}
