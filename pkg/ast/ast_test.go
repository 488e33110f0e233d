package ast

import "testing"

func TestNodeTagsAreStampedAtConstruction(t *testing.T) {
	decl := NewVariableDeclaration("x", NewLiteral(5.0), false)
	if decl.NodeType() != NodeVariableDeclaration {
		t.Fatalf("unexpected tag %q", decl.NodeType())
	}
	call := NewCallExpression(NewIdentifier("greet"), []Expression{NewLiteral("hi")})
	if call.NodeType() != NodeCallExpression {
		t.Fatalf("unexpected tag %q", call.NodeType())
	}
}

func TestExpressionStatementClassification(t *testing.T) {
	exprs := []Node{
		NewLiteral(1.0),
		NewIdentifier("x"),
		NewBinaryExpression("+", NewLiteral(1.0), NewLiteral(2.0)),
		NewArrayLiteral(nil),
		NewAwaitExpression(NewIdentifier("task")),
		NewResultExpression(true, NewLiteral("ok"), nil),
		NewTemplateString([]TemplatePart{{Text: "hi "}, {Expr: NewIdentifier("name")}}),
	}
	for _, node := range exprs {
		if !IsExpression(node) {
			t.Fatalf("%s should classify as expression", node.NodeType())
		}
	}

	stmts := []Node{
		NewVariableDeclaration("x", NewLiteral(1.0), true),
		NewFunctionDeclaration("f", nil, nil),
		NewWhileStatement(NewLiteral(true), nil),
		NewParallelBlock(nil),
		NewTogetherBlock(nil),
		NewImportStatement([]ImportItem{{Name: "map"}}, "collections"),
	}
	for _, node := range stmts {
		if !IsStatement(node) {
			t.Fatalf("%s should classify as statement", node.NodeType())
		}
		if IsExpression(node) {
			t.Fatalf("%s should not classify as expression", node.NodeType())
		}
	}
}

func TestSetPos(t *testing.T) {
	id := NewIdentifier("x")
	if id.Pos() != nil {
		t.Fatalf("fresh node should carry no position")
	}
	SetPos(id, &Position{Line: 3, Column: 7, File: "main.rl"})
	pos := id.Pos()
	if pos == nil || pos.Line != 3 || pos.Column != 7 || pos.File != "main.rl" {
		t.Fatalf("unexpected position %+v", pos)
	}
}
