package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram parses a JSON-encoded AST into a Program.
func DecodeProgram(data []byte) (*Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: parse: %w", err)
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("ast: decoded node is not a program: %T", node)
	}
	return program, nil
}

func decodeNode(raw map[string]any) (Node, error) {
	typ, _ := raw["type"].(string)
	node, err := decodeTyped(NodeType(typ), raw)
	if err != nil {
		return nil, err
	}
	if pos, ok := raw["position"].(map[string]any); ok {
		SetPos(node, decodePosition(pos))
	}
	return node, nil
}

func decodeTyped(typ NodeType, raw map[string]any) (Node, error) {
	switch typ {
	case NodeProgram:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return NewProgram(body), nil
	case NodeVariableDeclaration:
		value, err := decodeExpression(raw["value"])
		if err != nil {
			return nil, err
		}
		constant, _ := raw["const"].(bool)
		decl := NewVariableDeclaration(str(raw, "name"), value, constant)
		decl.TypeAnnotation = str(raw, "typeAnnotation")
		return decl, nil
	case NodeFunctionDeclaration:
		params, err := decodeParams(raw["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		fn := NewFunctionDeclaration(str(raw, "name"), params, body)
		fn.ReturnType = str(raw, "returnType")
		fn.Async, _ = raw["async"].(bool)
		return fn, nil
	case NodeIfStatement:
		condition, err := decodeExpression(raw["condition"])
		if err != nil {
			return nil, err
		}
		then, err := decodeStatements(raw["then"])
		if err != nil {
			return nil, err
		}
		alt, err := decodeStatements(raw["else"])
		if err != nil {
			return nil, err
		}
		stmt := NewIfStatement(condition, then, alt)
		if clauses, ok := raw["elseIfs"].([]any); ok {
			for _, rawClause := range clauses {
				clause, ok := rawClause.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("ast: invalid elseIf clause")
				}
				cond, err := decodeExpression(clause["condition"])
				if err != nil {
					return nil, err
				}
				body, err := decodeStatements(clause["body"])
				if err != nil {
					return nil, err
				}
				stmt.ElseIfs = append(stmt.ElseIfs, &ElseIfClause{Condition: cond, Body: body})
			}
		}
		return stmt, nil
	case NodeForStatement:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		if raw["iterable"] != nil {
			iterable, err := decodeExpression(raw["iterable"])
			if err != nil {
				return nil, err
			}
			return NewForStatement(str(raw, "variable"), iterable, body), nil
		}
		from, err := decodeExpression(raw["from"])
		if err != nil {
			return nil, err
		}
		to, err := decodeExpression(raw["to"])
		if err != nil {
			return nil, err
		}
		return NewForRangeStatement(str(raw, "variable"), from, to, body), nil
	case NodeWhileStatement:
		condition, err := decodeExpression(raw["condition"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return NewWhileStatement(condition, body), nil
	case NodeTryStatement:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		catch, err := decodeStatements(raw["catch"])
		if err != nil {
			return nil, err
		}
		finally, err := decodeStatements(raw["finally"])
		if err != nil {
			return nil, err
		}
		return NewTryStatement(body, str(raw, "catchParam"), catch, finally), nil
	case NodeReturnStatement:
		if raw["value"] == nil {
			return NewReturnStatement(nil), nil
		}
		value, err := decodeExpression(raw["value"])
		if err != nil {
			return nil, err
		}
		return NewReturnStatement(value), nil
	case NodeImportStatement:
		stmt := &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Source: str(raw, "source")}
		stmt.Namespace = str(raw, "namespace")
		stmt.All, _ = raw["all"].(bool)
		if items, ok := raw["items"].([]any); ok {
			for _, rawItem := range items {
				item, ok := rawItem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("ast: invalid import item")
				}
				stmt.Items = append(stmt.Items, ImportItem{Name: str(item, "name"), Alias: str(item, "alias")})
			}
		}
		return stmt, nil
	case NodeExportStatement:
		stmt := &ExportStatement{nodeImpl: newNodeImpl(NodeExportStatement)}
		if decl, ok := raw["declaration"].(map[string]any); ok {
			child, err := decodeNode(decl)
			if err != nil {
				return nil, err
			}
			declStmt, ok := child.(Statement)
			if !ok {
				return nil, fmt.Errorf("ast: exported declaration is not a statement: %T", child)
			}
			stmt.Declaration = declStmt
		}
		if names, ok := raw["names"].([]any); ok {
			for _, name := range names {
				text, _ := name.(string)
				stmt.Names = append(stmt.Names, text)
			}
		}
		return stmt, nil
	case NodeTypeAlias:
		return NewTypeAlias(str(raw, "name"), str(raw, "aliasedType")), nil
	case NodeParallelBlock:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return NewParallelBlock(body), nil
	case NodeTogetherBlock:
		tasksVal, _ := raw["tasks"].([]any)
		tasks := make([]*NamedTask, 0, len(tasksVal))
		for _, rawTask := range tasksVal {
			task, ok := rawTask.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid named task")
			}
			body, err := decodeStatements(task["body"])
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, NewNamedTask(str(task, "name"), body))
		}
		block := NewTogetherBlock(tasks)
		if raw["timeout"] != nil {
			timeout, err := decodeExpression(raw["timeout"])
			if err != nil {
				return nil, err
			}
			block.Timeout = timeout
		}
		return block, nil
	case NodeExpressionStatement:
		expr, err := decodeExpression(raw["expression"])
		if err != nil {
			return nil, err
		}
		return NewExpressionStatement(expr), nil
	case NodeLiteral:
		return NewLiteral(raw["value"]), nil
	case NodeIdentifier:
		return NewIdentifier(str(raw, "name")), nil
	case NodeBinaryExpression:
		left, err := decodeExpression(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		return NewBinaryExpression(str(raw, "operator"), left, right), nil
	case NodeUnaryExpression:
		operand, err := decodeExpression(raw["operand"])
		if err != nil {
			return nil, err
		}
		return NewUnaryExpression(str(raw, "operator"), operand), nil
	case NodeCallExpression:
		callee, err := decodeExpression(raw["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw["args"])
		if err != nil {
			return nil, err
		}
		return NewCallExpression(callee, args), nil
	case NodeMemberExpression:
		object, err := decodeExpression(raw["object"])
		if err != nil {
			return nil, err
		}
		return NewMemberExpression(object, str(raw, "property")), nil
	case NodeIndexExpression:
		object, err := decodeExpression(raw["object"])
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(raw["index"])
		if err != nil {
			return nil, err
		}
		return NewIndexExpression(object, index), nil
	case NodeConditionalExpression:
		test, err := decodeExpression(raw["test"])
		if err != nil {
			return nil, err
		}
		consequent, err := decodeExpression(raw["consequent"])
		if err != nil {
			return nil, err
		}
		alternate, err := decodeExpression(raw["alternate"])
		if err != nil {
			return nil, err
		}
		return NewConditionalExpression(test, consequent, alternate), nil
	case NodeArrowFunction:
		params, err := decodeParams(raw["params"])
		if err != nil {
			return nil, err
		}
		fn := &ArrowFunction{nodeImpl: newNodeImpl(NodeArrowFunction), Params: params}
		fn.Async, _ = raw["async"].(bool)
		if raw["expr"] != nil {
			expr, err := decodeExpression(raw["expr"])
			if err != nil {
				return nil, err
			}
			fn.Expr = expr
			return fn, nil
		}
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		fn.Body = body
		return fn, nil
	case NodeArrayLiteral:
		elements, err := decodeExpressions(raw["elements"])
		if err != nil {
			return nil, err
		}
		return NewArrayLiteral(elements), nil
	case NodeObjectLiteral:
		fieldsVal, _ := raw["fields"].([]any)
		fields := make([]*ObjectField, 0, len(fieldsVal))
		for _, rawField := range fieldsVal {
			field, ok := rawField.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid object field")
			}
			value, err := decodeExpression(field["value"])
			if err != nil {
				return nil, err
			}
			fields = append(fields, NewObjectField(str(field, "key"), value))
		}
		return NewObjectLiteral(fields), nil
	case NodeAwaitExpression:
		operand, err := decodeExpression(raw["operand"])
		if err != nil {
			return nil, err
		}
		expr := NewAwaitExpression(operand)
		if raw["timeout"] != nil {
			timeout, err := decodeExpression(raw["timeout"])
			if err != nil {
				return nil, err
			}
			expr.Timeout = timeout
		}
		return expr, nil
	case NodeResultExpression:
		success, _ := raw["success"].(bool)
		var value, errValue Expression
		var err error
		if raw["value"] != nil {
			if value, err = decodeExpression(raw["value"]); err != nil {
				return nil, err
			}
		}
		if raw["error"] != nil {
			if errValue, err = decodeExpression(raw["error"]); err != nil {
				return nil, err
			}
		}
		return NewResultExpression(success, value, errValue), nil
	case NodeChannelExpression:
		expr := NewChannelExpression(ChannelOp(str(raw, "op")), str(raw, "channel"))
		if raw["value"] != nil {
			value, err := decodeExpression(raw["value"])
			if err != nil {
				return nil, err
			}
			expr.Value = value
		}
		if raw["size"] != nil {
			size, err := decodeExpression(raw["size"])
			if err != nil {
				return nil, err
			}
			expr.Size = size
		}
		return expr, nil
	case NodePipeExpression:
		left, err := decodeExpression(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		return NewPipeExpression(left, right), nil
	case NodeTemplateString:
		partsVal, _ := raw["parts"].([]any)
		parts := make([]TemplatePart, 0, len(partsVal))
		for _, rawPart := range partsVal {
			part, ok := rawPart.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid template part")
			}
			if exprRaw := part["expr"]; exprRaw != nil {
				expr, err := decodeExpression(exprRaw)
				if err != nil {
					return nil, err
				}
				parts = append(parts, TemplatePart{Expr: expr})
				continue
			}
			parts = append(parts, TemplatePart{Text: str(part, "text")})
		}
		return NewTemplateString(parts), nil
	default:
		return nil, fmt.Errorf("ast: unknown node type %q", typ)
	}
}

func decodeStatements(raw any) ([]Statement, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("ast: statement list expected, got %T", raw)
	}
	stmts := make([]Statement, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid statement %T", item)
		}
		node, err := decodeNode(obj)
		if err != nil {
			return nil, err
		}
		stmt, ok := node.(Statement)
		if !ok {
			return nil, fmt.Errorf("ast: %s is not a statement", node.NodeType())
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeExpressions(raw any) ([]Expression, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("ast: expression list expected, got %T", raw)
	}
	exprs := make([]Expression, 0, len(list))
	for _, item := range list {
		expr, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeExpression(raw any) (Expression, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: expression expected, got %T", raw)
	}
	node, err := decodeNode(obj)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expression)
	if !ok {
		return nil, fmt.Errorf("ast: %s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodeParams(raw any) ([]*FunctionParameter, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("ast: parameter list expected, got %T", raw)
	}
	params := make([]*FunctionParameter, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid parameter %T", item)
		}
		params = append(params, NewFunctionParameter(str(obj, "name"), str(obj, "typeAnnotation")))
	}
	return params, nil
}

func decodePosition(raw map[string]any) *Position {
	pos := &Position{File: str(raw, "file")}
	if line, ok := raw["line"].(float64); ok {
		pos.Line = int(line)
	}
	if column, ok := raw["column"].(float64); ok {
		pos.Column = int(column)
	}
	return pos
}

func str(raw map[string]any, key string) string {
	value, _ := raw[key].(string)
	return value
}
