package sqlparse

import (
	"errors"
	"fmt"
	"strconv"

	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

// ErrUnexpectedToken is the named parser error kind from spec.md §7.
var ErrUnexpectedToken = errors.New("sqlparse: unexpected token")

// Parser turns one SQL statement's text into an sqlast.Statement.
type Parser struct {
	lx  *lexer
	cur token
}

// New returns a parser over sql.
func New(sql string) *Parser {
	p := &Parser{lx: newLexer(sql)}
	p.advance()
	return p
}

func (p *Parser) advance() { p.cur = p.lx.nextToken() }

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("sqlparse: %s: %w", fmt.Sprintf(format, args...), ErrUnexpectedToken)
}

func (p *Parser) expectKeyword(kw string) error {
	if p.cur.typ != tKeyword || p.cur.val != kw {
		return p.errorf("expected %s, got %q", kw, p.cur.val)
	}
	p.advance()
	return nil
}

func (p *Parser) expectSymbol(sym string) error {
	if p.cur.typ != tSymbol || p.cur.val != sym {
		return p.errorf("expected %q, got %q", sym, p.cur.val)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.typ != tIdent {
		return "", p.errorf("expected identifier, got %q", p.cur.val)
	}
	v := p.cur.val
	p.advance()
	return v, nil
}

// ParseStatement parses exactly one statement and returns its AST.
func (p *Parser) ParseStatement() (sqlast.Statement, error) {
	if p.cur.typ != tKeyword {
		return nil, p.errorf("expected a statement keyword, got %q", p.cur.val)
	}
	switch p.cur.val {
	case "CREATE":
		return p.parseCreate()
	case "INSERT":
		return p.parseInsert()
	case "SELECT":
		return p.parseSelect()
	case "BEGIN":
		p.advance()
		return sqlast.Begin{}, nil
	case "COMMIT":
		p.advance()
		return sqlast.Commit{}, nil
	case "ABORT":
		p.advance()
		return sqlast.Abort{}, nil
	default:
		return nil, p.errorf("unrecognized statement keyword %q", p.cur.val)
	}
}

func (p *Parser) parseCreate() (sqlast.Statement, error) {
	p.advance() // CREATE
	switch {
	case p.cur.typ == tKeyword && p.cur.val == "TABLE":
		return p.parseCreateTable()
	case p.cur.typ == tKeyword && p.cur.val == "INDEX":
		return p.parseCreateIndex()
	default:
		return nil, p.errorf("expected TABLE or INDEX after CREATE, got %q", p.cur.val)
	}
}

func (p *Parser) parseCreateTable() (sqlast.Statement, error) {
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var cols []tuple.Column
	for {
		colName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		nullable := true
		if p.cur.typ == tKeyword && p.cur.val == "NOT" {
			p.advance()
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			nullable = false
		}
		cols = append(cols, tuple.Column{Name: colName, Type: dt, Nullable: nullable})
		if p.cur.typ == tSymbol && p.cur.val == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return sqlast.CreateTable{Name: name, Columns: cols}, nil
}

func (p *Parser) parseDataType() (tuple.DataType, error) {
	if p.cur.typ != tKeyword {
		return 0, p.errorf("expected a column type, got %q", p.cur.val)
	}
	switch p.cur.val {
	case "INT":
		p.advance()
		return tuple.Integer, nil
	case "TEXT":
		p.advance()
		return tuple.Text, nil
	case "BOOL", "BOOLEAN":
		p.advance()
		return tuple.Boolean, nil
	default:
		return 0, p.errorf("unknown column type %q", p.cur.val)
	}
}

func (p *Parser) parseCreateIndex() (sqlast.Statement, error) {
	if err := p.expectKeyword("INDEX"); err != nil {
		return nil, err
	}
	idxName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	col, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return sqlast.CreateIndex{IndexName: idxName, Table: table, Column: col}, nil
}

func (p *Parser) parseInsert() (sqlast.Statement, error) {
	p.advance() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var values []tuple.Value
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.cur.typ == tSymbol && p.cur.val == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return sqlast.Insert{Table: table, Values: values}, nil
}

func (p *Parser) parseLiteral() (tuple.Value, error) {
	switch {
	case p.cur.typ == tNumber:
		n, err := strconv.ParseInt(p.cur.val, 10, 64)
		if err != nil {
			return tuple.Value{}, p.errorf("invalid integer literal %q", p.cur.val)
		}
		p.advance()
		return tuple.NewInt(n), nil
	case p.cur.typ == tString:
		v := p.cur.val
		p.advance()
		return tuple.NewText([]byte(v)), nil
	case p.cur.typ == tKeyword && p.cur.val == "TRUE":
		p.advance()
		return tuple.NewBool(true), nil
	case p.cur.typ == tKeyword && p.cur.val == "FALSE":
		p.advance()
		return tuple.NewBool(false), nil
	case p.cur.typ == tKeyword && p.cur.val == "NULL":
		p.advance()
		return tuple.Null(), nil
	default:
		return tuple.Value{}, p.errorf("expected a literal value, got %q", p.cur.val)
	}
}

func (p *Parser) parseSelect() (sqlast.Statement, error) {
	p.advance() // SELECT
	var columns []string
	if p.cur.typ == tSymbol && p.cur.val == "*" {
		p.advance()
	} else {
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, name)
			if p.cur.typ == tSymbol && p.cur.val == "," {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var join *sqlast.Join
	if p.cur.typ == tKeyword && p.cur.val == "JOIN" {
		p.advance()
		rightTable, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("ON"); err != nil {
			return nil, err
		}
		leftCol, err := p.parseQualifiedColumn()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		rightCol, err := p.parseQualifiedColumn()
		if err != nil {
			return nil, err
		}
		join = &sqlast.Join{Table: rightTable, LeftColumn: leftCol, RightColumn: rightCol}
	}

	var where sqlast.Condition
	if p.cur.typ == tKeyword && p.cur.val == "WHERE" {
		p.advance()
		where, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}

	return sqlast.Select{Columns: columns, Table: table, Join: join, Where: where}, nil
}

// parseQualifiedColumn accepts either `col` or `table.col`, discarding the
// table qualifier: resolution happens by name against the operator's
// current schema, per spec.md §4.8.
func (p *Parser) parseQualifiedColumn() (string, error) {
	name, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	if p.cur.typ == tSymbol && p.cur.val == "." {
		p.advance()
		return p.expectIdent()
	}
	return name, nil
}

func (p *Parser) parseOr() (sqlast.Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tKeyword && p.cur.val == "OR" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = sqlast.Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (sqlast.Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tKeyword && p.cur.val == "AND" {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = sqlast.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (sqlast.Condition, error) {
	if p.cur.typ == tKeyword && p.cur.val == "NOT" {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return sqlast.Not{Cond: inner}, nil
	}
	return p.parsePrimaryCondition()
}

func (p *Parser) parsePrimaryCondition() (sqlast.Condition, error) {
	if p.cur.typ == tSymbol && p.cur.val == "(" {
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return cond, nil
	}
	col, err := p.parseQualifiedColumn()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return sqlast.Simple{Column: col, Op: op, Value: val}, nil
}

func (p *Parser) parseOp() (sqlast.Op, error) {
	if p.cur.typ != tSymbol {
		return 0, p.errorf("expected a comparison operator, got %q", p.cur.val)
	}
	op, ok := map[string]sqlast.Op{
		"=": sqlast.OpEq, "!=": sqlast.OpNe,
		"<": sqlast.OpLt, "<=": sqlast.OpLe,
		">": sqlast.OpGt, ">=": sqlast.OpGe,
	}[p.cur.val]
	if !ok {
		return 0, p.errorf("unknown comparison operator %q", p.cur.val)
	}
	p.advance()
	return op, nil
}
