package sqlparse

import (
	"errors"
	"testing"

	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

func parseOne(t *testing.T, sql string) sqlast.Statement {
	t.Helper()
	stmt, err := New(sql).ParseStatement()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	return stmt
}

func TestParseCreateTable(t *testing.T) {
	stmt := parseOne(t, "CREATE TABLE users (id INT, name TEXT, active BOOL NOT NULL)")
	ct, ok := stmt.(sqlast.CreateTable)
	if !ok {
		t.Fatalf("got %T, want CreateTable", stmt)
	}
	if ct.Name != "users" {
		t.Fatalf("name = %q", ct.Name)
	}
	want := []tuple.Column{
		{Name: "id", Type: tuple.Integer, Nullable: true},
		{Name: "name", Type: tuple.Text, Nullable: true},
		{Name: "active", Type: tuple.Boolean, Nullable: false},
	}
	if len(ct.Columns) != len(want) {
		t.Fatalf("columns = %+v", ct.Columns)
	}
	for i, c := range want {
		if ct.Columns[i] != c {
			t.Fatalf("column %d = %+v, want %+v", i, ct.Columns[i], c)
		}
	}
}

func TestParseCreateIndex(t *testing.T) {
	stmt := parseOne(t, "CREATE INDEX idx_users_id ON users (id)")
	ci, ok := stmt.(sqlast.CreateIndex)
	if !ok {
		t.Fatalf("got %T, want CreateIndex", stmt)
	}
	if ci.IndexName != "idx_users_id" || ci.Table != "users" || ci.Column != "id" {
		t.Fatalf("got %+v", ci)
	}
}

func TestParseInsert(t *testing.T) {
	stmt := parseOne(t, "INSERT INTO users VALUES (1, 'Alice', TRUE)")
	ins, ok := stmt.(sqlast.Insert)
	if !ok {
		t.Fatalf("got %T, want Insert", stmt)
	}
	if ins.Table != "users" {
		t.Fatalf("table = %q", ins.Table)
	}
	want := []tuple.Value{tuple.NewInt(1), tuple.NewText([]byte("Alice")), tuple.NewBool(true)}
	if len(ins.Values) != len(want) {
		t.Fatalf("values = %+v", ins.Values)
	}
	for i, v := range want {
		if ins.Values[i].Kind != v.Kind {
			t.Fatalf("value %d kind = %v, want %v", i, ins.Values[i].Kind, v.Kind)
		}
	}
}

func TestParseInsertWithNull(t *testing.T) {
	stmt := parseOne(t, "INSERT INTO users VALUES (1, NULL)")
	ins := stmt.(sqlast.Insert)
	if !ins.Values[1].IsNull() {
		t.Fatalf("second value = %+v, want null", ins.Values[1])
	}
}

func TestParseSelectStar(t *testing.T) {
	stmt := parseOne(t, "SELECT * FROM users")
	sel, ok := stmt.(sqlast.Select)
	if !ok {
		t.Fatalf("got %T, want Select", stmt)
	}
	if sel.Columns != nil {
		t.Fatalf("columns = %v, want nil", sel.Columns)
	}
	if sel.Table != "users" || sel.Join != nil || sel.Where != nil {
		t.Fatalf("got %+v", sel)
	}
}

func TestParseSelectColumnsAndWhere(t *testing.T) {
	stmt := parseOne(t, "SELECT id, name FROM users WHERE age > 18")
	sel := stmt.(sqlast.Select)
	if len(sel.Columns) != 2 || sel.Columns[0] != "id" || sel.Columns[1] != "name" {
		t.Fatalf("columns = %v", sel.Columns)
	}
	cond, ok := sel.Where.(sqlast.Simple)
	if !ok {
		t.Fatalf("where = %T, want Simple", sel.Where)
	}
	if cond.Column != "age" || cond.Op != sqlast.OpGt || cond.Value.Int != 18 {
		t.Fatalf("where = %+v", cond)
	}
}

func TestParseSelectJoin(t *testing.T) {
	stmt := parseOne(t, "SELECT * FROM users JOIN orders ON users.id = orders.user_id")
	sel := stmt.(sqlast.Select)
	if sel.Join == nil {
		t.Fatal("expected a join")
	}
	if sel.Join.Table != "orders" || sel.Join.LeftColumn != "id" || sel.Join.RightColumn != "user_id" {
		t.Fatalf("join = %+v", sel.Join)
	}
}

func TestParseWhereAndOrPrecedence(t *testing.T) {
	// AND binds tighter than OR: "a OR b AND c" means "a OR (b AND c)".
	stmt := parseOne(t, "SELECT * FROM t WHERE a = 1 OR b = 2 AND c = 3")
	sel := stmt.(sqlast.Select)
	or, ok := sel.Where.(sqlast.Or)
	if !ok {
		t.Fatalf("where = %T, want Or", sel.Where)
	}
	left, ok := or.Left.(sqlast.Simple)
	if !ok || left.Column != "a" {
		t.Fatalf("left = %+v", or.Left)
	}
	right, ok := or.Right.(sqlast.And)
	if !ok {
		t.Fatalf("right = %T, want And", or.Right)
	}
	rl := right.Left.(sqlast.Simple)
	rr := right.Right.(sqlast.Simple)
	if rl.Column != "b" || rr.Column != "c" {
		t.Fatalf("and operands = %+v, %+v", rl, rr)
	}
}

func TestParseWhereNotAndParens(t *testing.T) {
	stmt := parseOne(t, "SELECT * FROM t WHERE NOT (a = 1 OR b = 2)")
	sel := stmt.(sqlast.Select)
	not, ok := sel.Where.(sqlast.Not)
	if !ok {
		t.Fatalf("where = %T, want Not", sel.Where)
	}
	if _, ok := not.Cond.(sqlast.Or); !ok {
		t.Fatalf("not.Cond = %T, want Or", not.Cond)
	}
}

func TestParseTransactionStatements(t *testing.T) {
	cases := map[string]sqlast.Statement{
		"BEGIN":  sqlast.Begin{},
		"COMMIT": sqlast.Commit{},
		"ABORT":  sqlast.Abort{},
	}
	for sql, want := range cases {
		got := parseOne(t, sql)
		if got != want {
			t.Fatalf("parse %q = %+v, want %+v", sql, got, want)
		}
	}
}

func TestParseErrorOnGarbage(t *testing.T) {
	_, err := New("SELECT FROM FROM").ParseStatement()
	if !errors.Is(err, ErrUnexpectedToken) {
		t.Fatalf("err = %v, want ErrUnexpectedToken", err)
	}
}

func TestParseErrorOnUnknownStatement(t *testing.T) {
	_, err := New("DELETE FROM users").ParseStatement()
	if !errors.Is(err, ErrUnexpectedToken) {
		t.Fatalf("err = %v, want ErrUnexpectedToken", err)
	}
}
