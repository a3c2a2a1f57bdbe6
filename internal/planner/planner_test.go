package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"minidb/internal/catalog"
	"minidb/internal/exec"
	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

func newPlanner(t *testing.T) (*Planner, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New(t.TempDir(), 16, nil)
	return New(cat), cat
}

func drain(t *testing.T, op interface {
	Next() (*tuple.Tuple, error)
}) []*tuple.Tuple {
	t.Helper()
	var rows []*tuple.Tuple
	for {
		tup, err := op.Next()
		require.NoError(t, err, "Next")
		if tup == nil {
			return rows
		}
		rows = append(rows, tup)
	}
}

// rowValues collects just the Values of each tuple, for cmp.Diff against a
// literal []tuple.Value slice without dragging each row's Schema pointer
// into the comparison.
func rowValues(rows []*tuple.Tuple) [][]tuple.Value {
	out := make([][]tuple.Value, len(rows))
	for i, r := range rows {
		out[i] = r.Values
	}
	return out
}

// TestScenarioSelectAll mirrors spec.md §8 scenario 1.
func TestScenarioSelectAll(t *testing.T) {
	p, _ := newPlanner(t)
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name: "users",
		Columns: []tuple.Column{
			{Name: "id", Type: tuple.Integer},
			{Name: "name", Type: tuple.Text, Nullable: true},
		},
	}), "create table")
	_, err := p.ExecuteInsert(sqlast.Insert{Table: "users", Values: []tuple.Value{tuple.NewInt(1), tuple.NewText([]byte("Alice"))}})
	require.NoError(t, err, "insert")
	_, err = p.ExecuteInsert(sqlast.Insert{Table: "users", Values: []tuple.Value{tuple.NewInt(2), tuple.NewText([]byte("Bob"))}})
	require.NoError(t, err, "insert")

	op, err := p.PlanSelect(sqlast.Select{Table: "users"})
	require.NoError(t, err, "PlanSelect")
	defer op.Close()
	rows := drain(t, op)

	want := [][]tuple.Value{
		{tuple.NewInt(1), tuple.NewText([]byte("Alice"))},
		{tuple.NewInt(2), tuple.NewText([]byte("Bob"))},
	}
	if diff := cmp.Diff(want, rowValues(rows)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestScenarioFilterGreaterThan mirrors spec.md §8 scenario 2.
func TestScenarioFilterGreaterThan(t *testing.T) {
	p, _ := newPlanner(t)
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name:    "nums",
		Columns: []tuple.Column{{Name: "val", Type: tuple.Integer}},
	}), "create table")
	for _, v := range []int64{10, 20, 30} {
		_, err := p.ExecuteInsert(sqlast.Insert{Table: "nums", Values: []tuple.Value{tuple.NewInt(v)}})
		require.NoError(t, err, "insert")
	}

	op, err := p.PlanSelect(sqlast.Select{
		Table: "nums",
		Where: sqlast.Simple{Column: "val", Op: sqlast.OpGt, Value: tuple.NewInt(15)},
	})
	require.NoError(t, err, "PlanSelect")
	defer op.Close()
	rows := drain(t, op)

	want := [][]tuple.Value{{tuple.NewInt(20)}, {tuple.NewInt(30)}}
	if diff := cmp.Diff(want, rowValues(rows)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestScenarioIndexScanEquality mirrors spec.md §8 scenario 3.
func TestScenarioIndexScanEquality(t *testing.T) {
	p, cat := newPlanner(t)
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name: "users",
		Columns: []tuple.Column{
			{Name: "id", Type: tuple.Integer},
			{Name: "name", Type: tuple.Text},
		},
	}), "create table")
	for _, row := range []struct {
		id   int64
		name string
	}{{10, "Alice"}, {20, "Bob"}, {30, "Charlie"}} {
		_, err := p.ExecuteInsert(sqlast.Insert{Table: "users", Values: []tuple.Value{tuple.NewInt(row.id), tuple.NewText([]byte(row.name))}})
		require.NoError(t, err, "insert")
	}
	require.NoError(t, p.ExecuteCreateIndex(sqlast.CreateIndex{IndexName: "idx", Table: "users", Column: "id"}), "create index")

	op, err := p.PlanSelect(sqlast.Select{
		Table: "users",
		Where: sqlast.Simple{Column: "id", Op: sqlast.OpEq, Value: tuple.NewInt(20)},
	})
	require.NoError(t, err, "PlanSelect")
	defer op.Close()
	_, ok := op.(*exec.IndexScan)
	require.True(t, ok, "planner did not choose IndexScan, got %T", op)
	rows := drain(t, op)

	want := [][]tuple.Value{{tuple.NewInt(20), tuple.NewText([]byte("Bob"))}}
	if diff := cmp.Diff(want, rowValues(rows)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	tbl, _ := cat.Table("users")
	_, ok = tbl.Index("id")
	require.True(t, ok, "expected id index to have been built")
}

// TestScenarioJoin mirrors spec.md §8 scenario 4.
func TestScenarioJoin(t *testing.T) {
	p, _ := newPlanner(t)
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name: "users",
		Columns: []tuple.Column{
			{Name: "id", Type: tuple.Integer},
			{Name: "name", Type: tuple.Text},
		},
	}), "create users")
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name: "orders",
		Columns: []tuple.Column{
			{Name: "order_id", Type: tuple.Integer},
			{Name: "user_id", Type: tuple.Integer},
		},
	}), "create orders")
	for _, row := range []struct {
		id   int64
		name string
	}{{1, "Alice"}, {2, "Bob"}} {
		_, err := p.ExecuteInsert(sqlast.Insert{Table: "users", Values: []tuple.Value{tuple.NewInt(row.id), tuple.NewText([]byte(row.name))}})
		require.NoError(t, err, "insert user")
	}
	for _, row := range [][2]int64{{100, 1}, {101, 2}, {102, 1}} {
		_, err := p.ExecuteInsert(sqlast.Insert{Table: "orders", Values: []tuple.Value{tuple.NewInt(row[0]), tuple.NewInt(row[1])}})
		require.NoError(t, err, "insert order")
	}

	op, err := p.PlanSelect(sqlast.Select{
		Table: "users",
		Join:  &sqlast.Join{Table: "orders", LeftColumn: "id", RightColumn: "user_id"},
	})
	require.NoError(t, err, "PlanSelect")
	defer op.Close()
	rows := drain(t, op)

	want := [][]tuple.Value{
		{tuple.NewInt(1), tuple.NewText([]byte("Alice")), tuple.NewInt(100), tuple.NewInt(1)},
		{tuple.NewInt(1), tuple.NewText([]byte("Alice")), tuple.NewInt(102), tuple.NewInt(1)},
		{tuple.NewInt(2), tuple.NewText([]byte("Bob")), tuple.NewInt(101), tuple.NewInt(2)},
	}
	if diff := cmp.Diff(want, rowValues(rows)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertColumnCountMismatch(t *testing.T) {
	p, _ := newPlanner(t)
	require.NoError(t, p.ExecuteCreateTable(sqlast.CreateTable{
		Name:    "nums",
		Columns: []tuple.Column{{Name: "val", Type: tuple.Integer}},
	}), "create table")
	_, err := p.ExecuteInsert(sqlast.Insert{Table: "nums", Values: []tuple.Value{tuple.NewInt(1), tuple.NewInt(2)}})
	require.ErrorIs(t, err, ErrColumnCountMismatch, "insert with wrong column count")
}

func TestSelectFromMissingTable(t *testing.T) {
	p, _ := newPlanner(t)
	_, err := p.PlanSelect(sqlast.Select{Table: "ghost"})
	require.ErrorIs(t, err, ErrTableNotFound, "select from missing table")
}
