package manifest

import (
	"strings"
	"testing"

	"minidb/internal/tuple"
)

func usersSchema(t *testing.T) *tuple.Schema {
	t.Helper()
	schema, err := tuple.NewSchema([]tuple.Column{
		{Name: "id", Type: tuple.Integer, Nullable: false},
		{Name: "name", Type: tuple.Text, Nullable: true},
		{Name: "active", Type: tuple.Boolean, Nullable: true},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return schema
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	want := usersSchema(t)
	if err := Write(dir, "users", want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(dir, "users")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("got %d columns, want %d", got.Len(), want.Len())
	}
	for i, c := range want.Columns {
		if got.Columns[i] != c {
			t.Fatalf("column %d = %+v, want %+v", i, got.Columns[i], c)
		}
	}
}

func TestListTablesFindsManifests(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, "users", usersSchema(t)); err != nil {
		t.Fatalf("Write users: %v", err)
	}
	other, err := tuple.NewSchema([]tuple.Column{{Name: "val", Type: tuple.Integer}})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if err := Write(dir, "nums", other); err != nil {
		t.Fatalf("Write nums: %v", err)
	}

	names, err := ListTables(dir)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["users"] || !found["nums"] {
		t.Fatalf("ListTables = %v, want users and nums", names)
	}
}

func TestDescribeListsColumns(t *testing.T) {
	out := Describe("users", usersSchema(t))
	if !strings.Contains(out, "users") || !strings.Contains(out, "id integer NOT NULL") {
		t.Fatalf("Describe output = %q", out)
	}
}
