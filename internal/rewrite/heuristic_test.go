package rewrite

import (
	"strings"
	"testing"
)

var testSchema = map[string][]string{
	"orders":    {"id", "customer_id", "order_date", "total_amount", "status"},
	"customers": {"id", "name", "email", "country", "segment"},
}

func TestRestructureInSubquery(t *testing.T) {
	sql := "SELECT * FROM orders WHERE customer_id IN (SELECT id FROM customers WHERE status = 'active')"
	out, ok := restructureInSubquery(sql)
	if !ok {
		t.Fatal("expected a restructure")
	}
	if strings.Contains(strings.ToUpper(out), "IN (SELECT") {
		t.Errorf("subquery survived: %s", out)
	}
	if !strings.Contains(out, "INNER JOIN customers ON customer_id = customers.id") {
		t.Errorf("missing join clause: %s", out)
	}
	if !strings.Contains(out, "customers.status = 'active'") {
		t.Errorf("subquery predicate not lifted and qualified: %s", out)
	}
	if strings.Contains(strings.ToUpper(out), " WHERE") {
		t.Errorf("dangling WHERE left behind: %s", out)
	}
}

func TestRestructureInSubqueryKeepsOuterConditions(t *testing.T) {
	sql := "SELECT id FROM orders WHERE customer_id IN (SELECT id FROM customers) AND total_amount > 100"
	out, ok := restructureInSubquery(sql)
	if !ok {
		t.Fatal("expected a restructure")
	}
	want := "SELECT id FROM orders INNER JOIN customers ON customer_id = customers.id WHERE total_amount > 100"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRestructureInSubqueryNoMatch(t *testing.T) {
	sql := "SELECT id FROM orders WHERE status = 'pending'"
	if out, ok := restructureInSubquery(sql); ok {
		t.Errorf("unexpected restructure: %s", out)
	}
}

func TestExpandSelectStar(t *testing.T) {
	out, ok := expandSelectStar("SELECT * FROM orders WHERE id = 1", testSchema)
	if !ok {
		t.Fatal("expected expansion")
	}
	want := "SELECT orders.id, orders.customer_id, orders.order_date, orders.total_amount, orders.status FROM orders WHERE id = 1"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestExpandSelectStarUnknownTable(t *testing.T) {
	sql := "SELECT * FROM invoices"
	if out, ok := expandSelectStar(sql, testSchema); ok {
		t.Errorf("expanded unknown table: %s", out)
	}
}

func TestProposeIndexDDL(t *testing.T) {
	ddl := proposeIndexDDL("SELECT id FROM orders WHERE status = 'pending' AND country = 'DE' ORDER BY id")
	want := "CREATE INDEX idx_orders_country_status ON orders(country, status)"
	if ddl != want {
		t.Errorf("got %q, want %q", ddl, want)
	}
}

func TestProposeIndexDDLNoWhere(t *testing.T) {
	if ddl := proposeIndexDDL("SELECT id FROM orders"); ddl != "" {
		t.Errorf("unexpected ddl %q", ddl)
	}
}

func TestProposeIndexDDLSkipsForeignColumns(t *testing.T) {
	ddl := proposeIndexDDL("SELECT id FROM orders INNER JOIN customers ON customer_id = customers.id WHERE customers.segment = 'vip' AND orders.status = 'open'")
	want := "CREATE INDEX idx_orders_status ON orders(status)"
	if ddl != want {
		t.Errorf("got %q, want %q", ddl, want)
	}
}
