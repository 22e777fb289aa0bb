package fingerprint

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "empty input",
			sql:  "",
			want: "",
		},
		{
			name: "numeric literal",
			sql:  "SELECT * FROM orders WHERE id = 42",
			want: "SELECT * FROM orders WHERE id = ?",
		},
		{
			name: "string literal",
			sql:  "SELECT name FROM customers WHERE status = 'active'",
			want: "SELECT name FROM customers WHERE status = ?",
		},
		{
			name: "double quoted literal",
			sql:  `DELETE FROM logs WHERE source = "cron"`,
			want: "DELETE FROM logs WHERE source = ?",
		},
		{
			name: "whitespace collapse",
			sql:  "SELECT  *\n\tFROM   orders",
			want: "SELECT * FROM orders",
		},
		{
			name: "subquery with mixed literals",
			sql:  "SELECT * FROM orders WHERE customer_id IN (SELECT id FROM customers WHERE status = 'active')",
			want: "SELECT * FROM orders WHERE customer_id IN ( SELECT id FROM customers WHERE status = ? )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.sql)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}

// Queries differing only in literal values must share a fingerprint.
func TestNormalize_LiteralStability(t *testing.T) {
	pairs := [][2]string{
		{
			"SELECT * FROM orders WHERE id = 1",
			"SELECT * FROM orders WHERE id = 99999",
		},
		{
			"UPDATE users SET name = 'alice' WHERE id = 3",
			"UPDATE users SET name = 'bob' WHERE id = 77",
		},
		{
			"SELECT * FROM t WHERE a = 'x' AND b = 10",
			"SELECT * FROM t WHERE a = 'something else' AND b = 20",
		},
	}

	for _, p := range pairs {
		a, b := Normalize(p[0]), Normalize(p[1])
		if a != b {
			t.Errorf("fingerprints differ:\n  %q -> %q\n  %q -> %q", p[0], a, p[1], b)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"SELECT * FROM orders WHERE id = 42",
		"SELECT * FROM orders WHERE customer_id IN (SELECT id FROM customers WHERE status = 'active')",
		"INSERT INTO t (a, b) VALUES (1, 'two')",
	}

	for _, sql := range inputs {
		once := Normalize(sql)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q:\n  once:  %q\n  twice: %q", sql, once, twice)
		}
	}
}

func TestNormalize_StructurallyDistinct(t *testing.T) {
	a := Normalize("SELECT * FROM orders WHERE id = 1")
	b := Normalize("SELECT * FROM customers WHERE id = 1")
	if a == b {
		t.Errorf("structurally different queries collide: %q", a)
	}
}

func TestQueryType(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM t", "SELECT"},
		{"  update t set a = 1", "UPDATE"},
		{"delete from t", "DELETE"},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := QueryType(tt.sql); got != tt.want {
			t.Errorf("QueryType(%q) = %q, want %q", tt.sql, got, tt.want)
		}
	}
}
