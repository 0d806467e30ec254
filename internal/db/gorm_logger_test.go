package db

import "testing"

func TestSummarizeSQL(t *testing.T) {
	cases := []struct{ in, op, table string }{
		{"SELECT * FROM `log_entries` WHERE id = ?", "SELECT", "log_entries"},
		{"insert into trace_rows (id) values (?)", "INSERT", "trace_rows"},
		{"UPDATE trace_event_rows SET name = ? WHERE id = ?", "UPDATE", "trace_event_rows"},
		{"DELETE FROM log_entries WHERE time < ?", "DELETE", "log_entries"},
	}
	for _, c := range cases {
		op, table := summarizeSQL(c.in)
		if op != c.op || table != c.table {
			t.Fatalf("summarizeSQL(%q)=%q,%q want %q,%q", c.in, op, table, c.op, c.table)
		}
	}
}

func TestCompactWS(t *testing.T) {
	if got := compactWS("SELECT *\n\tFROM   x"); got != "SELECT * FROM x" {
		t.Fatalf("compactWS got %q", got)
	}
}
