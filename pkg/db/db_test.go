package db

import (
	"context"
	"strings"
	"testing"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.TODO(), "invalid", "")
	if err == nil {
		t.Fatal("Open(invalid) => nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("Open(invalid) => %v, want error containing 'unknown driver'", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"portal.db", "portal.db?_pragma=foreign_keys(1)"},
		{"portal.db?_pragma=busy_timeout(5000)", "portal.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"portal.db?_pragma=foreign_keys(0)", "portal.db?_pragma=foreign_keys(0)"},
	}
	for _, c := range cases {
		if got := sqliteDSN(c.in); got != c.want {
			t.Errorf("sqliteDSN(%q) => %q, want %q", c.in, got, c.want)
		}
	}
}
