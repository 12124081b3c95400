package access

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in  string
		out Role
	}{
		{"", -1},
		{"foo", -1},
		{"owner", Owner},
		{Owner.String(), Owner},
		{Admin.String(), Admin},
		{Member.String(), Member},
		{NoAccess.String(), NoAccess},
	}

	for _, c := range cases {
		out := ParseRole(c.in)
		if out != c.out {
			t.Errorf("ParseRole(%q) => %d, want %d", c.in, out, c.out)
		}
	}
}

func TestRoleOrdering(t *testing.T) {
	is := is.New(t)
	is.True(Owner.AtLeast(Admin))
	is.True(Admin.AtLeast(Admin))
	is.True(!Member.AtLeast(Admin))
	is.True(!NoAccess.Valid())
	is.True(Member.Valid())
}

func TestRoleJSON(t *testing.T) {
	is := is.New(t)
	var in struct {
		Role Role `json:"role"`
	}
	is.NoErr(json.Unmarshal([]byte(`{"role":"ADMIN"}`), &in))
	is.Equal(in.Role, Admin)
	is.True(json.Unmarshal([]byte(`{"role":"ROOT"}`), &in) != nil)

	out, err := json.Marshal(in)
	is.NoErr(err)
	is.Equal(string(out), `{"role":"ADMIN"}`)
}
