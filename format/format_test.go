package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShubhamK2003/JSONCover/format"
)

func TestBuiltins(t *testing.T) {
	cases := map[string]struct{ good, bad []string }{
		"date-time":             {[]string{"2024-02-29T10:00:00Z", "2024-01-01t10:00:00.123+09:00", "1998-12-31T23:59:60Z"}, []string{"2023-02-29T10:00:00Z", "2024-01-01 10:00:00Z", "2024-01-01T10:00:00"}},
		"date":                  {[]string{"2024-02-29"}, []string{"2024-2-1", "2023-02-29"}},
		"time":                  {[]string{"10:00:00Z", "23:59:59.5+01:00"}, []string{"10:00", "25:00:00Z"}},
		"duration":              {[]string{"P1D", "PT1H30M", "P2W", "P1Y2M"}, []string{"P", "PT", "1D", "P1H"}},
		"email":                 {[]string{"a@b.co", "first.last@example.com"}, []string{"nope", "A <a@b.co>"}},
		"hostname":              {[]string{"example.com", "a-b.c"}, []string{"-a.com", "a..b", "ex_ample.com"}},
		"ipv4":                  {[]string{"192.168.0.1"}, []string{"256.0.0.1", "1.2.3", "::1"}},
		"ipv6":                  {[]string{"::1", "2001:db8::8a2e:370:7334"}, []string{"1.2.3.4", "2001:::1"}},
		"uri":                   {[]string{"http://example.com/a?b#c", "urn:isbn:123"}, []string{"/relative", "http://ex ample.com"}},
		"uri-reference":         {[]string{"/relative", "#frag"}, []string{"a b"}},
		"uri-template":          {[]string{"http://ex.com/{id}"}, []string{"http://ex.com/{id", "}"}},
		"uuid":                  {[]string{"123e4567-e89b-12d3-a456-426614174000"}, []string{"123e4567e89b12d3a456426614174000", "x"}},
		"json-pointer":          {[]string{"", "/a/~0b"}, []string{"a", "/~2"}},
		"relative-json-pointer": {[]string{"0", "1/a", "2#"}, []string{"-1", "01", "/a"}},
		"regex":                 {[]string{"^a+$"}, []string{"("}},
	}
	for name, tc := range cases {
		c := format.Lookup(name)
		require.NotNil(t, c, name)
		assert.Equal(t, name, c.Name())
		for _, s := range tc.good {
			assert.True(t, c.Check(s), "%s should accept %q", name, s)
		}
		for _, s := range tc.bad {
			assert.False(t, c.Check(s), "%s should reject %q", name, s)
		}
		assert.True(t, c.Check(42), "%s ignores non-strings", name)
	}
}

func TestRegisterAndNames(t *testing.T) {
	format.Register(format.StringFunc{FormatName: "zip-code", Fn: func(s string) bool { return len(s) == 5 }})
	c := format.Lookup("zip-code")
	require.NotNil(t, c)
	assert.True(t, c.Check("12345"))
	assert.False(t, c.Check("1234"))
	assert.Contains(t, format.Names(), "zip-code")
	assert.Contains(t, format.Names(), "date-time")

	assert.True(t, format.Null("anything").Check("x"))
}
