package branch_test

import (
	"testing"

	"taskboard/internal/branch"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fix login redirect", "fix-login-redirect"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"CamelCase & punctuation!!", "camelcase-punctuation"},
		{"v2.1 release / hotfix", "v2-1-release-hotfix"},
		{"แก้บั๊กหน้า login", "login"},
		{"แก้บั๊ก", ""},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, branch.Slugify(tc.in), "input %q", tc.in)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "feature/fix-login-redirect", branch.Name("", "Fix login redirect"))
	assert.Equal(t, "bugfix/safari-crash", branch.Name("bugfix", "Safari crash"))
	assert.Equal(t, "hotfix/", branch.Name("hotfix", "ทดสอบ"))
}

func TestHasNonASCII(t *testing.T) {
	assert.False(t, branch.HasNonASCII("plain ascii title"))
	assert.True(t, branch.HasNonASCII("แก้บั๊ก login"))
	assert.True(t, branch.HasNonASCII("café"))
}
