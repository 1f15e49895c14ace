package naming

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupSymbol(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":           "",
		"user-name":  "userName",
		"user_name":  "user_name",
		"2fa":        "Twofa",
		"$ref":       "Ref",
		"-1":         "minus_1",
		"a.b.c":      "aBC",
		"with space": "withSpace",
		"_private":   "private",
		"~":          "Tilde",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanupSymbol(in), "input %q", in)
	}
}

func TestUpperLowerFirst(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Users", UpperFirst("users"))
	assert.Equal(t, "Users", UpperFirst("Users"))
	assert.Equal(t, "users", LowerFirst("Users"))
	assert.Equal(t, "", UpperFirst(""))
	assert.Equal(t, "éclair", LowerFirst("Éclair"))
}

func TestUpperFirst_ConcurrentUse(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "PetStore", UpperFirst("petStore"))
			}
		}()
	}
	wg.Wait()
}

func TestJoinCamel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "microsoftGraphDelta", JoinCamel([]string{"microsoft", "graph", "delta"}))
	assert.Equal(t, "", JoinCamel(nil))
}
