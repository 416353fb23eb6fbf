package env

import (
	"fmt"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func TestHomeDir(t *testing.T) {
	t.Run("from HOME", func(t *testing.T) {
		home, err := HomeDir(NewMapEnvFromEnvList([]string{"HOME=/home/operator"}))
		assert.NoError(t, err)
		assert.Equal(t, "/home/operator", home)
	})

	t.Run("user database fallback", func(t *testing.T) {
		u, err := user.Current()
		if err != nil || u.HomeDir == "" {
			t.Skip("no user database entry for the current user")
		}

		home, err := HomeDir(NewMapEnv())
		assert.NoError(t, err)
		assert.Equal(t, u.HomeDir, home)
	})
}

func TestOSEnv(t *testing.T) {
	t.Setenv("JOBSH_ENV_TEST", "value")

	e := NewOSEnv()
	assert.Equal(t, "value", e.Getenv("JOBSH_ENV_TEST"))

	assert.NoError(t, e.Unsetenv("JOBSH_ENV_TEST"))
	_, ok := e.LookupEnv("JOBSH_ENV_TEST")
	assert.False(t, ok)
}
