package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveExternal(t *testing.T) {
	p, resolved := Resolve("external-lib", "src/app.ts", func(string) bool { return false })
	require.False(t, resolved)
	require.Equal(t, "external-lib", p)
}

func TestResolveRelativeFile(t *testing.T) {
	known := map[string]bool{"src/util.ts": true}
	p, resolved := Resolve("./util", "src/app.ts", func(c string) bool { return known[c] })
	require.True(t, resolved)
	require.Equal(t, "src/util.ts", p)
}

func TestResolveIndexVariant(t *testing.T) {
	known := map[string]bool{"src/lib/index.ts": true}
	p, resolved := Resolve("./lib", "src/app.ts", func(c string) bool { return known[c] })
	require.True(t, resolved)
	require.Equal(t, "src/lib/index.ts", p)
}

func TestResolveMissing(t *testing.T) {
	_, resolved := Resolve("./ghost", "src/app.ts", func(string) bool { return false })
	require.False(t, resolved)
}
