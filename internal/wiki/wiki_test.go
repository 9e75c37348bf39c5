package wiki

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const redirectPage = `<html>
<head>
<meta http-equiv="refresh"
 content="0; url=https://example.com/list?can=2&q=gecode+20140101">
</head>
<body>Redirecting to the latest gecode build (q=gecode+20140101).</body>
</html>
`

// TestReplaceRedirectVersion checks that only the digits after q=<name>+ are
// replaced and the remaining content is byte-identical.
func TestReplaceRedirectVersion(t *testing.T) {
	t.Parallel()

	updated := ReplaceRedirectVersion(redirectPage, "gecode", "20140303")
	require.Equal(t, strings.ReplaceAll(redirectPage, "q=gecode+20140101", "q=gecode+20140303"), updated)

	// Other components' query strings are untouched.
	mixed := `q=gecode+111 q=ampltabl+222`
	require.Equal(t, `q=gecode+333 q=ampltabl+222`, ReplaceRedirectVersion(mixed, "gecode", "333"))

	// No match leaves the content unchanged.
	require.Equal(t, "nothing here", ReplaceRedirectVersion("nothing here", "gecode", "333"))
}

// TestUpdateRedirect rewrites a page on disk in place.
func TestUpdateRedirect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pagePath := filepath.Join(dir, "gecode.html")
	require.NoError(t, os.WriteFile(pagePath, []byte(redirectPage), 0o644))

	u := NewUpdater("https://example.com/docs.wiki/", dir, "update versions")

	require.NoError(t, u.UpdateRedirect(context.Background(), "gecode", "20140303"))

	content, err := os.ReadFile(pagePath)
	require.NoError(t, err)
	require.Contains(t, string(content), "q=gecode+20140303")
	require.NotContains(t, string(content), "q=gecode+20140101")
}

// TestUpdateRedirectMissingPage ensures a missing page propagates an error.
func TestUpdateRedirectMissingPage(t *testing.T) {
	t.Parallel()

	u := NewUpdater("https://example.com/docs.wiki/", t.TempDir(), "update versions")
	require.Error(t, u.UpdateRedirect(context.Background(), "gecode", "20140303"))
}
