package publisher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amplopt/release-publisher/internal/manifest"
)

// TestExpandExtras resolves version placeholders against the manifest and
// leaves literal file names alone.
func TestExpandExtras(t *testing.T) {
	t.Parallel()

	declared := map[string][]string{
		"jacop": {"ampljacop.jar", "JaCoP-{version}.jar"},
	}
	versions := manifest.Versions{"jacop": "4.0.0-20140107"}

	extras, err := expandExtras(declared, versions)
	require.NoError(t, err)
	require.Equal(t, map[string][]string{
		"jacop": {"ampljacop.jar", "JaCoP-4.0.0.jar"},
	}, extras)
}

// TestExpandExtrasMissingVersion ensures a placeholder without a manifest
// entry fails loudly: the owning component's version is mandatory.
func TestExpandExtrasMissingVersion(t *testing.T) {
	t.Parallel()

	declared := map[string][]string{
		"jacop": {"JaCoP-{version}.jar"},
	}

	_, err := expandExtras(declared, manifest.Versions{})
	require.ErrorIs(t, err, manifest.ErrVersionNotFound)
}

// TestExpandExtrasNoPlaceholder needs no version lookup at all.
func TestExpandExtrasNoPlaceholder(t *testing.T) {
	t.Parallel()

	declared := map[string][]string{
		"gecode": {"gecode-notes.txt"},
	}

	extras, err := expandExtras(declared, manifest.Versions{})
	require.NoError(t, err)
	require.Equal(t, declared, extras)
}
