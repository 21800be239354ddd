package similartext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	require := require.New(t)

	var names []string
	require.Empty(Find(names, ""))

	names = []string{"foo", "bar", "ake", "aka"}
	require.Equal(", maybe you mean bar?", Find(names, "baz"))
	require.Empty(Find(names, ""))
	require.Equal(", maybe you mean foo?", Find(names, "foo"))
	require.Empty(Find(names, "willBeTooDifferent"))
	require.Equal(", maybe you mean aka or ake?", Find(names, "aki"))
}

func TestClosest(t *testing.T) {
	require := require.New(t)

	names := []string{"tableB", "TABLEB", "tableA", "other"}
	require.Equal([]string{"tableA"}, Closest(names, "TableA"))
	require.Equal([]string{"tableA", "tableB"}, Closest(names, "tableC"))
	require.Nil(Closest(names, ""))
	require.Empty(Closest(names, "completely different"))
}
