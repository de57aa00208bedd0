package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatternsSkipsBlankAndComments(t *testing.T) {
	m := ParsePatterns([]string{"", "  ", "# comment", "  # indented comment", "/"})
	assert.Empty(t, m.patterns)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		want     bool
	}{
		{"literal name", []string{"Mock.sol"}, "Mock.sol", false, true},
		{"literal nested", []string{"Mock.sol"}, "test/Mock.sol", false, true},
		{"literal differs", []string{"Mock.sol"}, "Mocks.sol", false, false},
		{"glob", []string{"*.t.sol"}, "test/Token.t.sol", false, true},
		{"glob differs", []string{"*.t.sol"}, "src/Token.sol", false, false},
		{"dir pattern on dir", []string{"out/"}, "out", true, true},
		{"dir pattern on file", []string{"out/"}, "out", false, false},
		{"dir pattern nested", []string{"cache/"}, "lib/cache", true, true},
		{"negation", []string{"*.sol", "!Keep.sol"}, "Keep.sol", false, false},
		{"negation keeps others", []string{"*.sol", "!Keep.sol"}, "Drop.sol", false, true},
		{"anchored at root", []string{"/script"}, "script", true, true},
		{"anchored not nested", []string{"/script"}, "src/script", true, false},
		{"path pattern", []string{"lib/forge-std"}, "lib/forge-std", true, true},
		{"double star", []string{"**/mocks"}, "test/unit/mocks", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParsePatterns(tt.patterns)
			assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestExcludesChecksParents(t *testing.T) {
	m := ParsePatterns([]string{"node_modules/"})
	assert.True(t, m.Excludes("node_modules/pkg/A.sol"))
	assert.False(t, m.Excludes("src/A.sol"))

	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Excludes("anything.sol"))
}

func TestLoadRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("# generated\nbuild/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sollsignore"), []byte("*.t.sol\n"), 0o644))

	m, err := LoadRoot(dir)
	require.NoError(t, err)
	assert.True(t, m.Excludes("build/A.sol"))
	assert.True(t, m.Excludes("test/A.t.sol"))
	assert.True(t, m.Excludes("node_modules/x/B.sol"))
	assert.False(t, m.Excludes("src/A.sol"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
