package node

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome resolves "~" and "~/..." against the current user's home
// directory. Other users' homes ("~bob/...") are not looked up.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, rest)
}
