// Package exclude inspects the exclusion list that rsync reads via
// --exclude-from.
//
// The backup itself never parses the file; rsync does. This package exists
// for the doctor command, which reports whether the file is present, how many
// patterns it contributes and whether a given path would be skipped.
package exclude

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// List is a compiled exclusion file.
type List struct {
	// Path is the file the list was loaded from.
	Path string

	// Patterns counts the lines that contribute a pattern
	// (blank lines and comments excluded).
	Patterns int

	matcher *ignore.GitIgnore
}

// Load reads and compiles the exclusion file at path. A missing file is
// returned as an error wrapping fs.ErrNotExist, since rsync fails the whole
// pass when --exclude-from cannot be opened.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusion file: %w", err)
	}
	lines := splitLines(data)

	return &List{
		Path:     path,
		Patterns: countPatterns(lines),
		matcher:  ignore.CompileIgnoreLines(lines...),
	}, nil
}

// Matches reports whether the source-relative path rel would be excluded.
// Directories are matched with a trailing slash so directory-only patterns
// such as "node_modules/" apply.
func (l *List) Matches(rel string, isDir bool) bool {
	if l == nil || l.matcher == nil {
		return false
	}
	p := filepath.ToSlash(rel)
	if isDir && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return l.matcher.MatchesPath(p)
}

func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

func countPatterns(lines []string) int {
	n := 0
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		n++
	}
	return n
}
