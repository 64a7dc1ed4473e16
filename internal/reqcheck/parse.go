package reqcheck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// canonicalRe collapses runs of the PEP 503 separator characters.
var canonicalRe = regexp.MustCompile(`[-_.]+`)

// Canonicalize normalizes a distribution name per PEP 503: lowercase, with
// runs of "-", "_" and "." collapsed to a single "-".
func Canonicalize(name string) string {
	return strings.ToLower(canonicalRe.ReplaceAllString(name, "-"))
}

// Parse reads a requirements listing and returns the canonical top-level
// package names it declares, in file order, deduplicated.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineNo := 0
	continued := ""
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// Backslash continuations join with the following line.
		if trimmed := strings.TrimRight(line, " \t"); strings.HasSuffix(trimmed, `\`) {
			continued += strings.TrimSuffix(trimmed, `\`)
			continue
		}
		line = continued + line
		continued = ""

		name, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// A backslash on the very last line has nothing to join with; flush the
	// accumulated text so the requirement is not silently dropped.
	if continued != "" {
		name, err := parseLine(continued)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if name != "" {
			if _, dup := seen[name]; !dup {
				names = append(names, name)
			}
		}
	}

	return names, nil
}

// ParseFile reads a requirements file from disk.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

// parseLine extracts the canonical package name from one requirement line.
// It returns "" for lines that carry no requirement (comments, blanks,
// installer options like "-r other.txt" or "--index-url").
func parseLine(line string) (string, error) {
	// Strip comments. A '#' starts a comment unless embedded in a URL
	// fragment; requirement names never contain '#', so cutting at the
	// first unescaped '#' preceded by start-of-line or whitespace is safe.
	if i := commentIndex(line); i >= 0 {
		line = line[:i]
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	// Installer options and editable installs declare no comparable name.
	if strings.HasPrefix(line, "-") {
		return "", nil
	}

	// Direct references: "name @ https://...".
	if i := strings.Index(line, "@"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	// The name ends at the first extras bracket, version operator, marker
	// separator or whitespace.
	end := len(line)
	for i, c := range line {
		if strings.ContainsRune("[<>=!~;, \t(", c) {
			end = i
			break
		}
	}
	name := line[:end]
	if name == "" {
		return "", fmt.Errorf("malformed requirement %q", strings.TrimSpace(line))
	}

	return Canonicalize(name), nil
}

// commentIndex returns the index of the comment marker in line, or -1.
func commentIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return i
		}
	}
	return -1
}
