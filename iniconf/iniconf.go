// Package iniconf reads and writes INI-style configuration files:
// [section] headers, key=value pairs, and ';' or '#' comments. Keys outside
// any section belong to the unnamed root section "".
package iniconf

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// File is a parsed configuration. Section and key lookup is
// case-sensitive.
type File struct {
	sections map[string]map[string]string
}

// New creates an empty File.
func New() *File {
	return &File{sections: map[string]map[string]string{}}
}

// Parse reads an INI document from r.
func Parse(r io.Reader) (*File, error) {
	f := New()
	scanner := bufio.NewScanner(r)
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			if line[len(line)-1] != ']' {
				return nil, fmt.Errorf("iniconf: line %d: unterminated section header %q", lineNo, line)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			f.section(section)
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("iniconf: line %d: expected key=value, got %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:eq])
		if key == "" {
			return nil, fmt.Errorf("iniconf: line %d: empty key", lineNo)
		}
		f.section(section)[key] = strings.TrimSpace(line[eq+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) section(name string) map[string]string {
	s, ok := f.sections[name]
	if !ok {
		s = map[string]string{}
		f.sections[name] = s
	}
	return s
}

// Sections returns the section names in sorted order.
func (f *File) Sections() []string {
	names := make([]string, 0, len(f.sections))
	for name := range f.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set stores a value.
func (f *File) Set(section, key, value string) {
	f.section(section)[key] = value
}

// Get returns a value and whether it exists.
func (f *File) Get(section, key string) (string, bool) {
	s, ok := f.sections[section]
	if !ok {
		return "", false
	}
	v, ok := s[key]
	return v, ok
}

// GetInt returns a value parsed as a decimal integer.
func (f *File) GetInt(section, key string) (int64, error) {
	v, ok := f.Get(section, key)
	if !ok {
		return 0, fmt.Errorf("iniconf: missing key %s.%s", section, key)
	}
	return strconv.ParseInt(v, 10, 64)
}

// GetBool returns a value parsed as a boolean ("true"/"false"/"1"/"0").
func (f *File) GetBool(section, key string) (bool, error) {
	v, ok := f.Get(section, key)
	if !ok {
		return false, fmt.Errorf("iniconf: missing key %s.%s", section, key)
	}
	return strconv.ParseBool(v)
}

// WriteTo renders the file with sections and keys in sorted order, so the
// output is deterministic.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	count := func(n int, err error) error {
		written += int64(n)
		return err
	}
	for _, name := range f.Sections() {
		if name != "" {
			if err := count(fmt.Fprintf(bw, "[%s]\n", name)); err != nil {
				return written, err
			}
		}
		keys := make([]string, 0, len(f.sections[name]))
		for k := range f.sections[name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := count(fmt.Fprintf(bw, "%s=%s\n", k, f.sections[name][k])); err != nil {
				return written, err
			}
		}
	}
	return written, bw.Flush()
}
