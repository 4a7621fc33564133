package profile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/site-engine/internal/model"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 4 << 20

// Entry is one profile read from a batch source. Err is set when the record
// could not be decoded; the rest of the batch is unaffected.
type Entry struct {
	Source  string
	Profile model.BusinessProfile
	Err     error
}

// LoadFile reads and decodes a single profile document.
func LoadFile(path string) (model.BusinessProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.BusinessProfile{}, eris.Wrapf(err, "profile: read %s", path)
	}
	p, err := Decode(data)
	if err != nil {
		return model.BusinessProfile{}, eris.Wrapf(err, "profile: %s", path)
	}
	return p, nil
}

// LoadAttributesFile reads and decodes a business attributes document.
func LoadAttributesFile(path string) (model.BusinessAttributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.BusinessAttributes{}, eris.Wrapf(err, "profile: read %s", path)
	}
	a, err := DecodeAttributes(data)
	if err != nil {
		return model.BusinessAttributes{}, eris.Wrapf(err, "profile: %s", path)
	}
	return a, nil
}

// LoadJSONL decodes one profile per non-blank line of r.
func LoadJSONL(r io.Reader, name string) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		source := fmt.Sprintf("%s:%d", name, line)
		if id := gjson.GetBytes(raw, "id"); id.Type == gjson.String && id.Str != "" {
			source += "#" + id.Str
		}

		p, err := Decode(raw)
		entries = append(entries, Entry{Source: source, Profile: p, Err: err})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "profile: scan %s", name)
	}
	return entries, nil
}

// LoadDir decodes every *.json file in dir, sorted by name.
func LoadDir(dir string) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, eris.Wrapf(err, "profile: list %s", dir)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		p, err := LoadFile(path)
		entries = append(entries, Entry{Source: path, Profile: p, Err: err})
	}
	return entries, nil
}

// Load reads a batch source: a directory of *.json files, a .jsonl/.ndjson
// file, or a single profile document.
func Load(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: stat %s", path)
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "profile: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return LoadJSONL(f, filepath.Base(path))
	default:
		p, err := LoadFile(path)
		return []Entry{{Source: path, Profile: p, Err: err}}, nil
	}
}
