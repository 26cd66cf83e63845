package migrate

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/schemaforge/schemaforge/internal/location"
)

// Naming describes how migration script names are parsed. All fields must
// be non-blank; callers resolve them through the settings precedence chain
// before discovery runs.
type Naming struct {
	VersionedPrefix  string
	RepeatablePrefix string
	Separator        string
	Suffixes         []string
}

// Migration is one discovered migration script. Repeatable migrations have
// an empty version and sort after every versioned one.
type Migration struct {
	Version     string
	Description string
	Script      string
	// Source locates the script for reading: a filesystem path, or an
	// archive path plus entry for archive-packed scripts.
	Source       string
	ArchiveEntry string

	read func() ([]byte, error)
}

// Repeatable reports whether the migration reruns whenever its content changes.
func (m *Migration) Repeatable() bool {
	return m.Version == ""
}

// Read returns the script content.
func (m *Migration) Read() ([]byte, error) {
	return m.read()
}

// Discover walks resolved locations and returns every migration script
// matching the naming scheme, versioned ones first in version order, then
// repeatables by description. A location that does not exist contributes
// nothing; duplicate versions across locations are an error.
func Discover(locations []location.Resolved, naming Naming) ([]Migration, error) {
	versioned, repeatable, err := compilePatterns(naming)
	if err != nil {
		return nil, err
	}

	var out []Migration
	byVersion := make(map[string]string)
	for _, loc := range locations {
		var found []Migration
		if loc.FromArchive {
			found, err = discoverArchive(loc, versioned, repeatable)
		} else {
			found, err = discoverDirectory(loc.Path, versioned, repeatable)
		}
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			if m.Version != "" {
				if prev, dup := byVersion[m.Version]; dup {
					return nil, fmt.Errorf("duplicate migration version %s: %s and %s", m.Version, prev, m.Source)
				}
				byVersion[m.Version] = m.Source
			}
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Repeatable() != b.Repeatable() {
			return !a.Repeatable()
		}
		if a.Repeatable() {
			return a.Description < b.Description
		}
		return compareVersions(a.Version, b.Version) < 0
	})
	return out, nil
}

// FilterIgnored drops migrations whose script name matches any of the glob
// patterns, so declared-but-retired scripts never reach the migrator.
func FilterIgnored(migrations []Migration, patterns []string) ([]Migration, error) {
	if len(patterns) == 0 {
		return migrations, nil
	}
	out := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		ignored := false
		for _, pattern := range patterns {
			match, err := path.Match(pattern, m.Script)
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
			if match {
				ignored = true
				break
			}
		}
		if !ignored {
			out = append(out, m)
		}
	}
	return out, nil
}

func discoverDirectory(dir string, versioned, repeatable *regexp.Regexp) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list migration directory %s: %w", dir, err)
	}

	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		m, ok := parseName(name, versioned, repeatable)
		if !ok {
			continue
		}
		scriptPath := filepath.Join(dir, name)
		m.Source = scriptPath
		m.read = func() ([]byte, error) {
			// #nosec G304 -- path derives from a resolved migration location
			return os.ReadFile(scriptPath)
		}
		out = append(out, m)
	}
	return out, nil
}

func discoverArchive(loc location.Resolved, versioned, repeatable *regexp.Regexp) ([]Migration, error) {
	reader, err := zip.OpenReader(loc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", loc.Path, err)
	}
	defer func() { _ = reader.Close() }()

	prefix := loc.Relative
	if prefix != "" {
		prefix += "/"
	}

	var out []Migration
	for _, entry := range reader.File {
		name := strings.TrimPrefix(entry.Name, "/")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		base := strings.TrimPrefix(name, prefix)
		if base == "" || strings.Contains(base, "/") {
			continue
		}
		m, ok := parseName(base, versioned, repeatable)
		if !ok {
			continue
		}
		m.Source = loc.Path
		m.ArchiveEntry = entry.Name
		archivePath, entryName := loc.Path, entry.Name
		m.read = func() ([]byte, error) {
			return readArchiveEntry(archivePath, entryName)
		}
		out = append(out, m)
	}
	return out, nil
}

func readArchiveEntry(archivePath, entryName string) ([]byte, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		if entry.Name != entryName {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", entryName, err)
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive entry %s not found in %s", entryName, archivePath)
}

func parseName(name string, versioned, repeatable *regexp.Regexp) (Migration, bool) {
	if m := versioned.FindStringSubmatch(name); m != nil {
		return Migration{
			Version:     strings.ReplaceAll(m[1], "_", "."),
			Description: strings.ReplaceAll(m[2], "_", " "),
			Script:      name,
		}, true
	}
	if m := repeatable.FindStringSubmatch(name); m != nil {
		return Migration{
			Description: strings.ReplaceAll(m[1], "_", " "),
			Script:      name,
		}, true
	}
	return Migration{}, false
}

func compilePatterns(naming Naming) (versioned, repeatable *regexp.Regexp, err error) {
	if naming.VersionedPrefix == "" || naming.RepeatablePrefix == "" || naming.Separator == "" || len(naming.Suffixes) == 0 {
		return nil, nil, fmt.Errorf("incomplete migration naming scheme: %+v", naming)
	}

	suffixes := make([]string, len(naming.Suffixes))
	for i, s := range naming.Suffixes {
		suffixes[i] = regexp.QuoteMeta(s)
	}
	suffixAlt := "(?:" + strings.Join(suffixes, "|") + ")"
	sep := regexp.QuoteMeta(naming.Separator)

	versioned, err = regexp.Compile(
		"^" + regexp.QuoteMeta(naming.VersionedPrefix) + `(\d+(?:[._]\d+)*)` + sep + "(.+?)" + suffixAlt + "$")
	if err != nil {
		return nil, nil, err
	}
	repeatable, err = regexp.Compile(
		"^" + regexp.QuoteMeta(naming.RepeatablePrefix) + sep + "(.+?)" + suffixAlt + "$")
	if err != nil {
		return nil, nil, err
	}
	return versioned, repeatable, nil
}

// compareVersions orders dotted numeric versions: 1.2 < 1.10, 2 < 10.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
