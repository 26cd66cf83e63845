package location

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/schemaforge/schemaforge/internal/common"
)

// Token prefixes forming the only wire format this package understands.
const (
	ClasspathPrefix  = "classpath:"
	FilesystemPrefix = "filesystem:"
)

// Resolved is one concrete contributor of migration resources: either a
// directory path or an archive file whose listing covers the location.
type Resolved struct {
	// Path is the absolute filesystem path of the directory or archive.
	Path string
	// FromArchive is true when Path is an archive standing in for the
	// migration entries packed inside it.
	FromArchive bool
	// Relative is the classpath-relative location inside an archive,
	// in slash form. Empty for directory references.
	Relative string
}

// Resolver expands location tokens into concrete resource references.
// Results are never cached across runs since filesystem state may change
// between builds.
type Resolver struct {
	// ResourceRoots are the directories logically forming the resource
	// classpath of the current project: source resource directories plus
	// their processed output directory.
	ResourceRoots []string
	// RuntimeClasspath are external classpath entries (directories and
	// archives) outside the current project.
	RuntimeClasspath []string
	// BaseDir anchors relative filesystem tokens.
	BaseDir string

	logger *common.Logger
}

// NewResolver creates a location resolver for one project layout.
func NewResolver(resourceRoots, runtimeClasspath []string, baseDir string) *Resolver {
	return &Resolver{
		ResourceRoots:    resourceRoots,
		RuntimeClasspath: runtimeClasspath,
		BaseDir:          baseDir,
		logger:           common.GetLogger().WithComponent("location"),
	}
}

// Resolve expands one location token. Classpath tokens fan out across the
// resource roots and the runtime classpath; filesystem and bare tokens
// resolve to a single path.
func (r *Resolver) Resolve(token string) []Resolved {
	switch {
	case strings.HasPrefix(token, ClasspathPrefix):
		return r.resolveClasspath(strings.TrimPrefix(token, ClasspathPrefix))
	case strings.HasPrefix(token, FilesystemPrefix):
		return []Resolved{r.resolveFilesystem(strings.TrimPrefix(token, FilesystemPrefix))}
	default:
		return []Resolved{r.resolveFilesystem(token)}
	}
}

// ResolveAll expands every token, de-duplicated, insertion order preserved.
func (r *Resolver) ResolveAll(tokens []string) []Resolved {
	var out []Resolved
	seen := make(map[string]bool)
	for _, token := range tokens {
		for _, resolved := range r.Resolve(token) {
			if seen[resolved.Path] {
				continue
			}
			seen[resolved.Path] = true
			out = append(out, resolved)
		}
	}
	return out
}

func (r *Resolver) resolveClasspath(relative string) []Resolved {
	relative = normalizeRelative(relative)

	var out []Resolved
	seen := make(map[string]bool)
	add := func(res Resolved) {
		if !seen[res.Path] {
			seen[res.Path] = true
			out = append(out, res)
		}
	}

	// Project resource roots contribute unconditionally: the path may not
	// exist yet, and a future file appearing there must still invalidate
	// the cache.
	for _, root := range r.ResourceRoots {
		add(Resolved{Path: filepath.Join(root, filepath.FromSlash(relative))})
	}

	// External classpath entries contribute only when they actually cover
	// the location. For archives the archive file itself is the reference;
	// its mtime and hash stand in for the entries it contains.
	for _, entry := range r.RuntimeClasspath {
		info, err := os.Stat(entry)
		if err != nil {
			continue
		}
		if info.IsDir() {
			candidate := filepath.Join(entry, filepath.FromSlash(relative))
			if _, err := os.Stat(candidate); err == nil {
				add(Resolved{Path: candidate})
			}
			continue
		}
		if !IsArchive(entry) {
			continue
		}
		contains, err := archiveContains(entry, relative)
		if err != nil {
			// A corrupt or unreadable archive cannot abort resolution.
			// Treat it as non-matching and let the run continue.
			r.logger.Warn("failed to inspect archive, treating as non-matching",
				"archive", entry, "error", err)
			continue
		}
		if contains {
			add(Resolved{Path: entry, FromArchive: true, Relative: relative})
		}
	}

	return out
}

func (r *Resolver) resolveFilesystem(p string) Resolved {
	if filepath.IsAbs(p) {
		return Resolved{Path: filepath.Clean(p)}
	}
	return Resolved{Path: filepath.Join(r.BaseDir, p)}
}

// normalizeRelative strips leading separators and collapses the path to
// forward slashes. An empty result denotes the classpath root itself.
func normalizeRelative(relative string) string {
	relative = strings.TrimLeft(filepath.ToSlash(relative), "/")
	if relative == "" || relative == "." {
		return ""
	}
	return path.Clean(relative)
}
