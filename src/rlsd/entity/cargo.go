package entity

import "strings"

// LibraryKind classifies the library target of a package, if any.
type LibraryKind int

const (
	// LibraryKindNone indicates a package without a library target.
	LibraryKindNone LibraryKind = iota
	// LibraryKindLibrary indicates a regular library (lib, rlib, dylib, cdylib, staticlib).
	LibraryKindLibrary
	// LibraryKindProcMacro indicates a procedural macro crate.
	LibraryKindProcMacro
)

// String implements fmt.Stringer.
func (k LibraryKind) String() string {
	switch k {
	case LibraryKindLibrary:
		return "library"
	case LibraryKindProcMacro:
		return "proc-macro"
	default:
		return "none"
	}
}

// Target kinds reported by cargo.
const (
	TargetKindBin       = "bin"
	TargetKindTest      = "test"
	TargetKindExample   = "example"
	TargetKindBench     = "bench"
	TargetKindProcMacro = "proc-macro"
)

var _libraryTargetKinds = map[string]struct{}{
	"lib":       {},
	"rlib":      {},
	"dylib":     {},
	"cdylib":    {},
	"staticlib": {},
}

// Target is a single compilation target of a package.
type Target struct {
	Name    string   `json:"name" zap:"name"`
	Kinds   []string `json:"kinds" zap:"kinds"`
	SrcPath string   `json:"srcPath" zap:"srcPath"`
}

// HasKind reports whether the target declares the given kind.
func (t Target) HasKind(kind string) bool {
	for _, k := range t.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// LibraryKind returns the library kind of this target.
func (t Target) LibraryKind() LibraryKind {
	for _, k := range t.Kinds {
		if k == TargetKindProcMacro {
			return LibraryKindProcMacro
		}
		if _, ok := _libraryTargetKinds[k]; ok {
			return LibraryKindLibrary
		}
	}
	return LibraryKindNone
}

// Package is a single package of a cargo workspace.
type Package struct {
	Name         string      `json:"name" zap:"name"`
	ID           string      `json:"id" zap:"id"`
	Version      string      `json:"version" zap:"version"`
	ManifestPath string      `json:"manifestPath" zap:"manifestPath"`
	ManifestDir  string      `json:"manifestDir" zap:"manifestDir"`
	Targets      []Target    `json:"targets" zap:"-"`
	LibraryKind  LibraryKind `json:"libraryKind" zap:"libraryKind"`
	IsMember     bool        `json:"isMember" zap:"isMember"`
}

// TargetsOfKind returns the targets that declare the given kind, in declaration order.
func (p Package) TargetsOfKind(kind string) []Target {
	var result []Target
	for _, t := range p.Targets {
		if t.HasKind(kind) {
			result = append(result, t)
		}
	}
	return result
}

// WorkspaceMetadata is the resolved view of a cargo workspace.
// Packages lists members first, each group ordered by name.
type WorkspaceMetadata struct {
	RootPath       string    `json:"rootPath,omitempty" zap:"rootPath"`
	BuildOutputDir string    `json:"buildOutputDir" zap:"buildOutputDir"`
	Members        []Package `json:"members" zap:"-"`
	Packages       []Package `json:"packages" zap:"-"`
}

// Package returns the package with the given name.
func (m *WorkspaceMetadata) Package(name string) (Package, bool) {
	for _, p := range m.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// TaskGroup groups tasks in the editor's task picker.
type TaskGroup string

const (
	// TaskGroupBuild contains check and run tasks.
	TaskGroupBuild TaskGroup = "build"
	// TaskGroupTest contains test tasks.
	TaskGroupTest TaskGroup = "test"
)

// Task is a cargo invocation offered to the editor.
type Task struct {
	Label   string    `json:"label"`
	Member  string    `json:"member"`
	Command []string  `json:"command"`
	Cwd     string    `json:"cwd"`
	Group   TaskGroup `json:"group"`
}

// Identity returns the deduplication key of the task: its member and command tokens.
func (t Task) Identity() string {
	return t.Member + "\x00" + strings.Join(t.Command, "\x00")
}
