// Package loader implements Pyro's module system (§4.9): resolving a
// dotted import path against a list of import roots, caching loaded
// modules so a path is only ever compiled once, and registering each
// module's (still-empty) object before compiling its body so that two
// modules can import each other without deadlocking (§3 invariant
// "Modules are created by the loader and inserted into their parent's
// submodule map before their code executes").
//
// kristofer/smog has no module system of its own (its `cmd/smog` runs a
// single file), so this package is grounded directly on spec.md §4.9 and
// original_source's src/vm/import.c path-resolution order, expressed in
// the idiom internal/vm already established: a small struct implementing
// the vm.Importer interface, with compile/execute delegated back into
// internal/compiler and internal/vm so the loader never duplicates
// bytecode-execution logic.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pyro-lang/pyro/internal/compiler"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
	"github.com/pyro-lang/pyro/internal/vm"
)

// NativeModule builds the namespace for an embedded standard-library
// module on first import (§6 "Embedded modules... compiled on first
// import"). The concrete math/path/prng/errors/log modules are external
// collaborators per spec.md §1 and are not implemented here; RegisterNative is
// the extension point a driver wires them through.
type NativeModule func(alloc *heap.Allocator) *object.Module

// Loader resolves `a::b::c`-style import paths against a list of import
// roots and caches the resulting module tree on a single VM instance
// (§4.9). One Loader is owned by one VM; its root module IS that VM's
// main_module, so submodules nest under the same object.Module.Submodules
// tree the VM already walks for §4.2 GC roots.
type Loader struct {
	Roots []string

	alloc *heap.Allocator
	root  *object.Module

	natives map[string]NativeModule
}

// New constructs a Loader that resolves against roots (in order) and
// registers newly loaded submodules under root, the VM's main_module.
func New(alloc *heap.Allocator, root *object.Module, roots []string) *Loader {
	return &Loader{
		Roots:   append([]string(nil), roots...),
		alloc:   alloc,
		root:    root,
		natives: make(map[string]NativeModule),
	}
}

// RegisterNative installs a built-in module loader for name, bypassing
// filesystem lookup entirely (§4.9 "Known standard-library module names
// bypass filesystem lookup and invoke a built-in loader for that module").
// name is matched against the first path segment only, matching how
// spec.md's out-of-scope library modules (`math`, `path`, `prng`,
// `errors`, `log`) are each a single top-level name.
func (l *Loader) RegisterNative(name string, fn NativeModule) {
	l.natives[name] = fn
}

var _ vm.Importer = (*Loader)(nil)

// Load implements vm.Importer. segments is the dotted path split on `::`,
// e.g. ["a", "b", "c"] for `import a::b::c`. It walks the submodule tree
// one segment at a time, reusing an already-loaded (or in-progress, for
// cycles) module whenever one is already registered, and otherwise
// resolving + compiling + executing a fresh one before continuing to the
// next segment.
func (l *Loader) Load(vmInst *vm.VM, segments []string) (*object.Module, *panicx.Panic) {
	if len(segments) == 0 {
		return nil, panicx.New(panicx.ModuleNotFound, "empty import path")
	}

	parent := l.root
	parentFSPath := "" // filesystem path accumulated alongside the module path
	var cur *object.Module

	for i, seg := range segments {
		if existing, ok := parent.Submodule(seg); ok {
			cur = existing
			parentFSPath = filepath.Join(parentFSPath, seg)
			parent = cur
			continue
		}

		if i == 0 {
			if native, ok := l.natives[seg]; ok {
				mod := native(l.alloc)
				parent.Submodules[seg] = mod
				cur = mod
				parent = cur
				continue
			}
		}

		fullPath := strings.Join(segments[:i+1], "::")
		mod := object.NewModule(fullPath)

		// Register before compiling: a cyclic import of fullPath that
		// happens during compilation below sees this same (still empty)
		// module object (§3 invariant, §4.9 "before their code executes").
		parent.Submodules[seg] = mod

		src, sourceID, fsPath, found := l.resolveSource(parentFSPath, seg)
		if !found {
			delete(parent.Submodules, seg) // resolution failed: don't leave a phantom cycle anchor
			return nil, panicx.New(panicx.ModuleNotFound, "module %q not found in any import root", fullPath)
		}
		parentFSPath = fsPath

		if src != "" {
			fn, p := compiler.Compile(src, sourceID, l.alloc)
			if p != nil {
				return nil, p
			}
			if p := vmInst.RunModule(fn, mod); p != nil {
				return nil, p
			}
		}
		// A directory-only resolution (case 3 of §4.9) has no code to run;
		// mod stays an empty namespace, which is a legal import target for
		// further `::`-qualified submodule imports underneath it.

		cur = mod
		parent = cur
	}

	return cur, nil
}

// resolveSource implements the three-way fallback of §4.9: a file, a
// directory with a self.pyro entry file, or a bare directory with nothing
// to execute. dirSoFar is the accumulated filesystem path of the already
// resolved prefix, empty for the first segment.
func (l *Loader) resolveSource(dirSoFar, seg string) (src, sourceID, newDir string, found bool) {
	for _, root := range l.Roots {
		base := root
		if dirSoFar != "" {
			base = filepath.Join(root, dirSoFar)
		}

		filePath := filepath.Join(base, seg+".pyro")
		if data, err := os.ReadFile(filePath); err == nil {
			return string(data), filePath, filepath.Join(dirSoFar, seg), true
		}

		dirPath := filepath.Join(base, seg)
		selfPath := filepath.Join(dirPath, "self.pyro")
		if data, err := os.ReadFile(selfPath); err == nil {
			return string(data), selfPath, filepath.Join(dirSoFar, seg), true
		}

		if info, err := os.Stat(dirPath); err == nil && info.IsDir() {
			return "", "", filepath.Join(dirSoFar, seg), true
		}
	}
	return "", "", "", false
}
