package object

import "os"

// File wraps an OS file handle. Closed tracks whether $close has already
// run so a second call (or the finalizer the heap registers on free) is a
// no-op rather than a double-close panic (§4.3, §7).
type File struct {
	Header
	Handle *os.File
	Path   string
	Closed bool
}

func NewFile(handle *os.File, path string) *File {
	return &File{Handle: handle, Path: path}
}

func (f *File) ObjKind() ObjKind { return ObjFile }

func (f *File) Close() error {
	if f.Closed {
		return nil
	}
	f.Closed = true
	return f.Handle.Close()
}
