package model

// Path represents a file system path.
type Path string

// SourceHandle is an opaque reference to built snippet code, such as a URL or
// a relative file name. Hoisted imports use it as their specifier.
type SourceHandle string

// File represents a snippet or module source file.
type File struct {
	Path Path
	Hash string
}

// Document is a set of snippets and modules loaded together.
type Document struct {
	// Modules maps a module id to its source code.
	Modules map[string]string
	// Snippets maps a snippet id to its source code.
	Snippets map[string]string
	// Files records where each snippet was read from, when it came from disk.
	Files map[string]File
}
