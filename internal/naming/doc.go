// Package naming allocates per-job destination directories under the
// output root. Names derive from the archive's base name; collisions are
// resolved deterministically with "_N" suffixes so that no two jobs of a
// batch ever share a directory.
package naming
