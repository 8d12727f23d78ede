package ls3

import (
	"path/filepath"
	"strings"
)

// SubFileName derives a generated sub-file's path from the requested
// output path and the sub-file's root node name. The extension is
// everything after the first separator character of the base name, so
// multi-dot extensions like ".lod1.ls3" are preserved verbatim.
func SubFileName(requested, rootName string) string {
	dir, file := filepath.Split(requested)
	if i := strings.Index(file, "."); i >= 0 {
		return dir + file[:i] + "_" + rootName + file[i:]
	}
	return dir + file + "_" + rootName
}

// CompanionName derives the .lsb path paired with an .ls3 path by
// swapping the final extension.
func CompanionName(ls3Path string) string {
	ext := filepath.Ext(ls3Path)
	return strings.TrimSuffix(ls3Path, ext) + ".lsb"
}

// ResolveLinkPath converts an absolute link target into the path
// written into a file: the bare filename when the target sits next to
// the exporting file, a path relative to the data directory when it is
// inside one, or the absolute path otherwise. Separators are always
// backslashes regardless of host OS.
func ResolveLinkPath(target, exportDir, dataDir string) string {
	target = filepath.Clean(target)

	if exportDir != "" && filepath.Dir(target) == filepath.Clean(exportDir) {
		return Backslashed(filepath.Base(target))
	}
	if dataDir != "" {
		if rel, err := filepath.Rel(filepath.Clean(dataDir), target); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return Backslashed(rel)
		}
	}
	return Backslashed(target)
}

// Backslashed replaces every path separator with a backslash.
func Backslashed(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "/", "\\")
}

// FromBackslashed converts a stored link path to host separators.
func FromBackslashed(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
}

// ResolveStoredPath resolves a link path read from a file against the
// directory of the referencing file and the data directory.
func ResolveStoredPath(stored, baseDir, dataDir string) string {
	p := FromBackslashed(stored)
	if filepath.IsAbs(p) {
		return p
	}
	if !strings.ContainsRune(p, filepath.Separator) {
		return filepath.Join(baseDir, p)
	}
	if dataDir != "" {
		return filepath.Join(dataDir, p)
	}
	return filepath.Join(baseDir, p)
}
