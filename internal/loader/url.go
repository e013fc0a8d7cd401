package loader

import "strings"

// BranchSegment is the path that serves a raw file from a repository's
// default branch. The branch name is fixed.
const BranchSegment = "raw/main"

// RawFileURL joins a repository URL and a repository-relative file path into
// the raw-file URL, leaving exactly one "/" on each side of the branch segment.
func RawFileURL(repoURL, filePath string) string {
	return strings.TrimRight(repoURL, "/") + "/" + BranchSegment + "/" + strings.TrimLeft(filePath, "/")
}
