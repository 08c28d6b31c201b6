// Package extract pulls a single named function out of a file on
// GitHub, with surrounding context and line numbers.
package extract

import "regexp"

// blobURLPattern matches the canonical web URL form:
// github.com/owner/repo/blob/branch/path/to/file.py
var blobURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/(?:blob|tree)/[^/]+/(.+)`)

// rawURLPattern accepts the looser owner/repo/path form.
var rawURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/([^?#]+)`)

// ParseFileURL extracts owner, repo, and file path from a GitHub file
// URL. ok is false when the URL is not recognizable.
func ParseFileURL(url string) (owner, repo, path string, ok bool) {
	if m := blobURLPattern.FindStringSubmatch(url); m != nil {
		return m[1], m[2], m[3], true
	}
	if m := rawURLPattern.FindStringSubmatch(url); m != nil {
		return m[1], m[2], m[3], true
	}
	return "", "", "", false
}
