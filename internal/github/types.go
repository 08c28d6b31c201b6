// Package github provides a small GitHub REST v3 client scoped to the
// operations the research tools need: repo metadata, trees, file
// contents, code search, and license lookup.
package github

// Repo is repository metadata from /repos/{owner}/{repo}.
type Repo struct {
	FullName      string       `json:"full_name"`
	Description   string       `json:"description"`
	DefaultBranch string       `json:"default_branch"`
	Language      string       `json:"language"`
	Stars         int          `json:"stargazers_count"`
	HTMLURL       string       `json:"html_url"`
	License       *LicenseInfo `json:"license"`
}

// Branch is branch metadata from /repos/{owner}/{repo}/branches/{branch}.
type Branch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// TreeEntry is one entry of a git tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int    `json:"size,omitempty"`
	SHA  string `json:"sha"`
}

// treeResponse is the envelope of /git/trees/{ref}.
type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// contentResponse is the envelope of /repos/{owner}/{repo}/contents/{path}.
type contentResponse struct {
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
	Size        int    `json:"size"`
}

// SearchResult is one code search hit.
type SearchResult struct {
	Path       string  `json:"path"`
	HTMLURL    string  `json:"html_url"`
	Score      float64 `json:"score"`
	Repository struct {
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
		HTMLURL     string `json:"html_url"`
	} `json:"repository"`
}

// SearchResults is the envelope of /search/code.
type SearchResults struct {
	TotalCount        int            `json:"total_count"`
	IncompleteResults bool           `json:"incomplete_results"`
	Items             []SearchResult `json:"items"`
}

// LicenseInfo identifies a license by SPDX key.
type LicenseInfo struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// RepoLicense is the envelope of /repos/{owner}/{repo}/license.
type RepoLicense struct {
	License *LicenseInfo `json:"license"`
	HTMLURL string       `json:"html_url"`
	Path    string       `json:"path"`
}

// User is the authenticated user from /user.
type User struct {
	Login string `json:"login"`
}
