package tools

// ArchiveKind describes how a downloaded release asset is unpacked.
type ArchiveKind string

const (
	ArchiveUncompressed ArchiveKind = "uncompressed"
	ArchiveZip          ArchiveKind = "zip"
	ArchiveTarGz        ArchiveKind = "tar.gz"
	ArchiveGzip         ArchiveKind = "gzip"
)

// Asset is a file attached to a published release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// Release is one entry of a repository's release index.
type Release struct {
	Version    string  `json:"version"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// ReleaseOptions filters the release index.
type ReleaseOptions struct {
	RequireAssets bool
	PreRelease    bool
}

// ReleaseArtifact is the download selected from the latest release.
type ReleaseArtifact struct {
	Version string      `json:"version"`
	Name    string      `json:"name"`
	URL     string      `json:"url"`
	Archive ArchiveKind `json:"archive"`
}

// ManifestEntry records an artifact extracted into the cache.
type ManifestEntry struct {
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	Path        string `json:"path"`
	URL         string `json:"url,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
	InstalledAt string `json:"installed_at,omitempty"`
}

// Manifest wraps persisted entries for quick lookup.
type Manifest struct {
	Entries map[string]ManifestEntry `json:"entries"`
}

// Status summarises what the cache holds for one tool.
type Status struct {
	Tool        string   `json:"tool"`
	Version     string   `json:"version,omitempty"`
	Path        string   `json:"path,omitempty"`
	Versions    []string `json:"versions,omitempty"`
	InstalledAt string   `json:"installed_at,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
	Error       string   `json:"error,omitempty"`
}
