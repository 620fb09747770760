package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"phpext/internal/logx"
	"phpext/internal/paths"
)

const lockPollInterval = 100 * time.Millisecond

// ArtifactCache keeps downloaded release artifacts under
// <Root>/<tool>/<tool>_<version>.
type ArtifactCache struct {
	Root   string
	HTTP   *http.Client
	Logger *log.Logger
}

// NewArtifactCache returns a cache rooted at root. Downloads carry no
// timeout of their own; callers bound them through the context.
func NewArtifactCache(root string, logger *log.Logger) *ArtifactCache {
	return &ArtifactCache{
		Root:   root,
		HTTP:   &http.Client{},
		Logger: logx.OrDiscard(logger),
	}
}

// Dir returns the directory holding version of tool.
func (c *ArtifactCache) Dir(tool, version string) string {
	return filepath.Join(c.Root, tool, tool+"_"+version)
}

// Ensure makes sure the artifact is extracted in its version directory and
// returns that directory. An existing directory is trusted as complete.
// Other versions of the tool are removed only once the new one has been
// extracted.
func (c *ArtifactCache) Ensure(ctx context.Context, tool string, artifact ReleaseArtifact) (string, error) {
	dir := c.Dir(tool, artifact.Version)
	if ok, _ := paths.DirExists(dir); ok {
		c.logger().Printf("cache %s: hit %s", tool, dir)
		return dir, nil
	}

	unlock, err := c.lock(ctx, tool)
	if err != nil {
		return "", err
	}
	defer unlock()

	// Another process may have finished the same install while we waited.
	if ok, _ := paths.DirExists(dir); ok {
		c.logger().Printf("cache %s: hit %s after lock", tool, dir)
		return dir, nil
	}

	// Download and extract beside the tool directory so the cached versions
	// survive a failed install.
	staging, err := os.MkdirTemp(c.Root, tool+"-staging-")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	c.logger().Printf("cache %s: downloading %s from %s", tool, artifact.Version, artifact.URL)
	archivePath, err := downloadArtifact(ctx, c.httpClient(), staging, artifact.URL)
	if err != nil {
		return "", err
	}

	checksum, err := computeChecksum(archivePath)
	if err != nil {
		return "", err
	}

	extracted := filepath.Join(staging, "extract")
	if err := os.MkdirAll(extracted, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}
	if err := unpack(artifact.Archive, archivePath, extracted, artifact.Name); err != nil {
		return "", fmt.Errorf("extract %s: %w", artifact.Name, err)
	}

	toolDir := filepath.Join(c.Root, tool)
	if err := os.RemoveAll(toolDir); err != nil {
		return "", fmt.Errorf("clear %s: %w", toolDir, err)
	}
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", toolDir, err)
	}
	if err := os.Rename(extracted, dir); err != nil {
		return "", fmt.Errorf("finalize %s: %w", dir, err)
	}

	entry := ManifestEntry{
		Tool:        tool,
		Version:     artifact.Version,
		Path:        dir,
		URL:         artifact.URL,
		Checksum:    checksum,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.recordInstall(entry); err != nil {
		c.logger().Printf("cache %s: manifest update failed: %v", tool, err)
	}
	c.logger().Printf("cache %s: installed %s into %s", tool, artifact.Version, dir)
	return dir, nil
}

// InstalledVersions lists the versions of tool present in the cache, in
// ascending order.
func (c *ArtifactCache) InstalledVersions(tool string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.Root, tool))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list cached %s versions: %w", tool, err)
	}
	prefix := tool + "_"
	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if v := strings.TrimPrefix(entry.Name(), prefix); v != "" {
			versions = append(versions, v)
		}
	}
	SortVersions(versions)
	return versions, nil
}

// HighestVersion returns the greatest cached version of tool.
func (c *ArtifactCache) HighestVersion(tool string) (string, bool) {
	versions, err := c.InstalledVersions(tool)
	if err != nil {
		c.logger().Printf("cache %s: %v", tool, err)
		return "", false
	}
	return HighestVersion(versions)
}

// Statuses reports every known tool together with what the cache holds.
func (c *ArtifactCache) Statuses() []Status {
	manifest, manifestErr := c.LoadManifest()
	statuses := make([]Status, 0, len(toolDefinitions))
	for _, name := range KnownTools() {
		st := Status{Tool: name}
		versions, err := c.InstalledVersions(name)
		if err != nil {
			st.Error = err.Error()
			statuses = append(statuses, st)
			continue
		}
		st.Versions = versions
		if v, ok := HighestVersion(versions); ok {
			st.Version = v
			st.Path = c.Dir(name, v)
		}
		if manifestErr == nil {
			if entry, ok := manifest.Entries[name]; ok && entry.Version == st.Version {
				st.Checksum = entry.Checksum
				st.InstalledAt = entry.InstalledAt
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (c *ArtifactCache) lock(ctx context.Context, tool string) (func(), error) {
	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return nil, fmt.Errorf("prepare cache root: %w", err)
	}
	fileLock := flock.New(filepath.Join(c.Root, tool+".lock"))
	locked, err := fileLock.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire install lock for %s: %w", tool, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire install lock for %s: lock busy", tool)
	}
	return func() { _ = fileLock.Unlock() }, nil
}

func (c *ArtifactCache) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *ArtifactCache) logger() *log.Logger {
	return logx.OrDiscard(c.Logger)
}
