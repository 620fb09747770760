package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	releaseCacheFile = "release_cache.json"
	releaseCacheTTL  = 1 * time.Hour
)

type releaseCacheEntry struct {
	Repo          string    `json:"repo"`
	Release       Release   `json:"release"`
	RequireAssets bool      `json:"require_assets"`
	PreRelease    bool      `json:"pre_release"`
	FetchedAt     time.Time `json:"fetched_at"`
}

type releaseCache struct {
	Entries map[string]releaseCacheEntry `json:"entries"`
}

func (c *ReleaseClient) releaseCachePath() (string, bool) {
	if c.MemoDir == "" {
		return "", false
	}
	return filepath.Join(c.MemoDir, releaseCacheFile), true
}

func (c *ReleaseClient) loadReleaseCache() releaseCache {
	path, ok := c.releaseCachePath()
	if !ok {
		return releaseCache{Entries: map[string]releaseCacheEntry{}}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return releaseCache{Entries: map[string]releaseCacheEntry{}}
	}
	var rc releaseCache
	if err := json.Unmarshal(data, &rc); err != nil {
		return releaseCache{Entries: map[string]releaseCacheEntry{}}
	}
	if rc.Entries == nil {
		rc.Entries = map[string]releaseCacheEntry{}
	}
	return rc
}

func (c *ReleaseClient) saveReleaseCache(rc releaseCache) {
	path, ok := c.releaseCachePath()
	if !ok {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

// cachedLatestRelease returns a memoized release if available and not expired.
func (c *ReleaseClient) cachedLatestRelease(repo string, opts ReleaseOptions) (Release, bool) {
	rc := c.loadReleaseCache()
	entry, ok := rc.Entries[repo]
	if !ok {
		return Release{}, false
	}
	if entry.RequireAssets != opts.RequireAssets || entry.PreRelease != opts.PreRelease {
		return Release{}, false
	}
	if time.Since(entry.FetchedAt) > releaseCacheTTL {
		return Release{}, false
	}
	return entry.Release, true
}

// cacheLatestRelease stores a release in the memo.
func (c *ReleaseClient) cacheLatestRelease(repo string, opts ReleaseOptions, release Release) {
	if _, ok := c.releaseCachePath(); !ok {
		return
	}
	rc := c.loadReleaseCache()
	rc.Entries[repo] = releaseCacheEntry{
		Repo:          repo,
		Release:       release,
		RequireAssets: opts.RequireAssets,
		PreRelease:    opts.PreRelease,
		FetchedAt:     time.Now(),
	}
	c.saveReleaseCache(rc)
}
