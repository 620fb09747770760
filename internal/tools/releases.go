package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"phpext/internal/host"
	"phpext/internal/logx"
)

const userAgent = "phpext/1.0"

// ReleaseClient queries a GitHub-compatible release index.
type ReleaseClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger

	// MemoDir, when set, keeps the last successful lookup per repository on
	// disk for releaseCacheTTL.
	MemoDir string
}

// NewReleaseClient builds a client against baseURL (e.g. https://api.github.com).
func NewReleaseClient(baseURL string, logger *log.Logger) *ReleaseClient {
	return &ReleaseClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Logger:  logx.OrDiscard(logger),
	}
}

type githubReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName    string               `json:"tag_name"`
	Draft      bool                 `json:"draft"`
	Prerelease bool                 `json:"prerelease"`
	Assets     []githubReleaseAsset `json:"assets"`
}

// Latest returns the newest release of repo accepted by opts.
func (c *ReleaseClient) Latest(ctx context.Context, repo string, opts ReleaseOptions) (Release, error) {
	if cached, ok := c.cachedLatestRelease(repo, opts); ok {
		c.logger().Printf("release index %s: using memo %s", repo, cached.Version)
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/repos/%s/releases", c.BaseURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Release{}, host.Wrap(host.KindRemote, err, "build release query for %s", repo)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Release{}, host.Wrap(host.KindRemote, err, "query releases for %s", repo)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Release{}, host.Errorf(host.KindRemote, "release query for %s failed: %s", repo, resp.Status)
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return Release{}, host.Wrap(host.KindRemote, err, "decode releases for %s", repo)
	}

	for _, rel := range releases {
		if rel.Draft {
			continue
		}
		if rel.Prerelease && !opts.PreRelease {
			continue
		}
		if opts.RequireAssets && len(rel.Assets) == 0 {
			continue
		}
		release := Release{Version: rel.TagName, Prerelease: rel.Prerelease}
		for _, asset := range rel.Assets {
			release.Assets = append(release.Assets, Asset{Name: asset.Name, DownloadURL: asset.BrowserDownloadURL})
		}
		c.logger().Printf("release index %s: latest %s (%d assets)", repo, release.Version, len(release.Assets))
		c.cacheLatestRelease(repo, opts, release)
		return release, nil
	}

	return Release{}, host.Errorf(host.KindRemote, "no release of %s matches the requested options", repo)
}

// Artifact selects the asset of the latest release whose name matches the
// definition's version-templated pattern.
func (c *ReleaseClient) Artifact(ctx context.Context, def ToolDefinition) (ReleaseArtifact, error) {
	release, err := c.Latest(ctx, def.Repo, ReleaseOptions{RequireAssets: true, PreRelease: false})
	if err != nil {
		return ReleaseArtifact{}, err
	}

	assetName := def.AssetName(release.Version)
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			return ReleaseArtifact{
				Version: release.Version,
				Name:    asset.Name,
				URL:     asset.DownloadURL,
				Archive: def.Archive,
			}, nil
		}
	}
	return ReleaseArtifact{}, host.Errorf(host.KindRemote, "no asset found matching %q", assetName)
}

func (c *ReleaseClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *ReleaseClient) logger() *log.Logger {
	return logx.OrDiscard(c.Logger)
}
