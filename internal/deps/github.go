package deps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const githubAPIBase = "https://api.github.com"

const userAgent = "archivebot/1.0 (https://github.com/azhengyongqin/archivebot)"

// Release GitHub release 信息
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset release 附件
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// GitHubClient GitHub release 查询客户端
type GitHubClient struct {
	baseURL string
	client  *http.Client
}

// NewGitHubClient 创建 GitHub 客户端（client 为 nil 时使用默认）
func NewGitHubClient(client *http.Client) *GitHubClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &GitHubClient{baseURL: githubAPIBase, client: client}
}

// LatestRelease 查询某仓库最新 release
func (g *GitHubClient) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", g.baseURL, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release for %s: unexpected status %d", repo, resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release response: %w", err)
	}
	return &release, nil
}

// AssetURL 返回名称满足谓词的第一个附件下载地址
func (r *Release) AssetURL(match func(name string) bool) (string, bool) {
	for _, a := range r.Assets {
		if match(a.Name) {
			return a.BrowserDownloadURL, true
		}
	}
	return "", false
}
