package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/azhengyongqin/archivebot/internal/model"
)

// ErrConflict 目标视频已被注册（归档端返回冲突）
var ErrConflict = errors.New("video already registered")

// Ragtag 归档站点客户端。
// 幂等检查走搜索接口（命中数 > 0 即已归档），注册走 archive 接口。
type Ragtag struct {
	baseURL *url.URL
	client  *http.Client
}

// NewRagtag 创建归档站点客户端（client 为 nil 时使用默认）
func NewRagtag(base string, client *http.Client) (*Ragtag, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse archive base url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ragtag{baseURL: u, client: client}, nil
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
	} `json:"hits"`
}

// IsArchived 查询某视频是否已归档
func (r *Ragtag) IsArchived(ctx context.Context, id string) (bool, error) {
	u, err := r.baseURL.Parse("api/v1/search?v=" + url.QueryEscape(id))
	if err != nil {
		return false, fmt.Errorf("build search url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build search request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode search response: %w", err)
	}
	return result.Hits.Total.Value > 0, nil
}

// Archive 注册视频及其元数据
func (r *Ragtag) Archive(ctx context.Context, id string, metadata *model.Metadata) error {
	u, err := r.baseURL.Parse("api/v1/archive/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("build archive url: %w", err)
	}

	body, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build archive request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send archive request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode >= 300:
		return fmt.Errorf("archive request: unexpected status %d", resp.StatusCode)
	}
	return nil
}
