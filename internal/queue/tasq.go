package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/model"
)

// Tasq tasq HTTP 队列客户端。URL 需要包含 list ID。
// 协议：PUT 入队（body 为 payload），GET 列表，POST 消费；
// 响应统一包一层 {ok, payload, message} 信封。
type Tasq struct {
	url    string
	client *http.Client
}

// NewTasq 创建 tasq 客户端（client 为 nil 时使用默认）
func NewTasq(url string, client *http.Client) *Tasq {
	if client == nil {
		client = http.DefaultClient
	}
	return &Tasq{url: url, client: client}
}

type tasqEnvelope struct {
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

type tasqPutPayload struct {
	Key string `json:"key"`
}

type tasqListPayload struct {
	Tasks []string `json:"tasks"`
	Count int      `json:"count"`
}

type tasqConsumePayload struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

// Insert 入队。若该 payload 已在队列中，其优先级加一。
func (t *Tasq) Insert(ctx context.Context, data string) (string, error) {
	var payload tasqPutPayload
	if err := t.do(ctx, http.MethodPut, strings.NewReader(data), &payload); err != nil {
		return "", fmt.Errorf("tasq insert: %w", err)
	}
	return payload.Key, nil
}

// List 返回队首至多 100 个任务 key 及总数，按优先级从高到低。
func (t *Tasq) List(ctx context.Context) ([]string, int, error) {
	var payload tasqListPayload
	if err := t.do(ctx, http.MethodGet, nil, &payload); err != nil {
		return nil, 0, fmt.Errorf("tasq list: %w", err)
	}
	return payload.Tasks, payload.Count, nil
}

// Consume 消费优先级最高的任务，取出后即从队列删除。
func (t *Tasq) Consume(ctx context.Context) (model.Task, error) {
	var payload tasqConsumePayload
	if err := t.do(ctx, http.MethodPost, nil, &payload); err != nil {
		return model.Task{}, fmt.Errorf("tasq consume: %w", err)
	}
	return model.Task{Key: payload.Key, Data: payload.Data}, nil
}

func (t *Tasq) do(ctx context.Context, method string, body *strings.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, t.url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, t.url, nil)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// tasq 用信封里的 ok/message 表达业务错误，404 表示空队列
	if resp.StatusCode == http.StatusNotFound {
		return ErrEmpty
	}

	var envelope tasqEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	logger.Debug().Str("method", method).Bool("ok", envelope.OK).Msg("tasq 响应")

	if !envelope.OK {
		if strings.Contains(strings.ToLower(envelope.Message), "empty") {
			return ErrEmpty
		}
		return fmt.Errorf("tasq error: %s", envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Payload, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}
