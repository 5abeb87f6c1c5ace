package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/azhengyongqin/archivebot/internal/model"
)

// RedisQueue 基于 Redis 有序集合的队列后端，复刻 tasq 语义：
// Insert 对已存在的成员做优先级 +1（ZINCRBY），Consume 弹出分值最高的成员（ZPOPMAX）。
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue 创建 Redis 队列客户端并验证连通性
func NewRedisQueue(addr, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisQueue{client: client, key: key}, nil
}

// Close 关闭 Redis 连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Insert 入队；重复 payload 提升优先级
func (q *RedisQueue) Insert(ctx context.Context, data string) (string, error) {
	if err := q.client.ZIncrBy(ctx, q.key, 1, data).Err(); err != nil {
		return "", fmt.Errorf("redis insert: %w", err)
	}
	// 与 tasq 对齐：key 为 "<list>:<payload>"
	return q.key + ":" + data, nil
}

// Consume 弹出优先级最高的任务
func (q *RedisQueue) Consume(ctx context.Context) (model.Task, error) {
	members, err := q.client.ZPopMax(ctx, q.key, 1).Result()
	if err != nil {
		return model.Task{}, fmt.Errorf("redis consume: %w", err)
	}
	if len(members) == 0 {
		return model.Task{}, ErrEmpty
	}

	data, ok := members[0].Member.(string)
	if !ok {
		return model.Task{}, fmt.Errorf("redis consume: unexpected member type %T", members[0].Member)
	}
	return model.Task{Key: q.key + ":" + data, Data: data}, nil
}

// List 返回前 100 个任务及总数，按优先级从高到低
func (q *RedisQueue) List(ctx context.Context) ([]string, int, error) {
	tasks, err := q.client.ZRevRange(ctx, q.key, 0, 99).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis list: %w", err)
	}
	count, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis count: %w", err)
	}
	return tasks, int(count), nil
}
