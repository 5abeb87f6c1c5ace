package fetch

import (
	"context"
	"fmt"
)

// Outcome 一次抓取子进程的结果
type Outcome struct {
	// ExitCode 进程退出码（0 为成功）
	ExitCode int
	// Stdout/Stderr 捕获的输出
	Stdout []byte
	Stderr []byte
}

// Success 进程是否成功退出
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// Fetcher 抓取器抽象：在指定工作目录内抓取一个 URL 对应的产物。
// 进程无法启动返回 error；启动后非零退出通过 Outcome 表达。
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (Outcome, error)
}

// ExitError 主抓取非零退出错误，携带退出码与 stderr
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("fetcher exited with code %d, stderr: %s", e.ExitCode, e.Stderr)
}
