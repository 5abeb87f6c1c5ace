package model

// Task 一个归档工作单元。Key 为队列侧生成的不透明标识，
// Data 为视频 ID（payload）。任务被消费后不再修改。
type Task struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}
