package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/rand"

	"announcements/pkg/logger"
)

// ErrWorkerStopped 工作器已停止时提交任务返回该错误
var ErrWorkerStopped = errors.New("async worker stopped")

// DefaultMaxResults 默认保留的任务结果数量
const DefaultMaxResults = 1000

// Task 表示一个异步任务
type Task struct {
	ID       string
	Name     string
	Handler  func(ctx context.Context) error
	Timeout  time.Duration
	RetryMax int
}

// Result 表示任务执行结果
type Result struct {
	TaskID    string
	Completed bool
	Error     error
	StartTime time.Time
	EndTime   time.Time
}

// Worker 异步任务处理器
type Worker struct {
	taskQueue chan Task
	mu        sync.RWMutex

	// results 只保留最近maxResults个结果，resultOrder按写入顺序记录任务ID
	results     map[string]Result
	resultOrder []string
	maxResults  int

	logger   *logger.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once

	// stateMu 保护stopped，与results的锁分开，避免队列满时阻塞结果写入
	stateMu sync.RWMutex
	stopped bool

	// retryDelay 第n次重试前等待 n*retryDelay
	retryDelay time.Duration
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	return &Worker{
		taskQueue:  make(chan Task, queueSize),
		results:    make(map[string]Result),
		maxResults: DefaultMaxResults,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收任务并等待队列中的任务执行完毕
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.stateMu.Lock()
		w.stopped = true
		close(w.taskQueue)
		w.stateMu.Unlock()
		w.wg.Wait()
	})
}

// Submit 将任务加入队列，返回任务ID
func (w *Worker) Submit(task Task) (string, error) {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task_%d_%s", time.Now().UnixNano(), rand.String(6))
	}

	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	if w.stopped {
		return "", ErrWorkerStopped
	}
	w.taskQueue <- task
	return task.ID, nil
}

// AddTask 以默认参数提交一个简单任务
func (w *Worker) AddTask(name string, handler func(ctx context.Context) error) (string, error) {
	return w.Submit(Task{Name: name, Handler: handler})
}

// GetResult 获取任务结果
func (w *Worker) GetResult(taskID string) (Result, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result, exists := w.results[taskID]
	return result, exists
}

func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

func (w *Worker) executeTask(task Task) {
	result := Result{
		TaskID:    task.ID,
		StartTime: time.Now(),
	}

	w.logger.Debug("开始执行异步任务", "task_id", task.ID, "name", task.Name)

	ctx := context.Background()
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= task.RetryMax; attempt++ {
		if attempt > 0 {
			w.logger.Info("重试异步任务", "task_id", task.ID, "attempt", attempt)
			time.Sleep(w.retryDelay * time.Duration(attempt))
		}

		err = task.Handler(ctx)
		if err == nil {
			break
		}

		w.logger.Warn("异步任务执行失败", "task_id", task.ID, "attempt", attempt, "error", err)
	}

	result.EndTime = time.Now()
	result.Error = err
	result.Completed = err == nil

	w.storeResult(result)

	if err != nil {
		w.logger.Error("异步任务最终失败", "task_id", task.ID, "name", task.Name, "error", err)
	} else {
		w.logger.Debug("异步任务执行完成", "task_id", task.ID, "duration", result.EndTime.Sub(result.StartTime))
	}
}

// storeResult 记录任务结果，超出上限时淘汰最早的结果
func (w *Worker) storeResult(result Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.results[result.TaskID]; !exists {
		w.resultOrder = append(w.resultOrder, result.TaskID)
	}
	w.results[result.TaskID] = result

	for len(w.resultOrder) > w.maxResults {
		delete(w.results, w.resultOrder[0])
		w.resultOrder = w.resultOrder[1:]
	}
}
