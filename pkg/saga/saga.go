// Package saga 顺序执行一组带补偿操作的步骤
//
// 适用于跨越数据库事务边界的流程（例如先写文件存储、再写数据库）：
// 1. 按添加顺序执行每个步骤的Action
// 2. 某一步失败时，逆序执行已完成步骤的Compensate
// 3. 补偿失败不会中断后续补偿，只记录日志，最终与原始错误一起返回
//
// 补偿操作必须幂等，只依赖自身Action的结果（通过闭包捕获）。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次Saga执行
// 每次Execute都应使用新的Saga实例
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSaga 创建Saga
//
//	s := saga.NewSaga("publish_book", 30*time.Second, logger)
//	s.AddStep("保存封面", storeCover, deleteCover)
//	s.AddStep("写入图书", createBook, nil)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{
		name:    name,
		timeout: timeout,
		logger:  logger,
	}
}

// AddStep 添加步骤，Action和Compensate都可以为nil
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行Saga，失败时自动补偿
// 返回的错误包装了失败步骤的原始错误，可用errors.Is/As判断
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			n, cerr := s.compensate()
			metrics.ObserveSaga(s.name, false, n)
			return errors.Join(fmt.Errorf("saga[%s]超时: %w", s.name, err), cerr)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				n, cerr := s.compensate()
				metrics.ObserveSaga(s.name, false, n)
				return errors.Join(fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err), cerr)
			}
		}
		s.executed = append(s.executed, step)
	}

	metrics.ObserveSaga(s.name, true, 0)
	return nil
}

// compensate 逆序执行补偿，返回执行的补偿数与聚合的补偿错误
// 使用独立的Context，避免原Context超时导致补偿也被取消
func (s *Saga) compensate() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		count int
		errs  []error
	)
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		count++
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga补偿失败，需要人工介入",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("补偿[%s]失败: %w", step.Name, err))
		}
	}
	s.executed = nil
	return count, errors.Join(errs...)
}
