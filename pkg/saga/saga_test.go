package saga

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestSaga_Execute_Success 测试所有步骤成功的场景
func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	s := NewSaga("test_success", 5*time.Second, nil)
	s.AddStep("保存封面",
		func(ctx context.Context) error {
			executed = append(executed, "保存封面")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除封面")
			return nil
		},
	)
	s.AddStep("写入图书",
		func(ctx context.Context) error {
			executed = append(executed, "写入图书")
			return nil
		},
		nil,
	)

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Saga执行失败: %v", err)
	}

	if len(executed) != 2 || executed[0] != "保存封面" || executed[1] != "写入图书" {
		t.Errorf("执行顺序错误: %v", executed)
	}
}

// TestSaga_Execute_FailureAndCompensate 测试步骤失败触发逆序补偿
func TestSaga_Execute_FailureAndCompensate(t *testing.T) {
	executed := make([]string, 0)
	errDB := errors.New("写入图书失败")

	s := NewSaga("test_failure", 5*time.Second, nil)
	s.AddStep("保存封面",
		func(ctx context.Context) error {
			executed = append(executed, "保存封面")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除封面")
			return nil
		},
	)
	s.AddStep("保存缩略图",
		func(ctx context.Context) error {
			executed = append(executed, "保存缩略图")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除缩略图")
			return nil
		},
	)
	s.AddStep("写入图书",
		func(ctx context.Context) error {
			return errDB
		},
		func(ctx context.Context) error {
			executed = append(executed, "不应执行")
			return nil
		},
	)

	err := s.Execute(context.Background())
	if !errors.Is(err, errDB) {
		t.Fatalf("应返回原始错误: %v", err)
	}

	expected := []string{"保存封面", "保存缩略图", "删除缩略图", "删除封面"}
	if len(executed) != len(expected) {
		t.Fatalf("执行记录错误: %v", executed)
	}
	for i := range expected {
		if executed[i] != expected[i] {
			t.Errorf("第%d步期望%s，实际%s", i, expected[i], executed[i])
		}
	}
}

// TestSaga_CompensateFailureIsReported 补偿失败继续执行并返回聚合错误
func TestSaga_CompensateFailureIsReported(t *testing.T) {
	errCleanup := errors.New("文件删除失败")
	firstCompensated := false

	s := NewSaga("test_compensate_failure", 5*time.Second, nil)
	s.AddStep("步骤1",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			firstCompensated = true
			return nil
		},
	)
	s.AddStep("步骤2",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return errCleanup },
	)
	s.AddStep("步骤3",
		func(ctx context.Context) error { return errors.New("失败") },
		nil,
	)

	err := s.Execute(context.Background())
	if !errors.Is(err, errCleanup) {
		t.Errorf("应包含补偿错误: %v", err)
	}
	if !firstCompensated {
		t.Error("补偿失败后应继续执行前面步骤的补偿")
	}
}

// TestSaga_Execute_Timeout 测试超时触发补偿
func TestSaga_Execute_Timeout(t *testing.T) {
	compensated := false

	s := NewSaga("test_timeout", 50*time.Millisecond, nil)
	s.AddStep("慢步骤",
		func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
		func(ctx context.Context) error {
			compensated = true
			return nil
		},
	)
	s.AddStep("后续步骤",
		func(ctx context.Context) error {
			t.Error("超时后不应继续执行")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("期望超时错误，实际: %v", err)
	}
	if !compensated {
		t.Error("超时后应执行补偿")
	}
}
