package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化（重复调用不应panic）
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	if OrdersPlacedTotal == nil || HTTPRequestsTotal == nil || SagaExecutionsTotal == nil {
		t.Fatal("指标未初始化")
	}
	t.Log("✅ 所有指标初始化成功")
}

// TestTrackOrderPlacement 测试下单指标
func TestTrackOrderPlacement(t *testing.T) {
	InitMetrics()
	placedBefore := counterValue(t, OrdersPlacedTotal)
	failedBefore := counterValue(t, OrdersFailedTotal.WithLabelValues("40001"))

	TrackOrderPlacement()("")
	TrackOrderPlacement()("40001")
	TrackOrderPlacement()("40001")

	if got := counterValue(t, OrdersPlacedTotal) - placedBefore; got != 1 {
		t.Errorf("成功下单计数错误: expected=1, got=%f", got)
	}
	if got := counterValue(t, OrdersFailedTotal.WithLabelValues("40001")) - failedBefore; got != 2 {
		t.Errorf("失败下单计数错误: expected=2, got=%f", got)
	}
	if got := gaugeValue(t, OrdersInProgress); got != 0 {
		t.Errorf("处理中订单数应回到0: got=%f", got)
	}
}

// TestObserveSaga 测试Saga指标
func TestObserveSaga(t *testing.T) {
	ObserveSaga("publish_book", false, 2)
	ObserveSaga("publish_book", true, 0)

	if got := counterValue(t, SagaExecutionsTotal.WithLabelValues("publish_book", "failure")); got != 1 {
		t.Errorf("Saga失败计数错误: got=%f", got)
	}
	if got := counterValue(t, SagaCompensationsTotal.WithLabelValues("publish_book")); got != 2 {
		t.Errorf("Saga补偿计数错误: got=%f", got)
	}
}

// TestObserveHTTPRequest 测试HTTP指标
func TestObserveHTTPRequest(t *testing.T) {
	ObserveHTTPRequest("POST", "/api/v1/orders", 200, 30*time.Millisecond)
	ObserveHTTPRequest("POST", "/api/v1/orders", 200, 10*time.Millisecond)
	IncMessagePublished("mail.send", errors.New("broken pipe"))

	if got := counterValue(t, HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "200")); got != 2 {
		t.Errorf("HTTP请求计数错误: expected=2, got=%f", got)
	}
	if got := counterValue(t, MessagesPublishedTotal.WithLabelValues("mail.send", "failure")); got != 1 {
		t.Errorf("消息发布失败计数错误: got=%f", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("读取Counter失败: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("读取Gauge失败: %v", err)
	}
	return m.GetGauge().GetValue()
}
