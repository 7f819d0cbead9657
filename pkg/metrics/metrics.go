// Package metrics 基于Prometheus的业务与HTTP指标
//
// 指标类型：
//   - Counter：只增不减（订单数、失败数、消息发布数）
//   - Gauge：可增可减（处理中的请求/订单）
//   - Histogram：观测值分布（下单耗时、HTTP耗时）
//
// 所有指标由InitMetrics注册到默认Registry，/metrics端点通过promhttp暴露。
// 记录函数内部会确保已初始化，业务代码和测试无需关心调用顺序。
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），标签只使用有限取值
// （method、status、reason），不要使用user_id、order_no这类高基数字段。
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookshop"

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数，标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时，标签：method、path
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// OrdersPlacedTotal 下单成功总数
	OrdersPlacedTotal prometheus.Counter

	// OrdersFailedTotal 下单失败总数，标签：reason（错误码）
	OrdersFailedTotal *prometheus.CounterVec

	// OrderPlacementDuration 下单耗时
	OrderPlacementDuration prometheus.Histogram

	// OrdersInProgress 正在处理的下单请求数
	OrdersInProgress prometheus.Gauge

	// OrderStatusChangesTotal 订单状态变更总数，标签：status（目标状态）
	OrderStatusChangesTotal *prometheus.CounterVec

	// VoucherRedemptionsTotal 优惠券核销总数
	VoucherRedemptionsTotal prometheus.Counter

	// SagaExecutionsTotal Saga执行总数，标签：saga、result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿步骤执行总数，标签：saga
	SagaCompensationsTotal *prometheus.CounterVec

	// MessagesPublishedTotal 消息发布总数，标签：routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标（可重复调用）
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"})

		HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		}, []string{"method", "path"})

		HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		})

		OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "下单成功总数",
		})

		OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_failed_total",
			Help:      "下单失败总数",
		}, []string{"reason"})

		OrderPlacementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_placement_duration_seconds",
			Help:      "下单耗时（秒）",
			// 下单包含加锁、扣库存、核销优惠券，整体在一个事务内
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		})

		OrdersInProgress = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders_in_progress",
			Help:      "正在处理的下单请求数",
		})

		OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "订单状态变更总数",
		}, []string{"status"})

		VoucherRedemptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_redemptions_total",
			Help:      "优惠券核销总数",
		})

		SagaExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_executions_total",
			Help:      "Saga执行总数",
		}, []string{"saga", "result"})

		SagaCompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensations_total",
			Help:      "Saga补偿执行总数",
		}, []string{"saga"})

		MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "消息发布总数",
		}, []string{"routing_key", "result"})
	})
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// TrackOrderPlacement 标记一次下单开始，返回的函数在结束时调用
//
//	done := metrics.TrackOrderPlacement()
//	defer func() { done(err) }()
func TrackOrderPlacement() func(reason string) {
	InitMetrics()
	start := time.Now()
	OrdersInProgress.Inc()
	return func(reason string) {
		OrdersInProgress.Dec()
		OrderPlacementDuration.Observe(time.Since(start).Seconds())
		if reason == "" {
			OrdersPlacedTotal.Inc()
			return
		}
		OrdersFailedTotal.WithLabelValues(reason).Inc()
	}
}

// IncVoucherRedemption 记录一次优惠券核销
func IncVoucherRedemption() {
	InitMetrics()
	VoucherRedemptionsTotal.Inc()
}

// IncOrderStatusChange 记录一次订单状态变更
func IncOrderStatusChange(status string) {
	InitMetrics()
	OrderStatusChangesTotal.WithLabelValues(status).Inc()
}

// ObserveSaga 记录一次Saga执行结果及补偿次数
func ObserveSaga(name string, success bool, compensations int) {
	InitMetrics()
	result := "success"
	if !success {
		result = "failure"
	}
	SagaExecutionsTotal.WithLabelValues(name, result).Inc()
	if compensations > 0 {
		SagaCompensationsTotal.WithLabelValues(name).Add(float64(compensations))
	}
}

// IncMessagePublished 记录一次消息发布结果
func IncMessagePublished(routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}
