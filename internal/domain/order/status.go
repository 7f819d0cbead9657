package order

import (
	"strings"
)

// Status 订单状态(封闭枚举)
// 存储为int,对外使用String()的英文代码
type Status int

const (
	StatusPending   Status = 1 // 待确认
	StatusConfirmed Status = 2 // 已确认
	StatusShipping  Status = 3 // 配送中
	StatusDelivered Status = 4 // 已送达,营收统计只计算该状态
	StatusCancelled Status = 5 // 已取消
)

var statusCodes = map[Status]string{
	StatusPending:   "pending",
	StatusConfirmed: "confirmed",
	StatusShipping:  "shipping",
	StatusDelivered: "delivered",
	StatusCancelled: "cancelled",
}

var statusLabels = map[Status]string{
	StatusPending:   "待确认",
	StatusConfirmed: "已确认",
	StatusShipping:  "配送中",
	StatusDelivered: "已送达",
	StatusCancelled: "已取消",
}

// transitions 合法的状态流转
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// String 实现Stringer接口
func (s Status) String() string {
	if code, ok := statusCodes[s]; ok {
		return code
	}
	return "unknown"
}

// Label 中文名称
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "未知状态"
}

// IsValid 是否为已定义的状态
func (s Status) IsValid() bool {
	_, ok := statusCodes[s]
	return ok
}

// IsTerminal 终态不允许再流转
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseStatus 解析英文代码(不区分大小写)
func ParseStatus(code string) (Status, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for s, c := range statusCodes {
		if c == code {
			return s, nil
		}
	}
	return 0, ErrInvalidStatus.Withf("未知的订单状态: %s", code)
}

// StatusCodes 全部状态代码,按流转顺序
func StatusCodes() []string {
	return []string{"pending", "confirmed", "shipping", "delivered", "cancelled"}
}
