package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// orderNoLayout 订单号中的时间部分,精确到秒
const orderNoLayout = "20060102150405"

// GenerateOrderNo 生成订单号,格式 ORD + 下单时间 + 6位随机数
//
//	ORD20240302101500042817
//
// 同一秒内的冲突由orders.order_no唯一索引兜底
func GenerateOrderNo(now time.Time) string {
	return fmt.Sprintf("ORD%s%06d", now.Format(orderNoLayout), rand.IntN(1000000))
}
