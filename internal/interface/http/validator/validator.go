// Package validator 注册gin参数绑定使用的自定义校验规则
package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// Register 注册自定义规则,启动时调用一次
//
//	orderstatus: 订单状态 pending | confirmed | shipping | delivered | cancelled
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin校验引擎不是validator/v10")
	}
	return v.RegisterValidation("orderstatus", orderStatus)
}

func orderStatus(fl validator.FieldLevel) bool {
	_, err := order.ParseStatus(fl.Field().String())
	return err == nil
}
