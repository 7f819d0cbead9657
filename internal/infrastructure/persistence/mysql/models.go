package mysql

import (
	"time"

	"github.com/shopspring/decimal"
)

// 数据模型
// domain层的实体不依赖GORM,Repository负责两者之间的转换。
// 金额统一使用decimal(10,2),与shopspring/decimal一一对应。

// UserModel 用户
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Name      string    `gorm:"size:50;not null;comment:姓名"`
	Phone     string    `gorm:"size:20;comment:电话"`
	Role      string    `gorm:"index;size:10;not null;default:user;comment:角色(user/admin)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// GenreModel 图书分类
type GenreModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:50;not null;comment:分类名称"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (GenreModel) TableName() string {
	return "genres"
}

// BookModel 图书
// 删除分类时genre_id置空;删除图书时级联删除套装成分、评论和收藏
type BookModel struct {
	ID            uint            `gorm:"primaryKey"`
	Title         string          `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string          `gorm:"index:idx_search;size:100;not null;comment:作者"`
	GenreID       *uint           `gorm:"index;comment:分类ID"`
	Genre         *GenreModel     `gorm:"foreignKey:GenreID;constraint:OnDelete:SET NULL"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:价格"`
	Stock         int             `gorm:"not null;default:0;comment:库存数量"`
	PublishedDate time.Time       `gorm:"index;type:date;comment:出版日期"`
	CoverImage    string          `gorm:"size:500;comment:封面图片引用"`
	Description   string          `gorm:"type:text;comment:图书描述"`
	CreatedAt     time.Time       `gorm:"comment:创建时间"`
	UpdatedAt     time.Time       `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// ComboModel 图书套装,与ComboItemModel一对多
type ComboModel struct {
	ID            uint             `gorm:"primaryKey"`
	Name          string           `gorm:"size:100;not null;comment:套装名称"`
	Description   string           `gorm:"type:text;comment:套装描述"`
	TotalPrice    decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:原价合计"`
	DiscountPrice decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:套装价"`
	Image         string           `gorm:"size:500;comment:图片引用"`
	Items         []ComboItemModel `gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"comment:创建时间"`
	UpdatedAt     time.Time        `gorm:"comment:更新时间"`
}

func (ComboModel) TableName() string {
	return "combos"
}

// ComboItemModel 套装成分,每本图书一册
type ComboItemModel struct {
	ID      uint       `gorm:"primaryKey"`
	ComboID uint       `gorm:"uniqueIndex:idx_combo_book;not null;comment:套装ID"`
	BookID  uint       `gorm:"uniqueIndex:idx_combo_book;index;not null;comment:图书ID"`
	Book    *BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (ComboItemModel) TableName() string {
	return "combo_items"
}

// VoucherModel 优惠券
type VoucherModel struct {
	ID              uint            `gorm:"primaryKey"`
	Code            string          `gorm:"uniqueIndex;size:50;not null;comment:券码"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;comment:折扣百分比"`
	MaxDiscount     decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:最高优惠金额"`
	MinOrderAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;comment:最低订单金额"`
	ExpiryDate      time.Time       `gorm:"type:date;not null;comment:到期日"`
	UsageLimit      int             `gorm:"not null;comment:使用次数上限"`
	UsedCount       int             `gorm:"not null;default:0;comment:已使用次数"`
	CreatedAt       time.Time       `gorm:"comment:创建时间"`
}

func (VoucherModel) TableName() string {
	return "vouchers"
}

// AddressModel 收货地址
type AddressModel struct {
	ID            uint       `gorm:"primaryKey"`
	UserID        uint       `gorm:"index;not null;comment:用户ID"`
	User          *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RecipientName string     `gorm:"size:100;not null;comment:收货人"`
	Address       string     `gorm:"size:255;not null;comment:详细地址"`
	Phone         string     `gorm:"size:20;not null;comment:电话"`
	CreatedAt     time.Time  `gorm:"comment:创建时间"`
}

func (AddressModel) TableName() string {
	return "shipping_addresses"
}

// OrderModel 订单,与OrderLineModel一对多
// Status使用tinyint存储(1待确认2已确认3配送中4已送达5已取消)
type OrderModel struct {
	ID                uint             `gorm:"primaryKey"`
	OrderNo           string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID            uint             `gorm:"index;not null;comment:买家用户ID"`
	ShippingAddressID uint             `gorm:"index;not null;comment:收货地址ID"`
	OrderDate         time.Time        `gorm:"index;not null;comment:下单时间"`
	Subtotal          decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:优惠前金额"`
	Discount          decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0;comment:优惠金额"`
	Total             decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:应付金额"`
	Status            int              `gorm:"index;type:tinyint;not null;default:1;comment:订单状态"`
	PaymentMethod     string           `gorm:"size:20;not null;comment:支付方式"`
	IsPaid            bool             `gorm:"not null;default:false;comment:是否已支付"`
	VoucherID         *uint            `gorm:"index;comment:优惠券ID"`
	Lines             []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"comment:创建时间"`
	UpdatedAt         time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel 订单行
// book_id与combo_id不设外键,删除图书后历史订单仍然保留引用
type OrderLineModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null;comment:订单ID"`
	BookID    *uint           `gorm:"index;comment:图书ID"`
	ComboID   *uint           `gorm:"index;comment:套装ID"`
	Quantity  int             `gorm:"not null;comment:购买数量"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:下单时单价"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ReviewModel 图书评论
type ReviewModel struct {
	ID        uint       `gorm:"primaryKey"`
	BookID    uint       `gorm:"index;not null;comment:图书ID"`
	Book      *BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	UserID    uint       `gorm:"index;not null;comment:用户ID"`
	Rating    int        `gorm:"type:tinyint;not null;comment:评分(1-5)"`
	Comment   string     `gorm:"type:text;comment:评论内容"`
	CreatedAt time.Time  `gorm:"comment:创建时间"`
	UpdatedAt time.Time  `gorm:"comment:更新时间"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}

// FavoriteModel 收藏,(user_id, book_id)唯一
type FavoriteModel struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"uniqueIndex:idx_user_book;not null;comment:用户ID"`
	BookID    uint       `gorm:"uniqueIndex:idx_user_book;index;not null;comment:图书ID"`
	Book      *BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"comment:创建时间"`
}

func (FavoriteModel) TableName() string {
	return "favorites"
}
