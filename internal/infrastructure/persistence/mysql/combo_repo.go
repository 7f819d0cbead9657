package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/combo"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// comboRepository 套装仓储实现
// 套装与combo_items作为一个聚合读写
type comboRepository struct {
	db *gorm.DB
}

// NewComboRepository 创建套装仓储
func NewComboRepository(db *gorm.DB) combo.Repository {
	return &comboRepository{db: db}
}

func (r *comboRepository) Create(ctx context.Context, c *combo.Combo) error {
	model := toComboModel(c)
	// Items随套装一起插入
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建套装失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *comboRepository) FindByID(ctx context.Context, id uint) (*combo.Combo, error) {
	var model ComboModel
	err := r.db.WithContext(ctx).Preload("Items", orderByID).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, combo.ErrComboNotFound
		}
		return nil, apperrors.Wrap(err, "查询套装失败")
	}
	return toComboEntity(&model), nil
}

func (r *comboRepository) FindByIDs(ctx context.Context, ids []uint) ([]*combo.Combo, error) {
	if len(ids) == 0 {
		return []*combo.Combo{}, nil
	}
	var models []ComboModel
	if err := r.db.WithContext(ctx).Preload("Items", orderByID).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询套装失败")
	}
	return toComboEntities(models), nil
}

// Update 更新套装字段并整体替换成分
func (r *comboRepository) Update(ctx context.Context, c *combo.Combo) error {
	model := toComboModel(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ComboModel{ID: c.ID}).Updates(map[string]interface{}{
			"name":           model.Name,
			"description":    model.Description,
			"total_price":    model.TotalPrice,
			"discount_price": model.DiscountPrice,
			"image":          model.Image,
			"updated_at":     c.UpdatedAt,
		})
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "更新套装失败")
		}
		if result.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&ComboModel{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
				return apperrors.Wrap(err, "查询套装失败")
			}
			if n == 0 {
				return combo.ErrComboNotFound
			}
		}

		if err := tx.Where("combo_id = ?", c.ID).Delete(&ComboItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "更新套装成分失败")
		}
		if len(model.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&model.Items).Error; err != nil {
				return apperrors.Wrap(err, "更新套装成分失败")
			}
		}
		return nil
	})
}

func (r *comboRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combo_id = ?", id).Delete(&ComboItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除套装成分失败")
		}
		result := tx.Delete(&ComboModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除套装失败")
		}
		if result.RowsAffected == 0 {
			return combo.ErrComboNotFound
		}
		return nil
	})
}

func (r *comboRepository) List(ctx context.Context) ([]*combo.Combo, error) {
	var models []ComboModel
	if err := r.db.WithContext(ctx).Preload("Items", orderByID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询套装列表失败")
	}
	return toComboEntities(models), nil
}

func (r *comboRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&ComboModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计套装失败")
	}
	return n, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func toComboModel(c *combo.Combo) *ComboModel {
	items := make([]ComboItemModel, len(c.BookIDs))
	for i, id := range c.BookIDs {
		items[i] = ComboItemModel{ComboID: c.ID, BookID: id}
	}
	return &ComboModel{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		TotalPrice:    c.TotalPrice,
		DiscountPrice: c.DiscountPrice,
		Image:         c.Image,
		Items:         items,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toComboEntity(m *ComboModel) *combo.Combo {
	ids := make([]uint, len(m.Items))
	for i, item := range m.Items {
		ids[i] = item.BookID
	}
	return &combo.Combo{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		BookIDs:       ids,
		TotalPrice:    m.TotalPrice,
		DiscountPrice: m.DiscountPrice,
		Image:         m.Image,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toComboEntities(models []ComboModel) []*combo.Combo {
	combos := make([]*combo.Combo, len(models))
	for i := range models {
		combos[i] = toComboEntity(&models[i])
	}
	return combos
}
