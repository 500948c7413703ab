package repository

import "gorm.io/gorm"

// paginate 分页 scope：页码越界落回首页，页大小非法时不加限制
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return query
		}
		if page < 1 {
			page = 1
		}
		return query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}
