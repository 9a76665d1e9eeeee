package interfaces

import "lake-backend/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
// Find* 方法在记录不存在时返回 (nil, nil)
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	Delete(id int) error
	Search(keyword string, page, pageSize int) ([]*model.User, int, error)
}
