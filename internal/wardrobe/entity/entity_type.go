package entity

import "fmt"

// EntityType 可以携带属性标签的实体类型
// 这是一个编译期已知的封闭集合，新增实体类型需要在这里登记
type EntityType string

const (
	// EntityTypeClothingItem 衣物单品
	EntityTypeClothingItem EntityType = "clothing_item"
	// EntityTypeOutfit 搭配
	EntityTypeOutfit EntityType = "outfit"
	// EntityTypeUserProfile 用户偏好档案
	EntityTypeUserProfile EntityType = "user_profile"
)

// entityTypes 所有合法的实体类型
var entityTypes = map[EntityType]bool{
	EntityTypeClothingItem: true,
	EntityTypeOutfit:       true,
	EntityTypeUserProfile:  true,
}

// Valid 判断实体类型是否在封闭集合内
func (t EntityType) Valid() bool {
	return entityTypes[t]
}

// ParseEntityType 解析实体类型字符串
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type: %q", s)
	}
	return t, nil
}
