package dto

// UserProfile 用户资料
type UserProfile struct {
	Id        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	AvatarURL string   `json:"avatarUrl"`
	Skills    []string `json:"skills"`
	Level     int      `json:"level"`
}

// UpdateSkillsRequest 更新技能标签请求
type UpdateSkillsRequest struct {
	Skills []string `json:"skills" binding:"required"`
}

// SearchUsersResponse 技能搜索响应
type SearchUsersResponse struct {
	Users []*UserProfile `json:"users"`
}

// ConnectionItem 连接列表条目（对端用户 + 展示字段）
type ConnectionItem struct {
	Id        string   `json:"id"`
	Username  string   `json:"username"`
	AvatarURL string   `json:"avatarUrl"`
	Skills    []string `json:"skills"`
	Level     int      `json:"level"`
}

// ListConnectionsResponse 连接列表响应
type ListConnectionsResponse struct {
	Connections []*ConnectionItem `json:"connections"`
}
