package dto

// ── 认证模块 DTO ──

// LoginRequest 教师登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"` // 有效期（秒）
	Teacher     TeacherResponse `json:"teacher"`
}

// TeacherResponse 教师信息
type TeacherResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ClassID   *uint  `json:"class_id,omitempty"`
}
