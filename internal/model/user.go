package model

// User 用户表 — 对应 users
// 身份参照数据：本服务只做登录与角色识别，账号管理由外部系统负责
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	EmployeeID   string `gorm:"type:varchar(20);not null"                      json:"employee_id"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'faculty'"    json:"role"` // admin | scheduler | faculty
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// ── 角色常量 ──

const (
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
	RoleFaculty   = "faculty"
)

// CanReview 是否具备审批调课申请的权限
func (u *User) CanReview() bool {
	return u.Role == RoleAdmin || u.Role == RoleScheduler
}
