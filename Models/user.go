package Models

// User is a shop administrator able to log into the dashboard.
type User struct {
	Id         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:255"`
	Email      string `json:"email" gorm:"size:255;uniqueIndex"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission"`
}

const (
	PermissionNone  = 0
	PermissionStaff = 1
	PermissionAdmin = 2
)
