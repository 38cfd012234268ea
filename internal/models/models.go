package models

// User owns articles. Deleting a user removes every article they created.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name         string    `gorm:"size:256"                      json:"name"`
	Surname      string    `gorm:"size:256"                      json:"surname"`
	Email        string    `gorm:"size:256;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:256;not null"             json:"-"`
	Admin        bool      `gorm:"default:false"                 json:"admin"`
	Articles     []Article `gorm:"constraint:OnDelete:CASCADE"   json:"articles,omitempty"`
}

type Article struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:256;not null"        json:"title"`
	Description string `gorm:"size:256"                 json:"description"`
	SourceURL   string `gorm:"size:256"                 json:"source_url"`
	UserID      uint   `gorm:"index;not null"           json:"user_id"`
}
