package models

// Article is owned by the content platform; the tracker only reads it to scope and label
// per-newsletter stats.
type Article struct {
	ID           string `gorm:"primaryKey;size:64"`
	NewsletterID string `gorm:"size:64;index;not null"`
	Title        string
}

func (Article) TableName() string {
	return "articles"
}
