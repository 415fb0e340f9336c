package models

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

func (c Category) GetName() string { return c.Name }
func (c Category) GetSlug() string { return c.Slug }

func (Category) TableName() string {
	return "categories"
}
