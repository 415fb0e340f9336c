package models

// Slugged is the shared shape of Category and Genre: a display name plus
// a unique URL-safe slug. They stay independent tables; only the shape
// and its validation are shared.
type Slugged interface {
	GetName() string
	GetSlug() string
}

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

func (g Genre) GetName() string { return g.Name }
func (g Genre) GetSlug() string { return g.Slug }

func (Genre) TableName() string {
	return "genres"
}
