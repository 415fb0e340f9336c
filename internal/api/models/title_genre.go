package models

// explicit join model so genre deletion can cascade through it
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"index;not null"`
	GenreID int64 `json:"genre_id" gorm:"index;not null"`

	Title Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Genre Genre `json:"-" gorm:"foreignKey:GenreID;constraint:OnDelete:CASCADE;"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
