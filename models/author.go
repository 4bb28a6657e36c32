package models

const (
	AuthorNameMaxLength = 256
	GenreNameMaxLength  = 65
)

type Author struct {
	Base
	Deletable
	Name  string `gorm:"size:256;not null;uniqueIndex:idx_authors_name_live,where:deleted_on IS NULL" json:"name"`
	Books []Book `gorm:"many2many:authors_books;" json:"-"`
}

type Genre struct {
	Base
	Deletable
	Name  string `gorm:"size:65;not null;uniqueIndex:idx_genres_name_live,where:deleted_on IS NULL" json:"name"`
	Books []Book `gorm:"many2many:genres_books;" json:"-"`
}
