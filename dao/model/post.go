package model

// Post is an informational page, looked up by slug
type Post struct {
	Base
	Title   string `gorm:"type:varchar(32);not null;comment:标题" json:"title"`
	Slug    string `gorm:"uniqueIndex;type:varchar(32);not null;comment:访问路径" json:"slug"`
	Content string `gorm:"type:text;not null;comment:正文 (Markdown)" json:"content"`
}
