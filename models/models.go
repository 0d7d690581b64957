package models

import "time"

// BlogPost владеет своими комментариями: при удалении поста комментарии удаляются каскадно.
type BlogPost struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Content     string    `gorm:"size:65535" json:"content"`
	DateCreated time.Time `gorm:"not null" json:"dateCreated"`
	Comments    []Comment `gorm:"foreignkey:BlogPostID" json:"comments,omitempty" validate:"-"`
}

// Comment ссылается на пост через BlogPostID, ограничение внешнего ключа живет в самой БД.
type Comment struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	BlogPostID  uint      `gorm:"type:integer REFERENCES blog_posts(id) ON DELETE CASCADE;not null;index" json:"blogPostId" validate:"required"`
	Author      string    `gorm:"size:100;not null" json:"author" validate:"required,max=100"`
	Content     string    `gorm:"size:65535;not null" json:"content" validate:"required"`
	DateCreated time.Time `gorm:"not null" json:"dateCreated"`
	// только навигация, через комментарий пост не создается и не обновляется
	BlogPost *BlogPost `gorm:"foreignkey:BlogPostID;association_autoupdate:false;association_autocreate:false" json:"blogPost,omitempty" validate:"-"`
}

type User struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:50;unique;not null" json:"username" validate:"required,min=3,max=50"`
	Email        string    `gorm:"size:255;unique;not null" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DateCreated  time.Time `gorm:"not null" json:"dateCreated"`
}

// BeforeCreate вызывается gorm перед INSERT, дата создания всегда выставляется сервером.
func (p *BlogPost) BeforeCreate() {
	p.DateCreated = time.Now().UTC()
}

func (c *Comment) BeforeCreate() {
	c.DateCreated = time.Now().UTC()
}

func (u *User) BeforeCreate() {
	u.DateCreated = time.Now().UTC()
}
