package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate проверяет пост и вложенные комментарии, которые будут созданы вместе с ним
func (p *BlogPost) Validate() error {
	if err := p.ValidateFields(); err != nil {
		return err
	}
	for i := range p.Comments {
		// BlogPostID вложенных комментариев выставит хранилище после вставки поста
		if err := validate.StructExcept(&p.Comments[i], "BlogPostID"); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFields проверяет только поля самого поста
func (p *BlogPost) ValidateFields() error {
	return validate.Struct(p)
}

func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// ValidateContent проверяет поля, которые можно менять после создания
func (c *Comment) ValidateContent() error {
	return validate.StructPartial(c, "Author", "Content")
}

func (u *User) Validate() error {
	return validate.Struct(u)
}
