package subscription

import "github.com/VitaminP8/blogapp/models"

type Manager interface {
	Subscribe(postID uint) (<-chan *models.Comment, func())
	Publish(postID uint, comment *models.Comment)
}
