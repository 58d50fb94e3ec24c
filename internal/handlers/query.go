package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/pagination"
)

type scope = func(*gorm.DB) *gorm.DB

// postPage loads one page of posts annotated with comment counts. With
// filterPublished only publicly visible posts are kept; otherwise every
// post matching conds is listed, which is what authors see on their profile.
func (b *base) postPage(c *gin.Context, filterPublished bool, conds ...scope) (*pagination.Page[models.Post], error) {
	scopes := append([]scope{}, conds...)
	if filterPublished {
		scopes = append(scopes, models.Visible(b.now()))
	}

	q := b.dbc(c).Model(&models.Post{}).Session(&gorm.Session{})
	count := q.Scopes(scopes...)
	list := q.Scopes(scopes...).Scopes(models.WithCommentCount, models.WithRelations, models.Newest)

	return pagination.Paginate[models.Post](count, list, c.Query("page"), b.opts.PerPage)
}

func byAuthor(id uint) scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where("posts.author_id = ?", id) }
}

func inCategory(id uint) scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where("posts.category_id = ?", id) }
}

// choices loads categories and locations for the post form selects.
func (b *base) choices(c *gin.Context) ([]models.Category, []models.Location, error) {
	var categories []models.Category
	if err := b.dbc(c).Order("title").Find(&categories).Error; err != nil {
		return nil, nil, err
	}
	var locations []models.Location
	if err := b.dbc(c).Order("name").Find(&locations).Error; err != nil {
		return nil, nil, err
	}
	return categories, locations, nil
}
