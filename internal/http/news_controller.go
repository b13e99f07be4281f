package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/database/news"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// NewsController manages library announcements. Published posts are public;
// authoring is staff-only.
type NewsController struct {
	repo *news.Repository
}

func NewNewsController(repo *news.Repository) *NewsController {
	return &NewsController{repo: repo}
}

type newsPostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// List returns posts. Anonymous and member callers see published posts only;
// staff also see drafts.
func (n *NewsController) List(c *gin.Context) {
	publishedOnly := !GetUserRole(c).IsStaff()
	posts, err := n.repo.ListPosts(publishedOnly)
	if err != nil {
		respondInternalError(c, err, "list news")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// Get returns a single post. Drafts are visible to staff only.
func (n *NewsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := n.repo.GetPostByID(id)
	if err != nil {
		respondDomainError(c, err, "news post")
		return
	}
	if !post.Published && !GetUserRole(c).IsStaff() {
		respondNotFound(c, "news post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create drafts a new post.
func (n *NewsController) Create(c *gin.Context) {
	var req newsPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and body are required")
		return
	}

	post := &entities.NewsPost{
		AuthorID: GetUserID(c),
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := n.repo.CreatePost(post); err != nil {
		respondInternalError(c, err, "create news post")
		return
	}
	respondCreated(c, post)
}

// Update edits the title and body of a post.
func (n *NewsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req newsPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and body are required")
		return
	}

	post, err := n.repo.UpdatePost(id, req.Title, req.Body)
	if err != nil {
		respondDomainError(c, err, "news post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Publish makes a draft visible. Publishing an already published post is a
// no-op.
func (n *NewsController) Publish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := n.repo.PublishPost(id)
	if err != nil {
		respondDomainError(c, err, "news post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete removes a post.
func (n *NewsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := n.repo.DeletePost(id); err != nil {
		respondDomainError(c, err, "news post")
		return
	}
	respondSuccess(c, "news post deleted")
}
