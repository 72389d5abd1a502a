package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	blogRepo "serenity/database/repository/blog"
	"serenity/models"
	"serenity/services/blog"
)

// BlogHandler exposes the blog CMS. Public reads go through the cached
// service path; admin mutations invalidate the cache via the service.
type BlogHandler struct {
	Svc blog.Service
}

func NewBlogHandler(svc blog.Service) *BlogHandler {
	return &BlogHandler{Svc: svc}
}

func (h *BlogHandler) List(c *gin.Context) {
	f := blogRepo.Filter{
		Author:        c.Query("author"),
		Tag:           c.Query("tag"),
		PublishedOnly: c.Query("published") == "true",
	}
	blogs, err := h.Svc.List(c.Request.Context(), f, listOptions(c, "publishedAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blogs)
}

// Get resolves a post by slug or id.
func (h *BlogHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var b models.Blog
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), &b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BlogHandler) Update(c *gin.Context) {
	var upd blogRepo.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	b, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
