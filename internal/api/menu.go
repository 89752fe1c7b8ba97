package api

import (
	"net/http"

	"comanda/internal/models"

	"github.com/gin-gonic/gin"
)

// Menu management handlers

// ListMenu returns the catalog grouped by category, or flat with ?flat=true
func (s *Server) ListMenu(c *gin.Context) {
	if c.Query("flat") == "true" {
		c.JSON(http.StatusOK, s.service.MenuItems())
		return
	}
	c.JSON(http.StatusOK, s.service.Menu())
}

func (s *Server) GetMenuItem(c *gin.Context) {
	item, err := s.service.MenuItem(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) AddMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}

	added, err := s.service.AddMenuItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// UpdateMenuItem replaces the item at :name. An empty name in the body keeps
// the current one.
func (s *Server) UpdateMenuItem(c *gin.Context) {
	name := c.Param("name")
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	if item.Name == "" {
		item.Name = name
	}

	updated, err := s.service.UpdateMenuItem(c.Request.Context(), name, item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) RemoveMenuItem(c *gin.Context) {
	if err := s.service.RemoveMenuItem(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item removed"})
}

// Category handlers

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Categories())
}

func (s *Server) AddCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := s.service.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) RenameCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := s.service.RenameCategory(c.Request.Context(), c.Param("name"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) RemoveCategory(c *gin.Context) {
	if err := s.service.RemoveCategory(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category removed"})
}
