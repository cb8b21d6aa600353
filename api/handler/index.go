package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
)

// Index returns a handler for GET / that renders the check form.
// authRequired makes the form ask for an API key.
func Index(authRequired bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"MinPages":     models.MinPages,
			"MaxPages":     models.MaxPages,
			"DefaultPages": models.DefaultPages,
			"AuthRequired": authRequired,
			"Version":      Version,
		})
	}
}
