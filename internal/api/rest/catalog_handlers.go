package rest

import (
	"errors"
	"net/http"

	"github.com/darkdragonsastro/trackcore/internal/catalog"
	"github.com/gin-gonic/gin"
)

// getStarByName resolves a named star the same way NamedStarTarget does,
// so operators can check a name resolves before pointing a target at it.
func (s *Server) getStarByName(c *gin.Context) {
	if s.starCatalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "star catalog not available"})
		return
	}

	name := c.Param("name")
	star, err := s.starCatalog.GetByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "star not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, star)
}
