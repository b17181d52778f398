package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

func (s *Server) searchProducts(c *gin.Context) {
	products, err := s.deps.Products.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := pathID(c, "product")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := s.deps.Products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// pathID parses a positive integer path parameter. Malformed ids are treated
// as unknown resources.
func pathID(c *gin.Context, resource string) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errx.NotFound("%s %q not found", resource, raw)
	}
	return id, nil
}
