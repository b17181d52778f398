package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

type cartRequest struct {
	Items []cart.LineInput `json:"items" binding:"required"`
}

func bindCartRequest(c *gin.Context) ([]cart.LineInput, error) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errx.Validation("invalid request body: %v", err)
	}
	return req.Items, nil
}

func (s *Server) createCart(c *gin.Context) {
	items, err := bindCartRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := s.deps.Carts.Create(c.Request.Context(), items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getCart(c *gin.Context) {
	id, err := pathID(c, "cart")
	if err != nil {
		respondError(c, err)
		return
	}
	found, err := s.deps.Carts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) updateCart(c *gin.Context) {
	id, err := pathID(c, "cart")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := bindCartRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := s.deps.Carts.Update(c.Request.Context(), id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
