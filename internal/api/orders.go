package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"comanda/internal/models"
	"comanda/internal/restaurant"

	"github.com/gin-gonic/gin"
)

// Order management handlers

func (s *Server) CreateOrder(c *gin.Context) {
	var req restaurant.NewOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := s.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders filters by ?state= (repeatable or comma separated) and ?from=
// ?to= calendar dates
func (s *Server) ListOrders(c *gin.Context) {
	states, err := parseStates(c.QueryArray("state"))
	if err != nil {
		badRequest(c, err)
		return
	}
	r, ok := s.dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.service.Orders(restaurant.OrderFilter{States: states, Range: r}))
}

func (s *Server) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := s.service.Order(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) AdvanceOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := s.service.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) AddLineItem(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req restaurant.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := s.service.AddLineItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RemoveLineItem takes {"quantity": n} units off the zero-based line :index
func (s *Server) RemoveLineItem(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid line index %q", c.Param("index")))
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := s.service.RemoveLineItemQuantity(c.Request.Context(), id, index, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ApplyTip accepts {"amount": "5000"} or {"percentage": true}
func (s *Server) ApplyTip(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var tip restaurant.Tip
	if err := c.ShouldBindJSON(&tip); err != nil {
		badRequest(c, err)
		return
	}

	order, err := s.service.ApplyTip(c.Request.Context(), id, tip)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Staff views

// ActiveOrders lists every order not yet paid
func (s *Server) ActiveOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Orders(restaurant.OrderFilter{
		States: []models.OrderState{
			models.OrderStateRegistered,
			models.OrderStateInPreparation,
			models.OrderStateDelivered,
		},
	}))
}

// KitchenQueue lists orders in preparation
func (s *Server) KitchenQueue(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Orders(restaurant.OrderFilter{
		States: []models.OrderState{models.OrderStateInPreparation},
	}))
}

// History lists paid orders, optionally bounded by ?from= ?to=
func (s *Server) History(c *gin.Context) {
	r, ok := s.dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.service.Orders(restaurant.OrderFilter{
		States: []models.OrderState{models.OrderStatePaid},
		Range:  r,
	}))
}

func (s *Server) Tables(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Tables())
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid order id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func parseStates(values []string) ([]models.OrderState, error) {
	var states []models.OrderState
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			state := models.OrderState(part)
			if !state.Valid() {
				return nil, fmt.Errorf("unknown order state %q", part)
			}
			states = append(states, state)
		}
	}
	return states, nil
}
