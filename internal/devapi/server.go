// Package devapi is a local stand-in for the list/task REST API.
//
// Lists are a user's top-level tasks; "tasks" are the items of one list.
// Boolean columns are served as 0/1, the way the production database
// returns them.
package devapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsertResponse mirrors the result packet of the production database driver.
type InsertResponse struct {
	InsertID     int64 `json:"insertId"`
	AffectedRows int64 `json:"affectedRows"`
}

type createListRequest struct {
	Title string `json:"title"`
}

type updateListRequest struct {
	Title     string `json:"title"`
	IsVisible bool   `json:"isVisible"`
}

type addItemRequest struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

// Handler serves the API routes.
type Handler struct {
	store  *Store
	logger *log.Logger
}

// NewRouter builds the gin engine with all routes. Everything except
// /health requires a bearer token signed with key.
func NewRouter(store *Store, key []byte, logger *log.Logger) *gin.Engine {
	h := &Handler{store: store, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestID)
	router.GET("/health", h.Health)

	api := router.Group("/", Auth(key))
	api.GET("/lists", h.GetLists)
	api.POST("/lists", h.CreateList)
	api.PUT("/lists/:id", h.UpdateList)
	api.DELETE("/lists/:id", h.DeleteList)
	api.GET("/tasks/:listId", h.GetItems)
	api.POST("/tasks/:listId", h.AddItem)
	return router
}

// requestID echoes the caller's X-Request-Id (or a fresh one) and logs the request.
func (h *Handler) requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Header("X-Request-Id", id)
	c.Next()
	if h.logger != nil {
		h.logger.Printf("%s %s %s -> %d", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetLists(c *gin.Context) {
	lists, err := h.store.Lists(c.Request.Context(), c.GetString(userKey))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *Handler) CreateList(c *gin.Context) {
	request := &createListRequest{}
	if err := c.ShouldBindJSON(request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.store.CreateList(c.Request.Context(), c.GetString(userKey), request.Title)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, InsertResponse{InsertID: id, AffectedRows: 1})
}

// UpdateList replies with insertId 0, as an UPDATE result packet does.
func (h *Handler) UpdateList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	request := &updateListRequest{}
	if err := c.ShouldBindJSON(request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.store.UpdateList(c.Request.Context(), c.GetString(userKey), id, request.Title, request.IsVisible)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, InsertResponse{AffectedRows: 1})
}

func (h *Handler) DeleteList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteList(c.Request.Context(), c.GetString(userKey), id); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, InsertResponse{AffectedRows: 1})
}

func (h *Handler) GetItems(c *gin.Context) {
	listID, ok := parseID(c, "listId")
	if !ok {
		return
	}

	items, err := h.store.Items(c.Request.Context(), c.GetString(userKey), listID)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddItem(c *gin.Context) {
	listID, ok := parseID(c, "listId")
	if !ok {
		return
	}

	request := &addItemRequest{}
	if err := c.ShouldBindJSON(request); err != nil || request.Content == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.store.AddItem(c.Request.Context(), c.GetString(userKey), listID, request.Content, request.Done)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, InsertResponse{InsertID: id, AffectedRows: 1})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	h.internalError(c, err)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Printf("error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
