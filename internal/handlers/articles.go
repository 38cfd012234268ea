package handlers

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"articles-api/internal/events"
	authmw "articles-api/internal/middleware/auth"
	"articles-api/internal/models"
	"articles-api/internal/util"
)

type ArticleHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type articleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
}

func (r articleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.SourceURL, is.URL),
	)
}

type articlePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	SourceURL   *string `json:"source_url"`
}

func (r articlePatch) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceURL, is.URL),
	)
}

func (h *ArticleHandler) Create(c echo.Context) error {
	var req articleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := authmw.CurrentUser(c)

	article := models.Article{
		Title:       req.Title,
		Description: req.Description,
		SourceURL:   req.SourceURL,
		UserID:      owner.ID,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&article).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, article.ID, map[string]any{
		"type":       "article_created",
		"article_id": article.ID,
		"user_id":    owner.ID,
		"title":      article.Title,
	})

	return c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Article{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Article
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid article id")
	}

	var article models.Article
	if err := h.DB.WithContext(c.Request().Context()).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid article id")
	}

	var req articlePatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var article models.Article
	if err := h.DB.WithContext(ctx).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if authmw.CurrentUser(c).ID != article.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "only the owner can update the article")
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Description != nil {
		article.Description = *req.Description
	}
	if req.SourceURL != nil {
		article.SourceURL = *req.SourceURL
	}

	if err := h.DB.WithContext(ctx).Save(&article).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, article.ID, map[string]any{
		"type":       "article_updated",
		"article_id": article.ID,
		"user_id":    article.UserID,
	})

	return c.JSON(http.StatusAccepted, article)
}

func (h *ArticleHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid article id")
	}

	ctx := c.Request().Context()

	var article models.Article
	if err := h.DB.WithContext(ctx).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if authmw.CurrentUser(c).ID != article.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "only the owner can delete the article")
	}

	if err := h.DB.WithContext(ctx).Delete(&article).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, article.ID, map[string]any{
		"type":       "article_deleted",
		"article_id": article.ID,
		"user_id":    article.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "article deleted"})
}

func (h *ArticleHandler) publish(c echo.Context, key uint, event map[string]any) {
	publish(c, h.Producer, events.TopicArticleEvents, key, event)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
