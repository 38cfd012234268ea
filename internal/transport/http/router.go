package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"articles-api/internal/handlers"
	authmw "articles-api/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	Auth           *authmw.Middleware
	UserHandler    *handlers.UserHandler
	ArticleHandler *handlers.ArticleHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	users := v1.Group("/users")

	users.POST("/signup", d.UserHandler.Signup)
	users.POST("/login", d.UserHandler.Login)
	users.GET("/logged", d.UserHandler.Logged, d.Auth.RequireUser)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Update, d.Auth.RequireUser)
	users.DELETE("/:id", d.UserHandler.Delete, d.Auth.RequireUser)

	articles := v1.Group("/articles")

	articles.POST("", d.ArticleHandler.Create, d.Auth.RequireUser)
	articles.GET("", d.ArticleHandler.List)
	articles.GET("/search", d.SearchHandler.Search)
	articles.GET("/:id", d.ArticleHandler.Get)
	articles.PUT("/:id", d.ArticleHandler.Update, d.Auth.RequireUser)
	articles.DELETE("/:id", d.ArticleHandler.Delete, d.Auth.RequireUser)
}
