package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/internal/middleware/auth"
	"github.com/Skotchmaster/fraud_reporting/pkg/db"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

type Deps struct {
	DB           *gorm.DB
	AccessSecret []byte
	UserAuth     *AuthHTTP
	AdminAuth    *AuthHTTP
	User         *UserHTTP
	Admin        *AdminHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("ready_error", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	guard := auth.RequireLogin(d.AccessSecret)

	e.POST("/api/user/signup", d.UserAuth.Signup)
	e.POST("/api/user/login", d.UserAuth.Login)
	e.GET("/api/user/refresh-token", d.UserAuth.Refresh)
	e.POST("/api/admin/signup", d.AdminAuth.Signup)
	e.POST("/api/admin/login", d.AdminAuth.Login)
	e.GET("/api/admin/refresh-token", d.AdminAuth.Refresh)
	e.GET("/api/logout/user", d.UserAuth.LogOut)
	e.GET("/api/logout/admin", d.AdminAuth.LogOut)

	e.GET("/api/protected", func(c echo.Context) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Access granted with token", "user": p})
	}, guard)

	user := e.Group("/api/user", guard, auth.RequireRole(tokens.RoleUser))
	user.GET("/profile", d.User.Profile)
	user.PUT("/profile", d.User.UpdateProfile)
	user.POST("/form-transaction", d.User.SubmitTransaction)
	user.GET("/transactions", d.User.ListTransactions)
	user.GET("/download-transactions", d.User.DownloadTransactions)
	user.GET("/dashboard", d.User.Dashboard)

	admin := e.Group("/api/admin", guard, auth.RequireRole(tokens.RoleAdmin))
	admin.GET("/panel", d.Admin.Panel)
	admin.GET("/AllUsers", d.Admin.AllUsers)
	admin.GET("/search-user", d.Admin.SearchUsers)
	admin.GET("/advanced-transactions-filter", d.Admin.FilterTransactions)
	admin.GET("/statistics-summary", d.Admin.Statistics)
	admin.GET("/transactions/search", d.Admin.SearchTransactions)
}
