package routes

import (
	"foodshare/handlers"
	"foodshare/metrics"
	"foodshare/middleware"
	"foodshare/models"

	"github.com/gin-gonic/gin"
)

const (
	pageDenied          = "You cannot access this page"
	delivererInfoDenied = "Error in retrieving deliverer data"
	userInfoDenied      = "Error in retrieving user data"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, limiter *middleware.RateLimiter) {
	// ── Operational ────────────────────────────────────────────────
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ── Pages ──────────────────────────────────────────────────────
	r.Static("/static", h.StaticDir())
	r.GET("/", h.Page("index.html"))
	r.GET("/index.html", h.Page("index.html"))
	r.GET("/admin", h.Page("admin.html"))
	for _, page := range []string{
		"deliverySignUp.html",
		"userSignUp.html",
		"login.html",
		"feedback.html",
		"help.html",
	} {
		r.GET("/"+page, h.Page(page))
	}

	// ── Sign up & login ────────────────────────────────────────────
	credentials := r.Group("/")
	credentials.Use(limiter.Handler())
	{
		credentials.POST("/submit_delivery_form", h.SubmitDelivererForm)
		credentials.POST("/submit_user_form", h.SubmitUserForm)
		credentials.POST("/login", h.Login)
	}

	// ── Public listings & orders ───────────────────────────────────
	r.GET("/get_all_users", h.GetAllUsers)
	r.GET("/get_all_deliverers", h.GetAllDeliverers)
	r.POST("/make_order", h.MakeOrder)

	// ── Identity-gated ─────────────────────────────────────────────
	gated := r.Group("/")
	gated.Use(auth.ResolveIdentity())
	{
		gated.GET("/deliveryProfile.html",
			middleware.RoleRequired(models.RoleDeliverer, pageDenied), h.Page("deliveryProfile.html"))
		gated.GET("/userProfile.html",
			middleware.RoleRequired(models.RoleUser, pageDenied), h.Page("userProfile.html"))

		gated.GET("/get_deliverer_info",
			middleware.RoleRequired(models.RoleDeliverer, delivererInfoDenied), h.GetDelivererInfo)
		gated.GET("/get_user_info",
			middleware.RoleRequired(models.RoleUser, userInfoDenied), h.GetUserInfo)

		gated.POST("/make_comment", h.MakeComment)
	}
}
