package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"foodshare/metrics"
	"foodshare/middleware"
	"foodshare/models"
	"foodshare/services"

	"github.com/gin-gonic/gin"
)

const malformedForm = "Malformed form submission"

// SubmitDelivererForm handles the deliverer sign up form
func (h *Handler) SubmitDelivererForm(c *gin.Context) {
	h.register(c, models.RoleDeliverer)
}

// SubmitUserForm handles the user sign up form
func (h *Handler) SubmitUserForm(c *gin.Context) {
	h.register(c, models.RoleUser)
}

func (h *Handler) register(c *gin.Context, role models.Role) {
	fields, err := formFields(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedForm)
		return
	}

	_, err = h.registration.Register(c.Request.Context(), role, fields)
	metrics.RecordRegistration(string(role), outcome(err))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeViolations(c, verr.Violations)
			return
		}
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Login checks {name, password, isDeliverer} and sets the role's identity
// cookie. A cookie already held for the other role is left alone.
func (h *Handler) Login(c *gin.Context) {
	fields, err := formFields(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedForm)
		return
	}

	role := models.RoleUser
	if isDeliverer, _ := strconv.ParseBool(fields["isDeliverer"]); isDeliverer {
		role = models.RoleDeliverer
	}

	ticket, err := h.login.Login(c.Request.Context(), role, fields["name"], fields["password"])
	metrics.RecordLogin(string(role), outcome(err))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			err = services.ErrStoreFailure
		}
		h.writeError(c, err)
		return
	}

	http.SetCookie(c.Writer, ticket.Cookie(h.opts.CookieSecure))
	if role == models.RoleDeliverer {
		c.String(http.StatusOK, "Deliverer Success")
		return
	}
	c.String(http.StatusOK, "Successful Login")
}

// GetDelivererInfo returns the logged in deliverer's account document
func (h *Handler) GetDelivererInfo(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetAccount(c, models.RoleDeliverer))
}

// GetUserInfo returns the logged in user's account document
func (h *Handler) GetUserInfo(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetAccount(c, models.RoleUser))
}
