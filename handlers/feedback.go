package handlers

import (
	"errors"
	"net/http"

	"foodshare/metrics"
	"foodshare/middleware"
	"foodshare/models"
	"foodshare/session"

	"github.com/gin-gonic/gin"
)

// GetAllUsers lists user names for the feedback page
func (h *Handler) GetAllUsers(c *gin.Context) {
	h.listNames(c, models.RoleUser)
}

// GetAllDeliverers lists deliverer names for the feedback page
func (h *Handler) GetAllDeliverers(c *gin.Context) {
	h.listNames(c, models.RoleDeliverer)
}

func (h *Handler) listNames(c *gin.Context, role models.Role) {
	names, err := h.directory.Names(c.Request.Context(), role)
	if err != nil {
		c.String(http.StatusBadRequest, "No user found")
		return
	}
	c.JSON(http.StatusOK, names)
}

// MakeComment appends a rating to the account named by username. The rater
// must present exactly one identity cookie; a request holding both the user
// and the deliverer cookie is refused instead of guessing a role.
func (h *Handler) MakeComment(c *gin.Context) {
	rater, _, err := middleware.GetIdentities(c).Single()
	if err != nil {
		metrics.RecordFeedback("unauthenticated")
		if errors.Is(err, session.ErrAmbiguousIdentity) {
			c.String(http.StatusBadRequest, "Sign in with only one account to make a comment")
			return
		}
		c.String(http.StatusBadRequest, "You have to be logged in to make a comment")
		return
	}

	fields, err := formFields(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedForm)
		return
	}

	err = h.feedback.Submit(c.Request.Context(), rater, fields["username"], fields["rating"], fields["msg"])
	metrics.RecordFeedback(outcome(err))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Success")
}

// MakeOrder accepts an order submission. Orders are not processed yet.
func (h *Handler) MakeOrder(c *gin.Context) {
	c.String(http.StatusOK, "Nothing")
}
