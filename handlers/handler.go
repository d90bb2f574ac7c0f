package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"foodshare/services"
	"foodshare/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP layer
type Options struct {
	CookieSecure bool
	WebRoot      string
}

// Handler serves the HTTP API. Every method writes exactly one response.
type Handler struct {
	registration *services.RegistrationService
	login        *services.SessionService
	feedback     *services.FeedbackService
	directory    *services.DirectoryService
	store        Pinger
	opts         Options
	log          *logrus.Logger
}

func New(
	registration *services.RegistrationService,
	login *services.SessionService,
	feedback *services.FeedbackService,
	directory *services.DirectoryService,
	store Pinger,
	opts Options,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		registration: registration,
		login:        login,
		feedback:     feedback,
		directory:    directory,
		store:        store,
		opts:         opts,
		log:          log,
	}
}

// userMessages are the texts shown for each failure kind
var userMessages = []struct {
	err error
	msg string
}{
	{services.ErrNameTaken, "Name already exists!"},
	{services.ErrInvalidCredentials, "Error: Incorrect name / password"},
	{services.ErrUnauthenticated, "You have to be logged in to make a comment"},
	{services.ErrTargetNotFound, "Not found, couldn't make comment"},
}

const genericFailure = "Something went wrong, please try again"

// writeError turns a service error into a terse 400. Store failures are
// already logged by the service and are never described to the caller.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.String(http.StatusBadRequest, verr.Error())
		return
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			c.String(http.StatusBadRequest, m.msg)
			return
		}
	}
	if !errors.Is(err, services.ErrStoreFailure) {
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled error")
	}
	c.String(http.StatusBadRequest, genericFailure)
}

// writeViolations renders every violation as an HTML paragraph
func writeViolations(c *gin.Context, violations []validation.Violation) {
	var b strings.Builder
	b.WriteString("<p>Errors:</p>")
	for _, v := range violations {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(v.Message))
		b.WriteString("</p>")
	}
	c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(b.String()))
}

// formFields flattens a urlencoded, multipart or JSON body into strings
func formFields(c *gin.Context) (validation.Fields, error) {
	fields := validation.Fields{}

	if c.ContentType() == binding.MIMEJSON {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			fields[k] = stringify(v)
		}
		return fields, nil
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, services.ErrStoreFailure):
		return "store_failure"
	default:
		return "rejected"
	}
}
