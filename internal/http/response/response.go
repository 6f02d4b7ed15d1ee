package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snomedcore/ingestion-core/internal/platform/apierr"
)

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ProblemDetails is the body used for 404/409 responses (§6.3): a minimal
// subset of RFC 7807.
type ProblemDetails struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func RespondProblem(c *gin.Context, status int, title string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.JSON(status, ProblemDetails{
		Title:  title,
		Detail: detail,
		Status: status,
	})
}

// RespondAPIError translates the boundary's single error shape,
// apierr.Error, into a Problem-Details body. It is the only place a
// controller-layer error is unwrapped into an HTTP status.
func RespondAPIError(c *gin.Context, title string, apiErr *apierr.Error) {
	if apiErr == nil {
		RespondProblem(c, http.StatusInternalServerError, title, nil)
		return
	}
	RespondProblem(c, apiErr.Status, title, apiErr)
}
