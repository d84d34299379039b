package files

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Serve streams an attachment blob by stored filename. The random filename
// is the capability; no session is required. Expired attachments are
// deleted on the spot and answered with a plain 404, since expiry is an
// expected state, not an error.
func Serve(c *gin.Context) {
	attachment, err := services.ServeAttachment(c.Param("filename"))
	if err != nil {
		if errors.Is(err, services.ErrAttachmentNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "File not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to serve file"))
		return
	}

	c.Header("Content-Type", attachment.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", attachment.OriginalName))
	c.File(attachment.Path)
}
