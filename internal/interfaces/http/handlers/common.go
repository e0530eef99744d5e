// Package handlers implements the REST API surface: statistical
// rollups, victim listings, group profiles, ransom-note and decryptor
// feeds, derived indicators, and negotiation views. Handlers stay
// thin; every computation lives in the application and domain layers.
package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/common"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// DataSource loads the record snapshots the handlers compute over.
// *serving.Source satisfies it.
type DataSource interface {
	Victims(ctx context.Context) ([]threat.Victim, error)
	Groups(ctx context.Context) ([]threat.GroupProfile, error)
	Notes(ctx context.Context) ([]threat.RansomNote, error)
	Decryptors(ctx context.Context) ([]threat.Decryptor, error)
	Chats(ctx context.Context) ([]threat.NegotiationChat, error)
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data))
}

// respondError maps AppError codes to status codes. Anything that is
// not an AppError is masked as an internal error.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.New(errors.ErrCodeInternal, "internal server error")
	}
	status := appErr.HTTPStatus()
	msg := appErr.Message
	if status >= 500 {
		msg = "internal server error"
	}
	c.JSON(status, common.NewErrorResponse(string(appErr.Code), msg))
}

// queryInt parses an integer query parameter with a fallback default.
// A malformed value is a validation error, not a silent default.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.CodeInvalidParam, name+" must be an integer").
			WithDetail(name + "=" + raw)
	}
	return v, nil
}
