package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds JSON and CSV request bodies.
const maxBodyBytes = 1 << 20

// errBadRequest marks errors caused by a malformed request.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// bindJSON decodes the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("malformed JSON body: %v", err)
	}
	return nil
}

// queryBool reads a boolean query parameter, defaulting to false.
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return err == nil && v
}

// pathParam returns a sanitized path parameter.
func pathParam(c *gin.Context, name string) string {
	return sanitizeInput(c.Param(name))
}
