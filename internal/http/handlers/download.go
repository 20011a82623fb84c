package handlers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/document"
)

// attachmentDownloader sends the generated file as the response body with
// Content-Disposition: attachment. Nothing is written until Save is called,
// so a failed export can still respond with an error.
type attachmentDownloader struct {
	c       *gin.Context
	written bool
}

func (d *attachmentDownloader) Save(ctx context.Context, f document.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.written {
		return fmt.Errorf("download %s: response already written", f.Name)
	}
	d.written = true
	d.c.Header("Content-Disposition", contentDisposition(f.Name))
	d.c.Header("Content-Length", strconv.Itoa(len(f.Data)))
	d.c.Data(http.StatusOK, f.ContentType, f.Data)
	return nil
}

// contentDisposition encodes name per RFC 6266 so Cyrillic weld numbers
// survive in the saved file name.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return `attachment; filename="download"`
}
