package matches

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coachdesk/playlog/internal/ingest"
	"github.com/coachdesk/playlog/internal/models"
)

const maxUploadBytes = 20 << 20

// readPlaysUpload pulls the "file" part of the multipart form, runs it through
// the ingestion pipeline and returns the built plays. On failure it writes the
// error response itself and returns ok=false.
func readPlaysUpload(c *gin.Context) ([]models.Play, []ingest.RowWarning, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	var src ingest.RowSource
	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		src, err = ingest.NewXLSXSource(raw)
	} else {
		var text string
		if text, err = ingest.DecodeText(raw); err == nil {
			src, err = ingest.NewReader(text)
		}
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	hm, err := ingest.ReconcileHeaders(src.Fields())
	if err != nil {
		var hve *ingest.HeaderValidationError
		if errors.As(err, &hve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missing": hve.Missing})
			return nil, nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	plays, warnings, err := ingest.BuildPlays(src, hm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return plays, warnings, true
}
