package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/imagestore"
)

// ImageInfo describes one loaded image.
type ImageInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Current bool   `json:"current"`
}

// StateResponse is the edit state of the current image.
type StateResponse struct {
	ImageInfo
	Filters  filters.Stack               `json:"filters"`
	Filter   string                      `json:"filter"`
	Rotation int                         `json:"rotation"`
	FlipH    bool                        `json:"flip_horizontal"`
	FlipV    bool                        `json:"flip_vertical"`
	Texts    []imagestore.TextAnnotation `json:"texts"`
}

// CropRequest selects a region in a display of the given size.
type CropRequest struct {
	Display geom.Size  `json:"display"`
	Start   geom.Point `json:"start"`
	End     geom.Point `json:"end"`
}

// TextRequest adds a text annotation. Position is in native pixels and
// optional; without it the text is centred.
type TextRequest struct {
	Content  string       `json:"content" binding:"required"`
	Style    *fonts.Style `json:"style"`
	Position *geom.Point  `json:"position"`
}

var validImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

func info(e *imagestore.Entry, current bool) ImageInfo {
	sz := e.Size()
	return ImageInfo{ID: e.ID, Name: e.Name, Width: int(sz.W), Height: int(sz.H), Current: current}
}

func (h *Handler) requireImage(c *gin.Context) {
	h.mu.Lock()
	cur := h.ed.Current()
	h.mu.Unlock()
	if cur == nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": editor.ErrNoImage.Error()})
		return
	}
	c.Next()
}

// UploadImage decodes the multipart field "image" into a new entry.
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image file provided"})
		return
	}
	if !validImageTypes[strings.ToLower(filepath.Ext(file.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}
	f, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	h.mu.Lock()
	entry, err := h.ed.Decode(file.Filename, f)
	current := err == nil && h.ed.Current() == entry
	h.mu.Unlock()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, info(entry, current))
}

// ListImages returns every loaded image in order.
func (h *Handler) ListImages(c *gin.Context) {
	h.mu.Lock()
	entries := h.ed.Store().Entries()
	cur := h.ed.Current()
	h.mu.Unlock()
	out := make([]ImageInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, info(e, e == cur))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) notFound(c *gin.Context, err error) {
	if errors.Is(err, imagestore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// SelectImage makes :id current.
func (h *Handler) SelectImage(c *gin.Context) {
	h.mu.Lock()
	err := h.ed.Select(c.Param("id"))
	h.mu.Unlock()
	if err != nil {
		h.notFound(c, err)
		return
	}
	h.State(c)
}

// DeleteImage drops :id.
func (h *Handler) DeleteImage(c *gin.Context) {
	h.mu.Lock()
	err := h.ed.Remove(c.Param("id"))
	h.mu.Unlock()
	if err != nil {
		h.notFound(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

// Thumbnail serves a square PNG preview. The edge defaults to 96 pixels.
func (h *Handler) Thumbnail(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "96"))
	if err != nil || size <= 0 || size > 1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}
	h.mu.Lock()
	img, err := h.ed.Store().Thumbnail(c.Param("id"), size)
	h.mu.Unlock()
	if err != nil {
		h.notFound(c, err)
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// State reports the current image's edit state.
func (h *Handler) State(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := h.ed.Current()
	if cur == nil {
		c.JSON(http.StatusConflict, gin.H{"error": editor.ErrNoImage.Error()})
		return
	}
	texts := cur.Texts
	if texts == nil {
		texts = []imagestore.TextAnnotation{}
	}
	c.JSON(http.StatusOK, StateResponse{
		ImageInfo: info(cur, true),
		Filters:   cur.Filters,
		Filter:    h.ed.Surface().Filter,
		Rotation:  cur.Rotation,
		FlipH:     cur.FlipH,
		FlipV:     cur.FlipV,
		Texts:     texts,
	})
}

// SetFilters applies a partial map of filter values. Values are clamped.
func (h *Handler) SetFilters(c *gin.Context) {
	var req map[string]float64
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next := filters.Default()
	h.mu.Lock()
	if cur := h.ed.Current(); cur != nil {
		next = cur.Filters
	}
	for name, v := range req {
		if err := next.Set(name, v); err != nil {
			h.mu.Unlock()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	h.ed.SetFilters(next)
	h.mu.Unlock()
	h.State(c)
}

// Rotate turns the image; :dir is left or right.
func (h *Handler) Rotate(c *gin.Context) {
	h.mu.Lock()
	switch c.Param("dir") {
	case "left":
		h.ed.RotateLeft()
	case "right":
		h.ed.RotateRight()
	default:
		h.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be left or right"})
		return
	}
	h.mu.Unlock()
	h.State(c)
}

// Flip mirrors the image; :axis is horizontal or vertical.
func (h *Handler) Flip(c *gin.Context) {
	h.mu.Lock()
	switch c.Param("axis") {
	case "horizontal":
		h.ed.FlipHorizontal()
	case "vertical":
		h.ed.FlipVertical()
	default:
		h.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "axis must be horizontal or vertical"})
		return
	}
	h.mu.Unlock()
	h.State(c)
}

// Reset restores the current image's defaults.
func (h *Handler) Reset(c *gin.Context) {
	h.mu.Lock()
	h.ed.Reset()
	h.mu.Unlock()
	h.State(c)
}

// Crop runs a crop session over the requested display size. An empty
// display means native size.
func (h *Handler) Crop(c *gin.Context) {
	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.mu.Lock()
	h.ed.SetDisplaySize(req.Display)
	h.ed.StartCrop()
	h.ed.SetCropRegion(req.Start, req.End)
	ok, err := h.ed.ApplyCrop()
	h.ed.SetDisplaySize(geom.Size{})
	h.mu.Unlock()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": editor.ErrNoImage.Error()})
		return
	}
	h.State(c)
}

// AddText adds a text annotation to the current image.
func (h *Handler) AddText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Style != nil {
		if _, err := fonts.ParseColor(req.Style.Color); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	h.mu.Lock()
	h.ed.BlurText()
	if req.Style != nil {
		h.ed.Restyle(*req.Style)
	}
	id, ok := h.ed.AddText(req.Content)
	if ok && req.Position != nil {
		h.ed.PlaceText(id, *req.Position)
	}
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is empty"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// DeleteText removes a text annotation.
func (h *Handler) DeleteText(c *gin.Context) {
	h.mu.Lock()
	ok := h.ed.DeleteText(c.Param("id"))
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "text not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Export streams the rendered PNG as an attachment.
func (h *Handler) Export(c *gin.Context) {
	var buf bytes.Buffer
	h.mu.Lock()
	err := h.ed.Export(&buf)
	h.mu.Unlock()
	if errors.Is(err, editor.ErrNoImage) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+editor.ExportName+`"`)
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
