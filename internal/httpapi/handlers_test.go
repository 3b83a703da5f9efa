package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/geom"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *editor.Editor) {
	t.Helper()
	ed := editor.New(editor.WithClipboard(
		func(image.Image) error { return nil },
		func() (image.Image, error) { return nil, nil },
	))
	return InitRoutes(NewHandler(ed)), ed
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r http.Handler, name string, w, h int) ImageInfo {
	t.Helper()
	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(w, h, color.NRGBA{B: 255, A: 255}), imaging.PNG))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(png.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out ImageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func state(t *testing.T, w *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestNoImageConflict(t *testing.T) {
	r, _ := newRouter(t)
	for _, path := range []string{"/current", "/current/export.png"} {
		w := do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusConflict, w.Code, path)
		assert.JSONEq(t, `{"error":"no image selected"}`, w.Body.String())
	}
	w := do(r, http.MethodPost, "/current/rotate/right", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUploadListSelect(t *testing.T) {
	r, _ := newRouter(t)
	a := upload(t, r, "a.png", 8, 4)
	b := upload(t, r, "b.png", 2, 2)
	assert.True(t, a.Current)
	assert.False(t, b.Current)
	assert.Equal(t, 8, a.Width)

	w := do(r, http.MethodGet, "/images", nil)
	var list []ImageInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a.png", list[0].Name)

	s := state(t, do(r, http.MethodPut, "/images/"+b.ID+"/select", nil))
	assert.Equal(t, b.ID, s.ID)

	w = do(r, http.MethodPut, "/images/nope/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/images/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodDelete, "/images/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsBadType(t *testing.T) {
	r, _ := newRouter(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "notes.txt")
	_, _ = part.Write([]byte("hello"))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFiltersTransformsReset(t *testing.T) {
	r, _ := newRouter(t)
	upload(t, r, "a.png", 800, 600)

	s := state(t, do(r, http.MethodPut, "/current/filters", map[string]float64{"brightness": 150, "blur": 5}))
	assert.Equal(t, 150.0, s.Filters.Brightness)
	assert.Contains(t, s.Filter, "brightness(150%)")
	assert.Less(t, bytes.Index([]byte(s.Filter), []byte("brightness")), bytes.Index([]byte(s.Filter), []byte("blur(5px)")))

	s = state(t, do(r, http.MethodPut, "/current/filters", map[string]float64{"sepia": 500}))
	assert.Equal(t, 100.0, s.Filters.Sepia)
	assert.Equal(t, 150.0, s.Filters.Brightness)

	w := do(r, http.MethodPut, "/current/filters", map[string]float64{"sharpen": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s = state(t, do(r, http.MethodPost, "/current/rotate/right", nil))
	assert.Equal(t, 90, s.Rotation)
	s = state(t, do(r, http.MethodPost, "/current/flip/vertical", nil))
	assert.True(t, s.FlipV)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/current/flip/diagonal", nil).Code)

	s = state(t, do(r, http.MethodPost, "/current/reset", nil))
	assert.Zero(t, s.Rotation)
	assert.False(t, s.FlipV)
	assert.Equal(t, 100.0, s.Filters.Brightness)
}

func TestCropOverDisplay(t *testing.T) {
	r, _ := newRouter(t)
	upload(t, r, "big.png", 1000, 1000)

	s := state(t, do(r, http.MethodPost, "/current/crop", CropRequest{
		Display: geomSize(400, 400),
		Start:   geomPt(40, 40),
		End:     geomPt(410, 410),
	}))
	assert.Equal(t, 925, s.Width)
	assert.Equal(t, 925, s.Height)

	s = state(t, do(r, http.MethodPost, "/current/crop", CropRequest{Start: geomPt(5, 5), End: geomPt(5, 9)}))
	assert.Zero(t, s.Width)
	assert.Equal(t, 4, s.Height)

	w := do(r, http.MethodGet, "/current/export.png", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTexts(t *testing.T) {
	r, _ := newRouter(t)
	upload(t, r, "a.png", 200, 100)

	w := do(r, http.MethodPost, "/current/texts", map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/current/texts", map[string]any{
		"content":  "hello",
		"style":    map[string]any{"color": "#ff0000", "size": 30, "family": "monospace", "weight": "bold"},
		"position": map[string]any{"x": 10, "y": 50},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	s := state(t, do(r, http.MethodGet, "/current", nil))
	require.Len(t, s.Texts, 1)
	assert.Equal(t, created.ID, s.Texts[0].ID)
	assert.Equal(t, 10.0, s.Texts[0].Position.X)
	assert.Equal(t, 50.0, s.Texts[0].Position.Y)
	assert.Equal(t, "#ff0000", s.Texts[0].Style.Color)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/current/texts/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/current/texts/"+created.ID, nil).Code)
}

func TestExport(t *testing.T) {
	r, _ := newRouter(t)
	upload(t, r, "a.png", 12, 7)
	w := do(r, http.MethodGet, "/current/export.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="edited-image.png"`, w.Header().Get("Content-Disposition"))
	img, err := imaging.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
}

func TestThumbnail(t *testing.T) {
	r, _ := newRouter(t)
	a := upload(t, r, "a.png", 300, 100)
	w := do(r, http.MethodGet, "/images/"+a.ID+"/thumbnail?size=32", nil)
	require.Equal(t, http.StatusOK, w.Code)
	img, err := imaging.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/images/"+a.ID+"/thumbnail?size=x", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/images/zzz/thumbnail", nil).Code)
}

func geomSize(w, h float64) geom.Size { return geom.Size{W: w, H: h} }

func geomPt(x, y float64) geom.Point { return geom.Pt(x, y) }
