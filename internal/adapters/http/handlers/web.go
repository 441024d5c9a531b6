package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/adapters/http/dto"
	"github.com/memeforge/memeforge/internal/app"
	"github.com/memeforge/memeforge/internal/ports"
)

// WebHandler serves the HTML meme pages. It fronts the same service as the
// JSON API but renders templates instead of envelopes.
type WebHandler struct {
	service *app.MemeService
	fetcher ports.ImageFetcher
}

// NewWebHandler creates a new web handler.
func NewWebHandler(service *app.MemeService, fetcher ports.ImageFetcher) *WebHandler {
	return &WebHandler{
		service: service,
		fetcher: fetcher,
	}
}

// memePageData feeds the meme.html template.
type memePageData struct {
	ImageURL string
}

// errorPageData feeds the error.html template.
type errorPageData struct {
	Message string
}

// Index handles GET /
// Composites a random meme and renders it.
func (h *WebHandler) Index(c *gin.Context) {
	meme, err := h.service.Generate(c.Request.Context(), app.GenerateInput{})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "meme.html", memePageData{
		ImageURL: path.Join(MemeURLPrefix, filepath.Base(meme.Path)),
	})
}

// CreateForm handles GET /create
// Renders the meme creation form.
func (h *WebHandler) CreateForm(c *gin.Context) {
	c.HTML(http.StatusOK, "meme_form.html", nil)
}

// Create handles POST /create
// Reads the form fields, optionally downloads the source image, and renders
// the composited meme. Failures render the error page; a partial meme is
// never shown.
func (h *WebHandler) Create(c *gin.Context) {
	input := app.GenerateInput{
		Body:   strings.TrimSpace(c.PostForm("body")),
		Author: strings.TrimSpace(c.PostForm("author")),
	}

	if imageURL := strings.TrimSpace(c.PostForm("image_url")); imageURL != "" {
		tmpPath, err := h.fetcher.Fetch(c.Request.Context(), imageURL)
		if err != nil {
			h.renderError(c, err)
			return
		}
		defer os.Remove(tmpPath)

		input.ImagePath = tmpPath
	}

	meme, err := h.service.Generate(c.Request.Context(), input)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "meme.html", memePageData{
		ImageURL: path.Join(MemeURLPrefix, filepath.Base(meme.Path)),
	})
}

// renderError maps the error to a status and renders the error page.
func (h *WebHandler) renderError(c *gin.Context, err error) {
	code := dto.CodeForDomainError(err)

	message := err.Error()
	if code == dto.ErrorCodeInternal {
		message = "something went wrong generating your meme"
	}

	c.HTML(dto.HTTPStatusFromCode(code), "error.html", errorPageData{
		Message: message,
	})
}

// RegisterWebRoutes registers the HTML routes directly on the engine.
func (h *WebHandler) RegisterWebRoutes(engine *gin.Engine) {
	engine.GET("/", h.Index)
	engine.GET("/create", h.CreateForm)
	engine.POST("/create", h.Create)
}
