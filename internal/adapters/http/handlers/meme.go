package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/adapters/http/dto"
	"github.com/memeforge/memeforge/internal/app"
	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/ports"
)

// MemeURLPrefix is the public path under which generated memes are served.
const MemeURLPrefix = "/memes"

// MemeHandler handles meme generation HTTP endpoints.
type MemeHandler struct {
	service *app.MemeService
	fetcher ports.ImageFetcher
	memeDir string
}

// NewMemeHandler creates a new meme handler. fetcher may be nil, in which
// case requests carrying an image URL are rejected. memeDir is the output
// directory backing the by-id lookup.
func NewMemeHandler(service *app.MemeService, fetcher ports.ImageFetcher, memeDir string) *MemeHandler {
	return &MemeHandler{
		service: service,
		fetcher: fetcher,
		memeDir: memeDir,
	}
}

// GenerateMemeRequest is the JSON request body for meme generation.
// All fields are optional; empty fields fall back to random selection.
// Whitespace-only quote fields are rejected rather than silently treated
// as absent.
type GenerateMemeRequest struct {
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	Body     string `json:"body"     validate:"omitempty,notempty,max=500"`
	Author   string `json:"author"   validate:"omitempty,notempty,max=200"`
}

// GetMemeRequest identifies a previously generated meme by the uuid part
// of its filename.
type GetMemeRequest struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}

// MemeResponse is the HTTP response structure for a generated meme.
type MemeResponse struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

// toMemeResponse converts a domain Meme to an HTTP response.
func toMemeResponse(m domain.Meme) *MemeResponse {
	file := filepath.Base(m.Path)

	return &MemeResponse{
		File: file,
		URL:  path.Join(MemeURLPrefix, file),
	}
}

// GenerateRandom handles GET /api/v1/memes
// Composites a meme from a random local image and a random corpus quote.
func (h *MemeHandler) GenerateRandom(c *gin.Context) {
	meme, err := h.service.Generate(c.Request.Context(), app.GenerateInput{})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemeResponse(meme))
}

// Generate handles POST /api/v1/memes
// Accepts optional overrides for the source image and the quote. An image
// URL is downloaded to a temporary file that is removed once the meme is
// written.
func (h *MemeHandler) Generate(c *gin.Context) {
	var req GenerateMemeRequest

	err := dto.BindAndValidate(c, &req)
	if err != nil {
		fieldErrors := dto.ValidationErrors(err)
		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation,
				"request validation failed",
				fieldErrors,
			).WithTraceID(dto.GetTraceID(c)))

			return
		}

		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid request body",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	input := app.GenerateInput{
		Body:   req.Body,
		Author: req.Author,
	}

	if req.ImageURL != "" {
		if h.fetcher == nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrorCodeBadRequest,
				"image URL downloads are not enabled",
			).WithTraceID(dto.GetTraceID(c)))

			return
		}

		tmpPath, err := h.fetcher.Fetch(c.Request.Context(), req.ImageURL)
		if err != nil {
			dto.HandleError(c, err)
			return
		}
		defer os.Remove(tmpPath)

		input.ImagePath = tmpPath
	}

	meme, err := h.service.Generate(c.Request.Context(), input)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemeResponse(meme))
}

// Get handles GET /api/v1/memes/:id
// Looks up a previously generated meme by the uuid part of its filename.
// The uuid validation doubles as a path traversal guard.
func (h *MemeHandler) Get(c *gin.Context) {
	var req GetMemeRequest

	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid meme id",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	if err := dto.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"request validation failed",
			dto.ValidationErrors(err),
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	file := fmt.Sprintf("meme-%s.jpg", req.ID)
	if _, err := os.Stat(filepath.Join(h.memeDir, file)); err != nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"meme not found",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	c.JSON(http.StatusOK, &MemeResponse{
		File: file,
		URL:  path.Join(MemeURLPrefix, file),
	})
}

// RegisterMemeRoutes registers meme routes on the given router group.
func (h *MemeHandler) RegisterMemeRoutes(rg *gin.RouterGroup) {
	memes := rg.Group("/memes")
	memes.GET("", h.GenerateRandom)
	memes.POST("", h.Generate)
	memes.GET("/:id", h.Get)
}
