package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/adapters/http/dto"
	"github.com/memeforge/memeforge/internal/app"
	"github.com/memeforge/memeforge/internal/domain"
)

// cursorFieldIndex is the sort field encoded in quote pagination cursors.
// The corpus is a stable concatenation of the configured files, so the
// absolute index is a valid cursor position.
const cursorFieldIndex = "index"

// QuoteHandler handles quote corpus HTTP endpoints.
type QuoteHandler struct {
	service    *app.MemeService
	quoteFiles []string
}

// NewQuoteHandler creates a new quote handler over the configured corpus files.
func NewQuoteHandler(service *app.MemeService, quoteFiles []string) *QuoteHandler {
	return &QuoteHandler{
		service:    service,
		quoteFiles: quoteFiles,
	}
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	Body   string `json:"body"`
	Author string `json:"author"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Body:   q.Body,
		Author: q.Author,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns the parsed quote corpus as a paginated list. The corpus is
// re-parsed per request; corpora are small and live on local disk.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var page dto.PaginationRequest

	err := dto.BindQueryAndValidate(c, &page)
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("limit", "must be between 1 and 100"))
		return
	}

	start := 0

	cursor, err := page.DecodeCursor()

	switch {
	case err == nil:
		last, convErr := strconv.Atoi(cursor.Value)
		if convErr != nil || cursor.Field != cursorFieldIndex || last < 0 {
			dto.HandleError(c, domain.NewValidationError("cursor", "malformed pagination cursor"))
			return
		}

		start = last + 1
	case errors.Is(err, dto.ErrNoCursor):
		// First page.
	default:
		dto.HandleError(c, domain.NewValidationError("cursor", "malformed pagination cursor"))
		return
	}

	quotes, err := h.service.IngestAll(c.Request.Context(), h.quoteFiles)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	limit := page.GetLimit()

	if start > len(quotes) {
		start = len(quotes)
	}

	// One extra item lets NewPaginatedResponse detect a further page.
	end := start + limit + 1
	if end > len(quotes) {
		end = len(quotes)
	}

	items := make([]QuoteResponse, 0, end-start)
	for _, q := range quotes[start:end] {
		items = append(items, toQuoteResponse(q))
	}

	// The builder only runs for a full page, whose last item sits at
	// absolute index start+limit-1.
	resp := dto.NewPaginatedResponse(items, limit, func(QuoteResponse) *dto.CursorData {
		return dto.NewCursor(cursorFieldIndex, strconv.Itoa(start+limit-1), "")
	})

	c.JSON(http.StatusOK, resp)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
}
