package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"webscout/internal/fetcher"
	"webscout/internal/model"
)

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// Fetcher downloads and extracts pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.FetchResult
}

func searchHandler(c *fiber.Ctx) error {
	var reqBody SearchRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	query := strings.TrimSpace(reqBody.Query)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'query'",
		})
	}

	searcher := c.Locals("searcher").(Searcher)
	results := searcher.Search(c.UserContext(), query)
	if reqBody.Limit > 0 && len(results) > reqBody.Limit {
		results = results[:reqBody.Limit]
	}
	if results == nil {
		results = []model.SearchResult{}
	}

	return c.JSON(SearchResponse{Success: true, Data: results})
}

func fetchHandler(c *fiber.Ctx) error {
	var reqBody FetchRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	f := c.Locals("fetcher").(Fetcher)
	res := f.Fetch(c.UserContext(), reqBody.URL)
	if !res.Success {
		// Validation failures are the caller's fault; everything else is upstream.
		status := fiber.StatusBadGateway
		code := "FETCH_FAILED"
		if res.Error == fetcher.MsgEmptyURL || res.Error == fetcher.MsgInvalidURL {
			status = fiber.StatusBadRequest
			code = "BAD_REQUEST"
		}
		return c.Status(status).JSON(ErrorResponse{
			Success: false,
			Code:    code,
			Error:   res.Error,
		})
	}

	return c.JSON(res)
}
