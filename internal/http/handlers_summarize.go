package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sumbot/internal/apperr"
	"sumbot/internal/metrics"
	"sumbot/internal/services"
)

// statusForKind maps the error taxonomy onto HTTP statuses:
// caller-input kinds get 400, upstream fetch/AI/search failures 502,
// and configuration or history problems 500.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput,
		apperr.KindUnsupportedFormat,
		apperr.KindInvalidCredentialFormat,
		apperr.KindExtractionFailed,
		apperr.KindExtractionEmpty:
		return fiber.StatusBadRequest
	case apperr.KindFetchFailed,
		apperr.KindSummaryFailed,
		apperr.KindFollowUpFailed,
		apperr.KindSearchFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	return c.Status(statusForKind(kind)).JSON(ErrorResponse{
		Success: false,
		Code:    string(kind),
		Error:   err.Error(),
	})
}

func summarizeURLHandler(svc services.SummarizeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqBody URLSummarizeRequest
		if err := c.BodyParser(&reqBody); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    string(apperr.KindInvalidInput),
				Error:   "Bad request, malformed JSON",
			})
		}

		if strings.TrimSpace(reqBody.URL) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    string(apperr.KindInvalidInput),
				Error:   "Missing required field 'url'",
			})
		}

		maxLength := 0
		if reqBody.MaxLength != nil && *reqBody.MaxLength > 0 {
			maxLength = *reqBody.MaxLength
		}

		result, err := svc.SummarizeURL(c.Context(), &services.URLRequest{
			URL:       reqBody.URL,
			APIKey:    reqBody.APIKey,
			Tags:      reqBody.Tags,
			MaxLength: maxLength,
		})
		metrics.RecordSummarize("url", err == nil)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(URLSummarizeResponse{
			Summary:   result.Summary,
			SourceURL: result.SourceURL,
		})
	}
}

func summarizeFileHandler(svc services.SummarizeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    string(apperr.KindInvalidInput),
				Error:   "Missing required file field 'file'",
			})
		}

		f, err := fileHeader.Open()
		if err != nil {
			return errorJSON(c, apperr.Wrap(apperr.KindInvalidInput, err, "无法读取上传文件"))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return errorJSON(c, apperr.Wrap(apperr.KindInvalidInput, err, "无法读取上传文件"))
		}

		result, err := svc.SummarizeFile(c.Context(), &services.FileRequest{
			Filename: fileHeader.Filename,
			Data:     data,
			APIKey:   c.FormValue("api_key"),
		})
		metrics.RecordSummarize("file", err == nil)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(FileSummarizeResponse{
			Summary:           result.Summary,
			FollowUpQuestions: result.FollowUpQuestions,
		})
	}
}

func summarizeSearchHandler(svc services.SummarizeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqBody SearchSummarizeRequest
		if err := c.BodyParser(&reqBody); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    string(apperr.KindInvalidInput),
				Error:   "Bad request, malformed JSON",
			})
		}

		if strings.TrimSpace(reqBody.Query) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    string(apperr.KindInvalidInput),
				Error:   "Missing required field 'query'",
			})
		}

		maxResults := 0
		if reqBody.MaxResults != nil && *reqBody.MaxResults > 0 {
			maxResults = *reqBody.MaxResults
		}

		result, err := svc.SummarizeSearch(c.Context(), &services.SearchRequest{
			Query:      reqBody.Query,
			MaxResults: maxResults,
		})
		metrics.RecordSummarize("search", err == nil)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(SearchSummarizeResponse{
			Summary: result.Summary,
			Sources: result.Sources,
		})
	}
}
