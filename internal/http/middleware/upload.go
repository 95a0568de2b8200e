package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"uploadapi/internal/image"
	"uploadapi/internal/storage"
	"uploadapi/internal/upload"
)

// NormalizedBodyKey is the context-locals key holding the normalized
// request body produced by FileUpload.
const NormalizedBodyKey = "normalized_body"

// uploadErrorPayload is the response shape for rejected uploads. It keeps
// the flat success/message fields clients display, alongside the request
// ID and machine code the rest of the API uses.
type uploadErrorPayload struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// FileUpload intercepts multipart requests: every file is validated,
// persisted and substituted into the request body, and scalar form values
// are coerced to their JSON types. Handlers behind this middleware read
// the result with NormalizedBody and never touch multipart themselves.
//
// Non-multipart requests pass through untouched. Stored images above the
// optimizer threshold are re-encoded in the background.
func FileUpload(ing *upload.Ingestor, opt *image.Optimizer, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			return writeUploadError(c, fiber.StatusBadRequest, "MALFORMED_FORM", "cannot parse multipart form")
		}

		files, err := ing.Ingest(c.UserContext(), form, c.Query("folder"))
		if err != nil {
			return rejectUpload(c, err, log)
		}

		body := make(map[string]any, len(form.Value))
		for key, vals := range form.Value {
			switch len(vals) {
			case 0:
			case 1:
				body[key] = vals[0]
			default:
				many := make([]any, len(vals))
				for i, v := range vals {
					many[i] = v
				}
				body[key] = many
			}
		}

		upload.Normalize(body, files, log)
		c.Locals(NormalizedBodyKey, body)

		for _, f := range files {
			if f.Bucket == storage.BucketImages {
				opt.OptimizeAsync(f.DiskPath)
			}
		}

		return c.Next()
	}
}

// NormalizedBody returns the body stored by FileUpload, or nil when the
// request was not multipart.
func NormalizedBody(c *fiber.Ctx) map[string]any {
	if v, ok := c.Locals(NormalizedBodyKey).(map[string]any); ok {
		return v
	}
	return nil
}

// rejectUpload translates ingestion failures into client responses. The
// typed validation errors become 400s with a stable code; anything else is
// an internal failure.
func rejectUpload(c *fiber.Ctx, err error, log *slog.Logger) error {
	var (
		unsupported *upload.UnsupportedMediaTypeError
		tooLarge    *upload.FileTooLargeError
		tooMany     *upload.TooManyFilesError
		unknown     *upload.UnknownFieldError
	)
	switch {
	case errors.As(err, &unsupported):
		return writeUploadError(c, fiber.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", unsupported.Error())
	case errors.As(err, &tooLarge):
		return writeUploadError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", tooLarge.Error())
	case errors.As(err, &tooMany):
		return writeUploadError(c, fiber.StatusBadRequest, "TOO_MANY_FILES", tooMany.Error())
	case errors.As(err, &unknown):
		return writeUploadError(c, fiber.StatusBadRequest, "UNKNOWN_UPLOAD_FIELD", unknown.Error())
	default:
		log.Error("upload ingestion failed", "error", err)
		return writeUploadError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "file upload failed")
	}
}

func writeUploadError(c *fiber.Ctx, status int, code, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(status).JSON(uploadErrorPayload{
		Success:   false,
		RequestID: rid,
		Code:      code,
		Message:   message,
	})
}
