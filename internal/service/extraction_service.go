package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/observability"
	"github.com/noah-isme/correcteur-api/pkg/ai"
)

const pdfMimeType = "application/pdf"

var (
	// ErrFileRequired indicates the upload carried no file.
	ErrFileRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the sniffed MIME type is not a PDF.
	ErrUploadTypeNotAllowed = errors.New("only PDF documents are accepted")
	// ErrExtractionUnavailable indicates the extractor is missing or failed.
	ErrExtractionUnavailable = errors.New("reference extraction unavailable")
)

// ReferenceExtractor turns a document into simple HTML reference text.
type ReferenceExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// ExtractionService validates uploaded documents and converts them to reference text. Files are not stored.
type ExtractionService interface {
	Extract(ctx context.Context, file *multipart.FileHeader) (dto.ExtractReferenceResponse, error)
}

type extractionService struct {
	extractor ReferenceExtractor
	sanitizer *bluemonday.Policy
	maxSize   int64
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewExtractionService constructs the extraction service. A nil extractor makes every call unavailable.
func NewExtractionService(extractor ReferenceExtractor, maxBytes int64, logger zerolog.Logger) ExtractionService {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &extractionService{
		extractor: extractor,
		sanitizer: bluemonday.UGCPolicy(),
		maxSize:   maxBytes,
		logger:    logger.With().Str("component", "extraction_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/correcteur-api/internal/service/extraction"),
	}
}

func (s *extractionService) Extract(ctx context.Context, file *multipart.FileHeader) (dto.ExtractReferenceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reference.extract")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ExtractionLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ExtractReferenceResponse{}, ErrFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.ExtractionRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.ExtractReferenceResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.ExtractReferenceResponse{}, err
	}
	defer handle.Close()

	return s.extractFrom(ctx, span, handle)
}

func (s *extractionService) extractFrom(ctx context.Context, span trace.Span, reader io.Reader) (dto.ExtractReferenceResponse, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.ExtractReferenceResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.ExtractionRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.ExtractReferenceResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !detected.Is(pdfMimeType) {
		observability.ExtractionRejected().WithLabelValues("type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.ExtractReferenceResponse{}, ErrUploadTypeNotAllowed
	}

	if s.extractor == nil {
		span.SetStatus(codes.Error, "no extractor")
		return dto.ExtractReferenceResponse{}, ErrExtractionUnavailable
	}

	html, err := s.extractor.Extract(ctx, buf.Bytes(), pdfMimeType)
	if err != nil {
		if errors.Is(err, ai.ErrNoExtractableText) {
			observability.ExtractionRejected().WithLabelValues("empty").Inc()
			return dto.ExtractReferenceResponse{}, err
		}
		s.logger.Warn().Err(err).Msg("reference extraction failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return dto.ExtractReferenceResponse{}, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(html))
	if clean == "" {
		observability.ExtractionRejected().WithLabelValues("empty").Inc()
		return dto.ExtractReferenceResponse{}, ai.ErrNoExtractableText
	}

	span.SetStatus(codes.Ok, "extracted")
	return dto.ExtractReferenceResponse{
		ReferenceText: clean,
		MimeType:      pdfMimeType,
		SizeBytes:     int64(buf.Len()),
	}, nil
}
