package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoExtractableText is returned when a document yields no text.
var ErrNoExtractableText = errors.New("no extractable text in document")

// DefaultExtractionModel is used to convert uploaded documents to reference text.
const DefaultExtractionModel = "gemini-2.5-flash"

const extractionInstruction = `Extrais tout le texte de ce document PDF et retourne-le en HTML simple pour un editeur WYSIWYG.

REGLES :
- Utilise uniquement ces balises : <h2>, <h3>, <p>, <strong>, <em>, <u>, <ul>, <ol>, <li>
- Conserve fidelement la structure du document : titres, sous-titres, paragraphes, listes
- Mets en <strong> les mots ou passages en gras dans le document original
- Mets en <em> les mots ou passages en italique dans le document original
- Ne modifie AUCUN mot du texte original
- Pas de commentaire, pas d'introduction, pas de balises <html>, <body> ou <head>
- Retourne directement le HTML, sans bloc de code markdown`

// Extract converts a document to simple HTML using the Gemini client of the invoker.
func (g *GeminiInvoker) Extract(parent context.Context, data []byte, mimeType string) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.extract", trace.WithAttributes(
		attribute.String("model", DefaultExtractionModel),
		attribute.String("document.mime", mimeType),
		attribute.Int("document.size", len(data)),
	))
	defer span.End()

	model := g.client.GenerativeModel(DefaultExtractionModel)
	resp, err := model.GenerateContent(ctx,
		&genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(extractionInstruction),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("gemini extract: %w", err)
	}

	html := strings.TrimSpace(firstText(resp))
	html = strings.TrimPrefix(html, "```html")
	html = strings.TrimSuffix(strings.TrimPrefix(html, "```"), "```")
	html = strings.TrimSpace(html)
	if html == "" {
		span.SetStatus(codes.Error, "empty")
		return "", ErrNoExtractableText
	}

	span.SetStatus(codes.Ok, "extracted")
	return html, nil
}
