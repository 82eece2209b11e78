package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	GenerateTitle       = "title"
	GenerateDescription = "description"
)

// ImageFile is the source image uploaded for AI image generation.
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

func (g *Gateway) GenerateProductTitle(ctx context.Context, subcategory string, details map[string]any) (title string, err error) {
	defer g.track("generate_title", time.Now(), &err)
	return g.generateText(ctx, "Failed to generate title", GenerateTitle, "generated_title", subcategory, details)
}

func (g *Gateway) GenerateProductDescription(ctx context.Context, subcategory string, details map[string]any) (description string, err error) {
	defer g.track("generate_description", time.Now(), &err)
	return g.generateText(ctx, "Failed to generate description", GenerateDescription, "generated_description", subcategory, details)
}

// generateText posts {subcategory, type, ...details}. Detail keys are
// spread last, so a detail named "type" or "subcategory" is what gets sent.
func (g *Gateway) generateText(ctx context.Context, op, kind, field, subcategory string, details map[string]any) (string, error) {
	payload := map[string]any{
		"subcategory": subcategory,
		"type":        kind,
	}
	for k, v := range details {
		payload[k] = v
	}

	req, err := g.newJSONRequest(ctx, http.MethodPost, g.aiURL+"/api/generate-title-description", payload)
	if err != nil {
		return "", remoteErr(op, err.Error(), 0, err)
	}

	body, status, err := g.roundTrip(op, req)
	if err != nil {
		return "", err
	}
	if err := checkEnvelope(op, body, status); err != nil {
		return "", err
	}

	text, _ := body[field].(string)
	g.log.Info("text generated", zap.String("type", kind), zap.String("subcategory", subcategory), zap.Int("length", len(text)))
	return text, nil
}

// GenerateAIImage uploads image with a style and attribute set and returns
// the generated image location. Unlike the other calls the image endpoint
// has no success flag, so only the HTTP status is checked.
func (g *Gateway) GenerateAIImage(ctx context.Context, image ImageFile, styleIndex int, attributes map[string]any) (imageURL string, err error) {
	defer g.track("generate_image", time.Now(), &err)

	const op = "Failed to generate AI image"

	body, contentType, err := imageForm(image, styleIndex, attributes)
	if err != nil {
		return "", remoteErr(op, err.Error(), 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.aiURL+"/generate-image", body)
	if err != nil {
		return "", remoteErr(op, err.Error(), 0, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, status, err := g.roundTrip(op, req)
	if err != nil {
		return "", err
	}
	if err := checkStatus(op, resp, status); err != nil {
		return "", err
	}

	if u, ok := resp["gcs_url"].(string); ok && u != "" {
		g.log.Info("image generated", zap.String("gcs_url", u))
		return u, nil
	}
	if name, ok := resp["filename"].(string); ok && name != "" {
		u := g.aiURL + "/generated_images/" + name
		g.log.Info("image generated", zap.String("filename", name))
		return u, nil
	}
	return "", remoteErr(op, "No image URL in response", status, nil)
}

func imageForm(image ImageFile, styleIndex int, attributes map[string]any) (*bytes.Buffer, string, error) {
	if image.Data == nil {
		return nil, "", fmt.Errorf("image data is required")
	}
	if attributes == nil {
		attributes = map[string]any{}
	}
	attrs, err := json.Marshal(attributes)
	if err != nil {
		return nil, "", fmt.Errorf("encode attributes: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := image.Name
	if name == "" {
		name = "image"
	}
	ct := image.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, image.Data); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	if err := w.WriteField("style_index", strconv.Itoa(styleIndex)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("attributes", string(attrs)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
