package gateway

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"catalogstudio/internal/jsonpath"
	"catalogstudio/internal/model"
)

// payloadLocation finds the product payload inside a scrape response.
type payloadLocation struct {
	name    string
	extract func(resp map[string]any) (any, bool)
}

func at(path string) func(map[string]any) (any, bool) {
	return func(resp map[string]any) (any, bool) {
		return jsonpath.Get(resp, path)
	}
}

// Scrape responses nest the product at different depths depending on the
// backend version. Locations are tried in this order; the first non-null
// value wins and the response itself is the fallback.
var payloadLocations = []payloadLocation{
	{"product", at("product")},
	{"data.data.data", at("data.data.data")},
	{"data.data", at("data.data")},
	{"data.basic_information", at("data.basic_information")},
	{"data", at("data")},
}

func unwrapProduct(resp map[string]any) (map[string]any, string, bool) {
	var found any = resp
	where := "response"
	for _, loc := range payloadLocations {
		if v, ok := loc.extract(resp); ok {
			found, where = v, loc.name
			break
		}
	}
	payload, ok := found.(map[string]any)
	if !ok || !hasProductFields(payload) {
		return nil, where, false
	}
	return payload, where, true
}

// hasProductFields rejects payloads that carry nothing but envelope keys.
func hasProductFields(payload map[string]any) bool {
	for k := range payload {
		switch k {
		case "success", "error", "message":
		default:
			return true
		}
	}
	return false
}

// ScrapeProductFromURL asks the backend to scrape productURL and normalizes
// the result. The URL is passed through unvalidated.
func (g *Gateway) ScrapeProductFromURL(ctx context.Context, productURL string) (product model.ScrapedProduct, err error) {
	defer g.track("scrape_product", time.Now(), &err)

	const op = "Failed to scrape product"
	log := g.log.With(zap.String("url", productURL))
	log.Info("scraping product")

	req, err := g.newJSONRequest(ctx, http.MethodPost, g.apiURL+"/api/scrape-product", map[string]string{"url": productURL})
	if err != nil {
		return product, remoteErr(op, err.Error(), 0, err)
	}

	body, status, err := g.roundTrip(op, req)
	if err != nil {
		return product, err
	}
	if err := checkEnvelope(op, body, status); err != nil {
		return product, err
	}

	payload, where, ok := unwrapProduct(body)
	if !ok {
		return product, remoteErr(op, "No product data found in response", status, nil)
	}
	log.Debug("product payload located", zap.String("at", where), zap.Int("fields", len(payload)))

	product = normalizeProduct(payload)
	log.Info("product normalized",
		zap.String("asin", product.ASIN),
		zap.String("title", product.Title),
		zap.Int("images", len(product.Images)),
		zap.Int("features", len(product.Features)),
	)
	return product, nil
}
