package gateway

import (
	"strconv"
	"strings"

	"catalogstudio/internal/jsonpath"
	"catalogstudio/internal/model"
)

// Values the scraper emits for cells it could not fill.
var placeholderStrings = map[string]bool{
	"":          true,
	"N/A":       true,
	"null":      true,
	"undefined": true,
}

func normalizeProduct(raw map[string]any) model.ScrapedProduct {
	return model.ScrapedProduct{
		ASIN:        productASIN(raw),
		Title:       jsonpath.String(raw, "title"),
		Brand:       firstString(raw, "brand", "productDetails.Brand"),
		URL:         jsonpath.String(raw, "url"),
		Images:      httpImages(raw["images"]),
		Features:    cleanFeatures(raw["features"]),
		Description: jsonpath.String(raw, "description"),

		ProductDetails:       detailMap(raw["productDetails"]),
		ManufacturingDetails: detailMap(raw["manufacturingDetails"]),
		AdditionalInfo:       detailMap(raw["additionalInfo"]),

		ProductDetailsArray:       detailArray(arraySource(raw, "productDetails")),
		ManufacturingDetailsArray: detailArray(arraySource(raw, "manufacturingDetails")),
		AdditionalInfoArray:       detailArray(arraySource(raw, "additionalInfo")),

		RawData: raw,
	}
}

func productASIN(raw map[string]any) string {
	if asin := firstString(raw, "asin", "manufacturingDetails.ASIN"); asin != "" {
		return asin
	}
	for _, key := range []string{"manufacturingDetails", "manufacturingDetailsArray"} {
		list, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			if strings.TrimSpace(jsonpath.String(item, "label")) != "ASIN" {
				continue
			}
			if v := valueString(jsonpath.Lookup(item, "value", nil)); v != "" {
				return v
			}
		}
	}
	return ""
}

// firstString returns the first path holding a non-empty scalar.
func firstString(raw any, paths ...string) string {
	for _, p := range paths {
		if s := valueString(jsonpath.Lookup(raw, p, nil)); s != "" {
			return s
		}
	}
	return ""
}

func httpImages(v any) []string {
	list, _ := v.([]any)
	images := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if ok && s != "" && strings.HasPrefix(s, "http") {
			images = append(images, s)
		}
	}
	return images
}

func cleanFeatures(v any) []string {
	list, _ := v.([]any)
	features := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "N/A" {
			continue
		}
		features = append(features, s)
	}
	return features
}

// detailMap drops placeholder entries and collapses an empty result to nil.
func detailMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		if isPlaceholder(val) {
			continue
		}
		out[k] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// arraySource prefers "<field>Array", then "<field>" when it is a list.
func arraySource(raw map[string]any, field string) any {
	if list, ok := raw[field+"Array"].([]any); ok {
		return list
	}
	if list, ok := raw[field].([]any); ok {
		return list
	}
	return nil
}

func detailArray(v any) []model.LabeledValue {
	list, ok := v.([]any)
	if !ok {
		return []model.LabeledValue{}
	}
	out := make([]model.LabeledValue, 0, len(list))
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			continue
		}
		value := valueString(jsonpath.Lookup(item, "value", nil))
		if value == "" || value == "N/A" {
			continue
		}
		out = append(out, model.LabeledValue{
			Label: valueString(jsonpath.Lookup(item, "label", nil)),
			Value: value,
		})
	}
	return out
}

func isPlaceholder(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return placeholderStrings[val]
	}
	return false
}

func valueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
