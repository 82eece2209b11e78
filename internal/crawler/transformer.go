package crawler

import (
	"fmt"
	"sort"
	"strings"

	"catalogstudio/internal/model"
)

// ProductToText renders a scraped product as plain text for storage and
// embedding. Title first, then marketing copy, then the detail tables.
func ProductToText(p model.ScrapedProduct) string {
	var sb strings.Builder

	sb.WriteString(p.Title + "\n\n")

	if p.Description != "" {
		desc, err := HTMLText(p.Description)
		if err != nil {
			desc = p.Description
		}
		if desc != "" {
			sb.WriteString("Description:\n" + desc + "\n\n")
		}
	}

	if len(p.Features) > 0 {
		sb.WriteString("Features:\n")
		for _, f := range p.Features {
			sb.WriteString("- " + f + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("--- Details ---\n")
	if p.Brand != "" {
		sb.WriteString("Brand: " + p.Brand + "\n")
	}
	if p.ASIN != "" {
		sb.WriteString("ASIN: " + p.ASIN + "\n")
	}
	writeSection(&sb, p.ProductDetailsArray, p.ProductDetails)
	writeSection(&sb, p.ManufacturingDetailsArray, p.ManufacturingDetails)
	writeSection(&sb, p.AdditionalInfoArray, p.AdditionalInfo)
	sb.WriteString("---------------\n\n")

	if p.URL != "" {
		sb.WriteString("URL: " + p.URL + "\n")
	}
	if len(p.Images) > 0 {
		sb.WriteString("Main Image: " + p.Images[0] + "\n")
	}

	return sb.String()
}

// writeSection prefers the labeled rows; the map form is written in key
// order when no rows exist.
func writeSection(sb *strings.Builder, rows []model.LabeledValue, m map[string]any) {
	if len(rows) > 0 {
		for _, r := range rows {
			sb.WriteString(r.Label + ": " + r.Value + "\n")
		}
		return
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %v\n", k, m[k]))
	}
}
