package model

import "catalogstudio/internal/jsonpath"

// SheetRow is one catalog row served by the sheet-data backend.
type SheetRow struct {
	Category    string `json:"Category"`
	Subcategory string `json:"Subcategory"`
	Gender      string `json:"Gender"`
	AgeGroup    string `json:"Age Group"`
	URL         string `json:"URL"`
}

// SheetRowFrom reads the known columns of a decoded row. Absent or
// non-string cells stay empty.
func SheetRowFrom(v any) SheetRow {
	return SheetRow{
		Category:    jsonpath.String(v, "Category"),
		Subcategory: jsonpath.String(v, "Subcategory"),
		Gender:      jsonpath.String(v, "Gender"),
		AgeGroup:    jsonpath.String(v, "Age Group"),
		URL:         jsonpath.String(v, "URL"),
	}
}

// SheetEnvelope is a sheet-data response body, kept verbatim.
type SheetEnvelope map[string]any

// Rows decodes the data array. Entries that are not objects are skipped.
func (e SheetEnvelope) Rows() []SheetRow {
	raw, _ := e["data"].([]any)
	rows := make([]SheetRow, 0, len(raw))
	for _, item := range raw {
		if _, ok := item.(map[string]any); !ok {
			continue
		}
		rows = append(rows, SheetRowFrom(item))
	}
	return rows
}

func (e SheetEnvelope) TotalRows() int {
	n, _ := e["totalRows"].(float64)
	return int(n)
}

func (e SheetEnvelope) FromCache() bool {
	b, _ := e["fromCache"].(bool)
	return b
}

func (e SheetEnvelope) Headers() []string {
	raw, _ := e["headers"].([]any)
	headers := make([]string, 0, len(raw))
	for _, h := range raw {
		if s, ok := h.(string); ok {
			headers = append(headers, s)
		}
	}
	return headers
}

// SellerListing is a display row derived from a SheetRow. Rating and
// Reviews are generated placeholders, not marketplace data.
type SellerListing struct {
	ProductID    string  `json:"productID"`
	ProductName  string  `json:"productName"`
	Category     string  `json:"category"`
	Rating       float64 `json:"rating"`
	Reviews      int     `json:"reviews"`
	Availability string  `json:"availability"`
	URL          string  `json:"url"`
	Gender       string  `json:"gender"`
	AgeGroup     string  `json:"ageGroup"`
	Subcategory  string  `json:"subcategory"`
}
