package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalogstudio/internal/model"
)

// AllCategories disables the category filter of FetchSellerData.
const AllCategories = "All Categories"

func (g *Gateway) FetchSheetData(ctx context.Context) (env model.SheetEnvelope, err error) {
	defer g.track("sheet_data", time.Now(), &err)
	return g.fetchSheet(ctx, "Failed to fetch sheet data", "/api/sheet-data")
}

// FetchGoldenSheetData returns filter and header metadata (totalRows,
// fromCache, headers) along with the golden rows.
func (g *Gateway) FetchGoldenSheetData(ctx context.Context) (env model.SheetEnvelope, err error) {
	defer g.track("golden_sheet_data", time.Now(), &err)
	return g.fetchSheet(ctx, "Failed to fetch golden sheet data", "/api/golden-sheet-data")
}

func (g *Gateway) fetchSheet(ctx context.Context, op, path string) (model.SheetEnvelope, error) {
	req, err := g.newJSONRequest(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return nil, remoteErr(op, err.Error(), 0, err)
	}

	body, status, err := g.roundTrip(op, req)
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(op, body, status); err != nil {
		return nil, err
	}

	env := model.SheetEnvelope(body)
	g.log.Info("sheet data fetched",
		zap.String("path", path),
		zap.Int("rows", len(env.Rows())),
		zap.Bool("fromCache", env.FromCache()),
	)
	return env, nil
}

// FetchSellerData turns sheet rows into seller listings, optionally keeping
// only rows whose Category matches category case-insensitively. Ratings and
// review counts are random placeholders. ProductID is PROD-<ms>-<i> where i
// is the row's index in the unfiltered sheet, so a filtered listing may have
// gaps; the ID only keys entries within one call's result.
func (g *Gateway) FetchSellerData(ctx context.Context, category string) (listings []model.SellerListing, err error) {
	defer g.track("seller_data", time.Now(), &err)

	op := fmt.Sprintf("Failed to fetch seller data for category %s", category)

	env, err := g.fetchSheet(ctx, "Failed to fetch sheet data", "/api/sheet-data")
	if err != nil {
		return nil, remoteErr(op, err.Error(), 0, err)
	}

	rows := env.Rows()
	filter := category != "" && category != AllCategories

	stamp := g.now().UnixMilli()
	listings = make([]model.SellerListing, 0, len(rows))
	for i, row := range rows {
		if filter && !strings.EqualFold(row.Category, category) {
			continue
		}
		listings = append(listings, model.SellerListing{
			ProductID:    fmt.Sprintf("PROD-%d-%d", stamp, i),
			ProductName:  fmt.Sprintf("%s - %s (%s, %s)", row.Category, row.Subcategory, row.Gender, row.AgeGroup),
			Category:     row.Category,
			Rating:       g.placeholderRating(),
			Reviews:      g.intn(10000) + 100,
			Availability: "In Stock",
			URL:          row.URL,
			Gender:       row.Gender,
			AgeGroup:     row.AgeGroup,
			Subcategory:  row.Subcategory,
		})
	}

	g.log.Info("seller data built", zap.String("category", category), zap.Int("listings", len(listings)))
	return listings, nil
}

// placeholderRating is uniform in [3.0, 5.0] with one decimal.
func (g *Gateway) placeholderRating() float64 {
	return math.Round((3.0+g.float()*2.0)*10) / 10
}
