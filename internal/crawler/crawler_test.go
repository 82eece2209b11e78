package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/gateway"
	"catalogstudio/internal/model"
)

// fakeScraper behaves like the gateway: the product carries only what the
// backend payload held, never the requested URL.
type fakeScraper struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeScraper) ScrapeProductFromURL(_ context.Context, u string) (model.ScrapedProduct, error) {
	f.calls.Add(1)
	if f.fail[u] {
		return model.ScrapedProduct{}, errors.New("Failed to scrape product: blocked")
	}
	return model.ScrapedProduct{Title: "T " + u}, nil
}

func TestScrapeBatch(t *testing.T) {
	urls := []string{"u1", "u2", "u3", "u4", "u5"}
	s := &fakeScraper{fail: map[string]bool{"u3": true}}

	var requested, stored []string
	failed := ScrapeBatch(context.Background(), s, urls, 3, nil, func(u string, p model.ScrapedProduct) {
		requested = append(requested, u)
		stored = append(stored, p.URL)
		assert.Equal(t, "T "+u, p.Title)
	})

	sort.Strings(requested)
	sort.Strings(stored)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"u1", "u2", "u4", "u5"}, requested)
	assert.Equal(t, requested, stored)
	assert.Equal(t, int32(5), s.calls.Load())
}

func TestScrapeBatch_KeepsPayloadURL(t *testing.T) {
	s := scraperFunc(func(_ context.Context, u string) (model.ScrapedProduct, error) {
		return model.ScrapedProduct{URL: "https://canonical/" + u}, nil
	})

	var got model.ScrapedProduct
	ScrapeBatch(context.Background(), s, []string{"a"}, 1, nil, func(u string, p model.ScrapedProduct) {
		assert.Equal(t, "a", u)
		got = p
	})

	assert.Equal(t, "https://canonical/a", got.URL)
}

// The backend often leaves url out of the payload; each product must still
// reach the handler under the URL it was scraped from.
func TestScrapeBatch_GatewayPayloadWithoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"title":"Lamp","asin":"B1"}}`))
	}))
	t.Cleanup(srv.Close)
	gw := gateway.New(gateway.Config{APIURL: srv.URL, Timeout: 5 * time.Second})

	got := map[string]string{}
	failed := ScrapeBatch(context.Background(), gw, []string{"https://a/1", "https://a/2"}, 2, nil, func(u string, p model.ScrapedProduct) {
		assert.Equal(t, "Lamp", p.Title)
		got[u] = p.URL
	})

	assert.Zero(t, failed)
	assert.Equal(t, map[string]string{"https://a/1": "https://a/1", "https://a/2": "https://a/2"}, got)
}

func TestScrapeBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeScraper{}

	n := 0
	done := make(chan int)
	go func() {
		done <- ScrapeBatch(ctx, s, []string{"a", "b", "c"}, 2, nil, func(string, model.ScrapedProduct) { n++ })
	}()

	select {
	case failed := <-done:
		assert.Zero(t, failed)
	case <-time.After(2 * time.Second):
		t.Fatal("ScrapeBatch did not return after cancellation")
	}
	assert.Zero(t, n)
	assert.Zero(t, s.calls.Load())
}

type scraperFunc func(context.Context, string) (model.ScrapedProduct, error)

func (f scraperFunc) ScrapeProductFromURL(ctx context.Context, u string) (model.ScrapedProduct, error) {
	return f(ctx, u)
}

func TestHTMLText(t *testing.T) {
	text, err := HTMLText("<h2>Comfort</h2><p>Soft <b>foam</b> sole.</p><ul><li>Light</li><li> </li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Comfort\nSoft foam sole.\nLight", text)

	text, err = HTMLText("plain words")
	require.NoError(t, err)
	assert.Equal(t, "plain words", text)
}

func TestProductToText(t *testing.T) {
	p := model.ScrapedProduct{
		ASIN:                "B001",
		Title:               "Desk Lamp",
		Brand:               "Lumo",
		URL:                 "https://example.com/lamp",
		Images:              []string{"https://img/1.jpg", "https://img/2.jpg"},
		Features:            []string{"Dimmable"},
		Description:         "<p>Warm light.</p>",
		ProductDetailsArray: []model.LabeledValue{{Label: "Color", Value: "Black"}},
		AdditionalInfo:      map[string]any{"Rank": "12", "Cable": "2m"},
	}

	text := ProductToText(p)

	assert.True(t, strings.HasPrefix(text, "Desk Lamp\n\n"))
	assert.Contains(t, text, "Description:\nWarm light.\n")
	assert.Contains(t, text, "- Dimmable\n")
	assert.Contains(t, text, "Brand: Lumo\nASIN: B001\nColor: Black\nCable: 2m\nRank: 12\n")
	assert.Contains(t, text, "URL: https://example.com/lamp\n")
	assert.Contains(t, text, "Main Image: https://img/1.jpg\n")
	assert.NotContains(t, text, "<p>")
}
