package scraper

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
)

// shortDescriptionLimit caps the plain-text short description.
const shortDescriptionLimit = 200

// priceStrip removes currency symbols and whitespace, keeping digits and
// punctuation so locale formatting ("1.299,00") survives for the CSV
// consumer. Prices stay strings on purpose.
var priceStrip = regexp.MustCompile(`[^0-9.,]`)

// Extractor turns a confirmed product-candidate URL into a ProductRecord.
type Extractor struct {
	fetcher  Fetcher
	profile  *profile.Profile
	archiver ImageArchiver
	logger   *zap.Logger
}

// NewExtractor builds an Extractor. archiver may be nil, in which case image
// handling is skipped and Images stays empty.
func NewExtractor(fetcher Fetcher, prof *profile.Profile, archiver ImageArchiver, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{fetcher: fetcher, profile: prof, archiver: archiver, logger: logger}
}

// Extract fetches pageURL and pulls out a normalized product record. It
// returns nil when the page is unreachable, unparseable, or has an empty
// title match: a page without a title is not a product, not a product with
// an empty name. A nil return never aborts the batch; the caller just moves
// on to the next candidate.
func (e *Extractor) Extract(ctx context.Context, pageURL string) *ProductRecord {
	resp, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		e.logger.Warn("product fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		e.logger.Warn("product parse failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	name := firstText(doc, e.profile.Title)
	if name == "" {
		e.logger.Debug("no title match, not a product", zap.String("url", pageURL))
		return nil
	}

	rec := &ProductRecord{
		Name:       name,
		SKU:        firstText(doc, e.profile.SKU),
		Categories: joinedText(doc, e.profile.Categories),
		Tags:       joinedText(doc, e.profile.Tags),
		InStock:    e.inStock(doc),
		SourceURL:  pageURL,
	}
	rec.RegularPrice, rec.SalePrice = e.prices(doc)
	rec.Description, rec.ShortDescription = e.descriptions(doc)

	baseURL := resp.URL
	if baseURL == "" {
		baseURL = pageURL
	}
	if e.archiver != nil {
		paths := e.archiver.Archive(ctx, e.imageURLs(doc), baseURL)
		rec.Images = strings.Join(paths, ", ")
	}
	return rec
}

// prices applies the sale/regular split. With a sale price present, the
// regular price comes from the strikethrough (del) element inside the price
// container, falling back to its full text. Without one, the full price
// text is the regular price.
func (e *Extractor) prices(doc *goquery.Document) (regular, sale string) {
	priceSel := firstSelection(doc, e.profile.Price)

	if saleText := firstText(doc, e.profile.SalePrice); saleText != "" {
		sale = stripPrice(saleText)
		if priceSel != nil {
			if del := priceSel.Find("del").First(); del.Length() > 0 {
				regular = stripPrice(del.Text())
			} else {
				regular = stripPrice(priceSel.Text())
			}
		}
		return regular, sale
	}

	if priceSel != nil {
		regular = stripPrice(priceSel.Text())
	}
	return regular, ""
}

// descriptions returns the raw inner HTML of the description container, to
// preserve formatting for downstream publishing, plus a truncated plain-text
// form.
func (e *Extractor) descriptions(doc *goquery.Document) (description, short string) {
	sel := firstSelection(doc, e.profile.Description)
	if sel == nil {
		return "", ""
	}
	html, err := sel.Html()
	if err != nil {
		e.logger.Debug("description html render failed", zap.Error(err))
		html = ""
	}
	short = strings.TrimSpace(sel.Text())
	if runes := []rune(short); len(runes) > shortDescriptionLimit {
		short = string(runes[:shortDescriptionLimit])
	}
	return strings.TrimSpace(html), short
}

// imageURLs collects candidate image URLs from the profile's image
// selectors, reading href first (gallery anchors link the full-size file)
// and falling back to src. Order is preserved; duplicates are left to the
// archiver's filename dedup.
func (e *Extractor) imageURLs(doc *goquery.Document) []string {
	var urls []string
	for _, s := range allMatches(doc, e.profile.Images) {
		u, ok := s.Attr("href")
		if !ok || u == "" {
			u, _ = s.Attr("src")
		}
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (e *Extractor) inStock(doc *goquery.Document) bool {
	stock := strings.ToLower(firstText(doc, e.profile.Stock))
	if stock == "" {
		return true
	}
	return !strings.Contains(stock, "out of stock")
}

func stripPrice(s string) string {
	return priceStrip.ReplaceAllString(s, "")
}
