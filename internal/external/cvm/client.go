package cvm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fii-advisor/backend/pkg/httputil"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// DefaultBaseURL is the CVM open-data page of the FII monthly report
const DefaultBaseURL = "https://dados.cvm.gov.br/dataset/fii-doc-inf_mensal"

// ErrArchiveNotFound is returned when the page lists no archive for a year
var ErrArchiveNotFound = errors.New("cvm archive not found")

var archiveRe = regexp.MustCompile(`inf_mensal_fii_(\d{4})\.zip$`)

// Archive is one yearly zip published by CVM
type Archive struct {
	Year int
	Name string
	URL  string
}

// Client handles communication with the CVM open-data portal
// ⭐ SSOT: CVM 포털 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new CVM client; empty baseURL uses DefaultBaseURL
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("cvm"),
		baseURL:    baseURL,
	}
}

// ListArchives scrapes the dataset page for yearly zip links, sorted by year
func (c *Client) ListArchives(ctx context.Context) ([]Archive, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.StatusError{URL: c.baseURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset page: %w", err)
	}

	archives := parseArchives(doc, c.baseURL)

	c.logger.WithFields(map[string]interface{}{
		"url":      c.baseURL,
		"archives": len(archives),
	}).Debug("Listed CVM archives")

	return archives, nil
}

// FindArchive returns the archive of year
func (c *Client) FindArchive(ctx context.Context, year int) (Archive, error) {
	archives, err := c.ListArchives(ctx)
	if err != nil {
		return Archive{}, err
	}
	for _, a := range archives {
		if a.Year == year {
			return a, nil
		}
	}
	return Archive{}, fmt.Errorf("%w: %d", ErrArchiveNotFound, year)
}

// parseArchives collects inf_mensal_fii_<year>.zip links, one per year
func parseArchives(doc *goquery.Document, pageURL string) []Archive {
	base, _ := url.Parse(pageURL)
	byYear := make(map[int]Archive)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := archiveRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		if _, ok := byYear[year]; ok {
			return
		}

		link := href
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				link = base.ResolveReference(ref).String()
			}
		}
		byYear[year] = Archive{Year: year, Name: m[0], URL: link}
	})

	archives := make([]Archive, 0, len(byYear))
	for _, a := range byYear {
		archives = append(archives, a)
	}
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Year < archives[j].Year
	})
	return archives
}
