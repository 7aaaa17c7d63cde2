// Package research implements the generic background-research facet: visit
// the candidate's personal site and pull enough text for the rater to work
// with. Collectors are pooled and recycled like browser sessions.
package research

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/enrich"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
	"github.com/gocolly/colly/v2"
)

const maxResearchChars = 20000

// Browser wraps a base colly collector as a poolable session.
type Browser struct {
	Collector *colly.Collector
}

func (b *Browser) Close() error {
	return nil
}

type WebResearcher struct {
	Logger log.Logger
	Config *cfg.Config
	pool   *enrich.Pool
}

func NewWebResearcher(logger log.Logger, config *cfg.Config) *WebResearcher {
	factory := func() (enrich.Session, error) {
		collector := colly.NewCollector(
			// Landing page is depth 1; the same-site links it names are 2.
			colly.MaxDepth(2),
			colly.UserAgent("github-leadgen/"+config.App.Version),
		)
		return &Browser{Collector: collector}, nil
	}
	return &WebResearcher{
		Logger: logger,
		Config: config,
		pool:   enrich.NewPool(config.Enrich.PoolSize, config.Enrich.PoolMaxUses, factory),
	}
}

// Research visits the user's blog/site and returns the visible text, capped.
// No site on the profile yields empty text, which is still a fetched facet.
func (r *WebResearcher) Research(ctx context.Context, user *model.User) (string, error) {
	site := normalizeUrl(user.Blog)
	if site == "" {
		return "", nil
	}

	lease, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer lease.Release()

	browser, ok := lease.Session.(*Browser)
	if !ok {
		return "", fmt.Errorf("research: unexpected session type %T", lease.Session)
	}

	// Clone per call so page callbacks do not pile up on the pooled base
	collector := browser.Collector.Clone()

	var builder strings.Builder
	pages := 0
	collector.OnHTML("title, h1, h2, h3, p, li", func(e *colly.HTMLElement) {
		if builder.Len() >= maxResearchChars {
			return
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	})
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if pages >= r.Config.Enrich.ResearchMaxPages {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !strings.HasPrefix(link, site) {
			return
		}
		if err := e.Request.Visit(link); err == nil {
			pages++
		}
	})

	if err := collector.Visit(site); err != nil {
		return "", err
	}
	collector.Wait()

	return capText(builder.String(), maxResearchChars), nil
}

// capText cuts s at max bytes without splitting a rune.
func capText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Close releases the pooled collectors.
func (r *WebResearcher) Close() {
	r.pool.Close()
}

func normalizeUrl(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	return site
}
