// Package publisher renders the static site from the episode bundle list.
package publisher

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podcast-archive/pkg/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Publisher writes the HTML pages and the machine-readable feed document.
type Publisher struct {
	siteDir     string
	title       string
	description string
	baseURL     string
	templates   *template.Template
}

// New creates a publisher rendering into siteDir.
func New(siteDir, title, description, baseURL string) (*Publisher, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Publisher{
		siteDir:     siteDir,
		title:       title,
		description: description,
		baseURL:     strings.TrimRight(baseURL, "/"),
		templates:   templates,
	}, nil
}

// pageContext is the data handed to every template.
type pageContext struct {
	Title           string
	SiteTitle       string
	SiteDescription string
	BaseURL         string
	BuildTime       string
	Episodes        []domain.Episode
	Episode         *domain.Episode
}

// Publish renders the index page, one page per episode, and feed.json. The
// episode list is rendered in the order given (callers pass newest first).
func (p *Publisher) Publish(episodes []domain.Episode) error {
	if err := os.MkdirAll(filepath.Join(p.siteDir, "episodes"), 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}

	ctx := pageContext{
		Title:           "Home",
		SiteTitle:       p.title,
		SiteDescription: p.description,
		BaseURL:         p.baseURL,
		BuildTime:       time.Now().UTC().Format(time.RFC3339),
		Episodes:        episodes,
	}

	if err := p.render("index.html", filepath.Join(p.siteDir, "index.html"), ctx); err != nil {
		return err
	}

	for i := range episodes {
		ep := episodes[i]
		epCtx := ctx
		epCtx.Title = ep.Title
		epCtx.Episode = &ep
		dest := filepath.Join(p.siteDir, "episodes", ep.ID+".html")
		if err := p.render("episode.html", dest, epCtx); err != nil {
			return err
		}
	}

	if err := p.writeFeed(episodes); err != nil {
		return err
	}

	log.Printf("publisher: published %d episodes to %s", len(episodes), p.siteDir)
	return nil
}

func (p *Publisher) render(name, dest string, ctx pageContext) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer file.Close()

	if err := p.templates.ExecuteTemplate(file, name, ctx); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// writeFeed writes the JSON array mirroring the episode list.
func (p *Publisher) writeFeed(episodes []domain.Episode) error {
	if episodes == nil {
		episodes = []domain.Episode{}
	}
	data, err := json.MarshalIndent(episodes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feed.json: %w", err)
	}
	dest := filepath.Join(p.siteDir, "feed.json")
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write feed.json: %w", err)
	}
	return nil
}
