package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// GistService reads and writes files of one GitHub gist. It is the fallback
// backend used when no blob store is configured.
type GistService struct {
	apiURL     string
	gistID     string
	token      string
	httpClient *http.Client
}

type gistFile struct {
	RawURL  string `json:"raw_url,omitempty"`
	Content string `json:"content,omitempty"`
}

type gistDocument struct {
	Files map[string]gistFile `json:"files"`
}

// NewGistService creates a gist client. apiURL defaults to the public GitHub API.
func NewGistService(apiURL, gistID, token string) *GistService {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	return &GistService{
		apiURL: apiURL,
		gistID: gistID,
		token:  token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *GistService) Name() string {
	return "gist"
}

func (g *GistService) gistURL() string {
	return fmt.Sprintf("%s/gists/%s", g.apiURL, url.PathEscape(g.gistID))
}

func (g *GistService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// Get returns the content of the gist file named key
func (g *GistService) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.gistURL(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gist request")
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch gist", goerr.Value("gist_id", g.gistID))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("gist API returned unexpected status",
			goerr.Value("gist_id", g.gistID), goerr.Value("status", resp.StatusCode))
	}

	var doc gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode gist document")
	}

	file, ok := doc.Files[key]
	if !ok || file.RawURL == "" {
		return nil, nil
	}
	return g.fetchRaw(ctx, file.RawURL)
}

// fetchRaw downloads the full file body. The inline content of the gist API
// is truncated for large files, the raw URL is not.
func (g *GistService) fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create raw gist request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch raw gist file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("raw gist file returned unexpected status", goerr.Value("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read raw gist file")
	}
	return body, nil
}

// Set replaces the content of the gist file named key
func (g *GistService) Set(ctx context.Context, key string, value []byte, contentType string) error {
	payload := gistDocument{
		Files: map[string]gistFile{key: {Content: string(value)}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to encode gist payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.gistURL(), bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create gist request")
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to update gist", goerr.Value("gist_id", g.gistID))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return goerr.New("gist write failed",
			goerr.Value("status", resp.StatusCode), goerr.Value("body", string(detail)))
	}
	return nil
}
