package services

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kendall-kelly/agenda-api/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultChatDirectoryTTL is how long a fetched e-mail to chat id mapping is reused
const DefaultChatDirectoryTTL = 5 * time.Minute

// ChatDirectory maps agent e-mails to Telegram chat ids using a remote CSV
// with at least the columns email and chat_id.
type ChatDirectory struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
	entries   map[string]string
}

// NewChatDirectory creates a directory backed by the CSV at csvURL
func NewChatDirectory(csvURL string, ttl time.Duration, now func() time.Time) *ChatDirectory {
	if ttl <= 0 {
		ttl = DefaultChatDirectoryTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ChatDirectory{
		url:        strings.TrimSpace(csvURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ttl:        ttl,
		now:        now,
	}
}

// Lookup returns the chat id registered for email, or "" when unknown
func (d *ChatDirectory) Lookup(ctx context.Context, email string) string {
	entries := d.load(ctx)
	return entries[strings.ToLower(strings.TrimSpace(email))]
}

func (d *ChatDirectory) load(ctx context.Context) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !d.fetchedAt.IsZero() && now.Sub(d.fetchedAt) < d.ttl {
		return d.entries
	}

	entries, err := d.fetch(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to load telegram users", "error", err)
		entries = map[string]string{}
	}
	// Failures are cached too, so a broken sheet is retried once per TTL
	d.entries = entries
	d.fetchedAt = now
	return entries
}

func (d *ChatDirectory) fetch(ctx context.Context) (map[string]string, error) {
	if d.url == "" {
		return map[string]string{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create users CSV request")
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch users CSV")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("users CSV returned unexpected status", goerr.Value("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read users CSV")
	}
	return ParseChatCSV(string(body))
}

// ParseChatCSV reads the email and chat_id columns of a comma or semicolon
// separated sheet export. Header names are case-insensitive.
func ParseChatCSV(text string) (map[string]string, error) {
	entries := map[string]string{}
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return entries, nil
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ','
	if strings.Contains(firstLine, ";") && !strings.Contains(firstLine, ",") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse users CSV")
	}
	if len(rows) == 0 {
		return entries, nil
	}

	emailCol, chatCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "email":
			emailCol = i
		case "chat_id":
			chatCol = i
		}
	}
	if emailCol < 0 || chatCol < 0 {
		return entries, nil
	}

	for _, row := range rows[1:] {
		if emailCol >= len(row) || chatCol >= len(row) {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(row[emailCol]))
		chatID := strings.TrimSpace(row[chatCol])
		if email != "" && chatID != "" {
			entries[email] = chatID
		}
	}
	return entries, nil
}
