package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"larder/internal/config"
	"larder/internal/recipe"
	"larder/internal/services"
)

const defaultAirtableTimeout = 30 * time.Second

// Airtable persists records to a hosted Airtable table over its REST API.
type Airtable struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// AirtableOption customizes the client.
type AirtableOption func(*Airtable)

// WithAirtableHTTPClient overrides the default HTTP client.
func WithAirtableHTTPClient(client *http.Client) AirtableOption {
	return func(a *Airtable) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithAirtableBaseURL overrides the API root, primarily for tests.
func WithAirtableBaseURL(baseURL string) AirtableOption {
	return func(a *Airtable) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			a.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// NewAirtable constructs an Airtable-backed record store.
func NewAirtable(cfg config.RecordStore, opts ...AirtableOption) *Airtable {
	timeout := defaultAirtableTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	a := &Airtable{
		apiKey: strings.TrimSpace(cfg.APIKey),
		baseURL: fmt.Sprintf("https://api.airtable.com/v0/%s/%s",
			url.PathEscape(strings.TrimSpace(cfg.BaseID)),
			url.PathEscape(strings.TrimSpace(cfg.Table))),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type airtableList struct {
	Records []airtableRecord `json:"records"`
}

type airtableError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Persist stores the record and returns a copy carrying the assigned id.
func (a *Airtable) Persist(ctx context.Context, rec recipe.Record) (recipe.Record, error) {
	if a.apiKey == "" {
		return rec, services.Wrap(services.ErrConfiguration, "store", "", "airtable api key not configured", nil)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = a.now()
	}
	payload := airtableRecord{Fields: flattenFields(rec, created)}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return rec, services.Wrap(services.ErrTransport, "store", "encode record", "", err)
	}

	body, err := a.do(ctx, http.MethodPost, a.baseURL, encoded)
	if err != nil {
		return rec, err
	}
	var stored airtableRecord
	if err := json.Unmarshal(body, &stored); err != nil {
		return rec, services.Wrap(services.ErrTransport, "store", "decode response", "", err)
	}
	rec.PersistedID = stored.ID
	rec.CreatedAt = created
	return rec, nil
}

// List fetches all rows and maps them back into typed records.
func (a *Airtable) List(ctx context.Context) ([]recipe.Record, error) {
	if a.apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "", "airtable api key not configured", nil)
	}
	body, err := a.do(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, err
	}
	var listed airtableList
	if err := json.Unmarshal(body, &listed); err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "decode response", "", err)
	}
	records := make([]recipe.Record, 0, len(listed.Records))
	for _, row := range listed.Records {
		records = append(records, unflattenFields(row.ID, row.Fields))
	}
	return records, nil
}

// ValidateConfig issues a one-row read to verify the key, base and table.
func (a *Airtable) ValidateConfig(ctx context.Context) error {
	if a.apiKey == "" {
		return services.Wrap(services.ErrConfiguration, "store", "", "airtable api key not configured", nil)
	}
	_, err := a.do(ctx, http.MethodGet, a.baseURL+"?maxRecords=1", nil)
	return err
}

func (a *Airtable) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "new request", "", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "http request", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "read response", "", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusNotFound {
		return nil, services.Wrap(services.ErrConfiguration, "store",
			fmt.Sprintf("http %d", resp.StatusCode), apiMessage(body), nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrTransport, "store",
			fmt.Sprintf("http %d", resp.StatusCode), apiMessage(body), nil)
	}
	return body, nil
}

func apiMessage(body []byte) string {
	var parsed airtableError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if message := strings.TrimSpace(parsed.Error.Message); message != "" {
			return message
		}
	}
	clean := strings.Join(strings.Fields(string(body)), " ")
	if clean == "" {
		return "no response body"
	}
	if len(clean) > 160 {
		clean = clean[:160] + "..."
	}
	return clean
}

// flattenFields renders the typed record into the text columns the table
// expects: ingredients one per line in display form, steps renumbered.
func flattenFields(rec recipe.Record, created time.Time) map[string]any {
	ingredients := make([]string, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		ingredients = append(ingredients, ing.Display())
	}
	steps := make([]string, 0, len(rec.Steps))
	for i, step := range rec.Steps {
		steps = append(steps, fmt.Sprintf("%d. %s", i+1, step))
	}
	return map[string]any{
		"Recipe Name":              rec.Name,
		"Recipe Category":          string(rec.Category),
		"Dietary Flags":            strings.Join(rec.Flags, ", "),
		"Ingredients":              strings.Join(ingredients, "\n"),
		"Preparation Steps":        strings.Join(steps, "\n"),
		"Preparation Time":         rec.PrepMinutes,
		"Cook Time":                rec.CookMinutes,
		"Total Time":               rec.TotalMinutes,
		"Servings":                 rec.Servings,
		"Difficulty Level":         string(rec.Difficulty),
		"Short Visual Description": rec.Description,
		"Image URL":                rec.ImageURL,
		"Created":                  created.UTC().Format(time.RFC3339),
	}
}

func unflattenFields(id string, fields map[string]any) recipe.Record {
	rec := recipe.Record{
		Name:         stringField(fields, "Recipe Name", recipe.DefaultName),
		Category:     recipe.ParseCategory(stringField(fields, "Recipe Category", "")),
		Difficulty:   recipe.ParseDifficulty(stringField(fields, "Difficulty Level", "")),
		Description:  stringField(fields, "Short Visual Description", ""),
		ImageURL:     stringField(fields, "Image URL", ""),
		PrepMinutes:  intField(fields, "Preparation Time"),
		CookMinutes:  intField(fields, "Cook Time"),
		TotalMinutes: intField(fields, "Total Time"),
		Servings:     intField(fields, "Servings"),
		PersistedID:  id,
	}
	for _, flag := range strings.Split(stringField(fields, "Dietary Flags", ""), ",") {
		if flag = strings.TrimSpace(flag); flag != "" {
			rec.Flags = append(rec.Flags, flag)
		}
	}
	for _, line := range strings.Split(stringField(fields, "Ingredients", ""), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rec.Ingredients = append(rec.Ingredients, recipe.ParseIngredientLine(line))
		}
	}
	for _, line := range strings.Split(stringField(fields, "Preparation Steps", ""), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if dot := strings.Index(line, ". "); dot > 0 {
			if _, err := strconv.Atoi(line[:dot]); err == nil {
				line = strings.TrimSpace(line[dot+2:])
			}
		}
		if line != "" {
			rec.Steps = append(rec.Steps, line)
		}
	}
	if raw := stringField(fields, "Created", ""); raw != "" {
		if when, err := time.Parse(time.RFC3339, raw); err == nil {
			rec.CreatedAt = when
		}
	}
	return rec
}

func stringField(fields map[string]any, key, fallback string) string {
	if value, ok := fields[key].(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func intField(fields map[string]any, key string) int {
	switch value := fields[key].(type) {
	case float64:
		return int(value)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return 0
}
