package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*elasticsearch.Client, error) {
	log.Info("es_connect", "url", cfg.URL, "user", cfg.Username)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return client, nil
}
