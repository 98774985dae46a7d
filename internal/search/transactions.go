package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

// TransactionDoc is the indexed projection of a transaction. The card number
// is indexed in its masked form only.
type TransactionDoc struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	TransactionID   string    `json:"transactionId"`
	TransactionTime time.Time `json:"transactionTime"`
	CCNum           string    `json:"ccNum"`
	TransactionType string    `json:"transactionType"`
	Amount          float64   `json:"amount"`
	City            string    `json:"city"`
	IsFraud         bool      `json:"isFraud"`
	FraudReason     []string  `json:"fraudReason"`
	CreatedAt       time.Time `json:"createdAt"`
}

func DocFromTransaction(tx *models.Transaction) TransactionDoc {
	return TransactionDoc{
		ID:              tx.ID.String(),
		UserID:          tx.UserID.String(),
		TransactionID:   tx.TransactionID,
		TransactionTime: tx.TransactionTime,
		CCNum:           tx.CCNum,
		TransactionType: tx.TransactionType,
		Amount:          tx.Amount,
		City:            tx.City,
		IsFraud:         tx.IsFraud,
		FraudReason:     tx.FraudReason,
		CreatedAt:       tx.CreatedAt,
	}
}

type TransactionIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func (ix *TransactionIndex) IndexTransaction(ctx context.Context, tx *models.Transaction) error {
	body, err := json.Marshal(DocFromTransaction(tx))
	if err != nil {
		return fmt.Errorf("es: marshal: %w", err)
	}

	res, err := ix.ES.Index(
		ix.Index,
		bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(tx.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index: %s: %s", res.Status(), msg)
	}
	return nil
}

func (ix *TransactionIndex) SearchTransactions(ctx context.Context, query string, from, size int) (int64, []TransactionDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"transactionId^3", "city^2", "transactionType", "fraudReason"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{map[string]any{"createdAt": map[string]string{"order": "desc"}}},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Index),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("es: search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source TransactionDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode: %w", err)
	}

	docs := make([]TransactionDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
