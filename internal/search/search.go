// Package search keeps a product index in Elasticsearch and runs fuzzy
// full-text queries against it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

const DefaultIndex = "products"

var ErrDisabled = errors.New("search is not configured")

type Document struct {
	ID          uuid.UUID       `json:"id"`
	UaName      string          `json:"uaName"`
	EnName      string          `json:"enName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Image       string          `json:"image"`
	Likes       int             `json:"likes"`
	Count       int             `json:"count"`
}

func DocumentFrom(p models.Product) Document {
	return Document{
		ID:          p.ID,
		UaName:      p.UaName,
		EnName:      p.EnName,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category.String(),
		Size:        p.Size.String(),
		Color:       p.Color.String(),
		Image:       p.Image,
		Likes:       p.Likes,
		Count:       p.Count,
	}
}

type Result struct {
	Total int64
	Items []Document
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(url, user, password, index string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	if index == "" {
		index = DefaultIndex
	}
	return &Client{es: es, index: index}, nil
}

// Ping checks the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	return responseError("info", res.StatusCode, res.IsError(), res.Body)
}

func (c *Client) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(DocumentFrom(p))
	if err != nil {
		return err
	}
	res, err := c.es.Index(c.index, bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	return responseError("index", res.StatusCode, res.IsError(), res.Body)
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := c.es.Delete(c.index, id.String(), c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete", res.StatusCode, res.IsError(), res.Body)
}

func (c *Client) Search(ctx context.Context, query string, from, size int) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Items: []Document{}}, nil
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"enName^2", "uaName^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Result{}, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError("search", res.StatusCode, res.IsError(), res.Body); err != nil {
		return Result{}, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode search response: %w", err)
	}

	out := Result{Total: r.Hits.Total.Value, Items: make([]Document, len(r.Hits.Hits))}
	for i, hit := range r.Hits.Hits {
		out.Items[i] = hit.Source
	}
	return out, nil
}

func responseError(op string, status int, isErr bool, body io.Reader) error {
	if !isErr {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("elasticsearch %s: status %d: %s", op, status, bytes.TrimSpace(msg))
}

// Disabled stands in when no cluster is configured.
type Disabled struct{}

func (Disabled) IndexProduct(context.Context, models.Product) error { return nil }
func (Disabled) DeleteProduct(context.Context, uuid.UUID) error     { return nil }
func (Disabled) Search(context.Context, string, int, int) (Result, error) {
	return Result{}, ErrDisabled
}
