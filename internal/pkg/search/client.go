package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Index names
const (
	IndexUsers = "users"
	IndexPosts = "posts"
)

// PostDocument is the indexed shape of a post
type PostDocument struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	PostType  string    `json:"post_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDocument is the indexed shape of a user
type UserDocument struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client wraps the Elasticsearch client with index-specific helpers
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client and verifies the connection
func NewClient(addresses ...string) (*Client, error) {
	if len(addresses) == 0 {
		addresses = []string{"http://localhost:9200"}
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	res.Body.Close()

	return &Client{es: es}, nil
}

// InitializeIndices creates the search indices when they do not exist yet
func (c *Client) InitializeIndices(ctx context.Context) error {
	users := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":       map[string]interface{}{"type": "long"},
				"username": map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword"}}},
				"email":    map[string]interface{}{"type": "text", "analyzer": "simple"},
			},
		},
	}
	if err := c.createIndex(ctx, IndexUsers, users); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	posts := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":         map[string]interface{}{"type": "long"},
				"user_id":    map[string]interface{}{"type": "long"},
				"username":   map[string]interface{}{"type": "text"},
				"post_type":  map[string]interface{}{"type": "keyword"},
				"content":    map[string]interface{}{"type": "text", "analyzer": "standard"},
				"created_at": map[string]interface{}{"type": "date"},
			},
		},
	}
	if err := c.createIndex(ctx, IndexPosts, posts); err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	return nil
}

func (c *Client) createIndex(ctx context.Context, name string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(name,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return responseError(res, "creating index")
}

// IndexPost upserts a post document
func (c *Client) IndexPost(ctx context.Context, doc PostDocument) error {
	return c.index(ctx, IndexPosts, doc.ID, doc)
}

// IndexUser upserts a user document
func (c *Client) IndexUser(ctx context.Context, doc UserDocument) error {
	return c.index(ctx, IndexUsers, doc.ID, doc)
}

func (c *Client) index(ctx context.Context, index string, id int64, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", index, err)
	}

	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(strconv.FormatInt(id, 10)),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index %s document: %w", index, err)
	}
	return responseError(res, "indexing "+index)
}

// DeletePost removes a post document; a missing document is not an error
func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	res, err := c.es.Delete(IndexPosts, strconv.FormatInt(postID, 10), c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.StatusCode == 404 {
		res.Body.Close()
		return nil
	}
	return responseError(res, "deleting post")
}

// SearchPosts returns ids of non-event posts whose content or author matches keyword
func (c *Client) SearchPosts(ctx context.Context, keyword string, limit int) ([]int64, error) {
	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     keyword,
						"fields":    []string{"content", "username"},
						"fuzziness": "AUTO",
					},
				},
				"must_not": map[string]interface{}{
					"term": map[string]interface{}{"post_type": "event"},
				},
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"created_at": "desc"}},
	}
	return c.searchIDs(ctx, IndexPosts, query)
}

// SearchUsers returns ids of users whose username or email matches keyword
func (c *Client) SearchUsers(ctx context.Context, keyword string, limit int) ([]int64, error) {
	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keyword,
				"fields": []string{"username^2", "email"},
				"type":   "phrase_prefix",
			},
		},
	}
	return c.searchIDs(ctx, IndexUsers, query)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) searchIDs(ctx context.Context, index string, query map[string]interface{}) ([]int64, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error [%s]: %s", res.Status(), readAll(res.Body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func responseError(res *esapi.Response, action string) error {
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}

	var errResp map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("error %s [%s]", action, res.Status())
	}
	return fmt.Errorf("error %s: [%s] %v", action, res.Status(), errResp["error"])
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	return string(b)
}
