package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// Index keeps users and vehicles searchable in Elasticsearch.
type Index struct {
	ES            *elasticsearch.Client
	UsersIndex    string
	VehiclesIndex string
	Logger        *logrus.Logger
}

func NewIndex(es *elasticsearch.Client, usersIndex, vehiclesIndex string, logger *logrus.Logger) *Index {
	return &Index{ES: es, UsersIndex: usersIndex, VehiclesIndex: vehiclesIndex, Logger: logger}
}

func (i *Index) IndexUser(ctx context.Context, u *entity.User) error {
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"xp":         u.XP,
		"level":      u.Level,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	return i.put(ctx, i.UsersIndex, u.ID, doc)
}

func (i *Index) IndexVehicle(ctx context.Context, c *entity.Content) error {
	return i.put(ctx, i.VehiclesIndex, c.ID, application.SummarizeVehicle(c))
}

func (i *Index) put(ctx context.Context, index, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: index, DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if i.Logger != nil {
			i.Logger.WithField("status", res.Status()).WithField("index", index).WithField("doc_id", id).Warn("es index response error")
		}
		return fmt.Errorf("es index %s: %s", index, res.Status())
	}
	return nil
}

func (i *Index) SearchUsers(ctx context.Context, q string, size int) ([]application.UserSummary, error) {
	out := make([]application.UserSummary, 0)
	err := i.search(ctx, i.UsersIndex, q, []string{"name^2", "email"}, size, func(raw json.RawMessage) error {
		var u application.UserSummary
		if err := json.Unmarshal(raw, &u); err != nil {
			return err
		}
		if u.Following == nil {
			u.Following = []string{}
		}
		if u.Followers == nil {
			u.Followers = []string{}
		}
		out = append(out, u)
		return nil
	})
	return out, err
}

func (i *Index) SearchVehicles(ctx context.Context, q string, size int) ([]application.VehicleSummary, error) {
	out := make([]application.VehicleSummary, 0)
	err := i.search(ctx, i.VehiclesIndex, q, []string{"model^2", "nickname"}, size, func(raw json.RawMessage) error {
		var v application.VehicleSummary
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// search runs a multi_match query and hands every hit's _source to each.
func (i *Index) search(ctx context.Context, index, q string, fields []string, size int, each func(json.RawMessage) error) error {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.ES.Search(i.ES.Search.WithContext(c), i.ES.Search.WithIndex(index), i.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("es search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	for _, h := range parsed.Hits.Hits {
		if err := each(h.Source); err != nil {
			return err
		}
	}
	return nil
}

var _ application.SearchIndex = (*Index)(nil)
