// Package notion stores sink rows as pages of a Notion database and reads
// them back.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond matches Notion's published average request limit.
const DefaultRequestsPerSecond = 3

// Client is the subset of the Notion API the row sink needs: one page per
// row on append, a database query to read rows back.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// Option configures a Client.
type Option func(*rowClient)

// WithRateLimit throttles requests to rps. Zero or less sends requests
// unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *rowClient) {
		c.limiter = nil
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type rowClient struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

// NewClient authenticates with an integration token. Requests are throttled
// to DefaultRequestsPerSecond unless overridden.
func NewClient(token string, opts ...Option) Client {
	c := &rowClient{
		api:     notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(DefaultRequestsPerSecond, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *rowClient) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "notion: wait for rate limiter")
	}
	return nil
}

// QueryDatabase reads one page of rows.
func (c *rowClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: query rows in database %s", dbID)
	}
	return resp, nil
}

// CreatePage stores one row.
func (c *rowClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	page, err := c.api.Page.Create(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "notion: create row page")
	}
	return page, nil
}
