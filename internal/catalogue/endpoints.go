package catalogue

import (
	"context"
	"net/url"
	"strconv"
)

// Endpoint paths under the catalogue base URL
const (
	PathSearchTitles        = "/SearchTitles"
	PathGetTitles           = "/GetTitles"
	PathGetAvailabilityInfo = "/GetAvailabilityInfo"
)

// SearchTitlesParams are the inputs of /SearchTitles
type SearchTitlesParams struct {
	Keywords   string
	Source     string
	Limit      int
	SortFields string
}

// Values builds the query string; zero values are omitted
func (p SearchTitlesParams) Values() url.Values {
	v := url.Values{}
	v.Set("Keywords", p.Keywords)
	setString(v, "Source", p.Source)
	setPositive(v, "Limit", p.Limit)
	setString(v, "SortFields", p.SortFields)
	return v
}

// GetTitlesParams are the inputs of /GetTitles
type GetTitlesParams struct {
	Keywords   string
	Title      string
	Author     string
	Subject    string
	ISBN       string
	Limit      int
	SortFields string
	// SetID and Offset are sent whenever set, including 0
	SetID  *int
	Offset *int
}

// Values builds the query string; zero values are omitted
func (p GetTitlesParams) Values() url.Values {
	v := url.Values{}
	setString(v, "Keywords", p.Keywords)
	setString(v, "Title", p.Title)
	setString(v, "Author", p.Author)
	setString(v, "Subject", p.Subject)
	setString(v, "ISBN", p.ISBN)
	setPositive(v, "Limit", p.Limit)
	setString(v, "SortFields", p.SortFields)
	if p.SetID != nil {
		v.Set("SetId", strconv.Itoa(*p.SetID))
	}
	if p.Offset != nil {
		v.Set("Offset", strconv.Itoa(*p.Offset))
	}
	return v
}

// AvailabilityParams are the inputs of /GetAvailabilityInfo
type AvailabilityParams struct {
	BID       string
	ISBN      string
	ControlNo string
	BranchID  string
}

// Values builds the query string; empty values are omitted
func (p AvailabilityParams) Values() url.Values {
	v := url.Values{}
	setString(v, "BID", p.BID)
	setString(v, "ISBN", p.ISBN)
	setString(v, "ControlNo", p.ControlNo)
	setString(v, "BranchID", p.BranchID)
	return v
}

// SearchTitles calls /SearchTitles
func (c *Client) SearchTitles(ctx context.Context, p SearchTitlesParams) (interface{}, error) {
	return c.GetJSON(ctx, PathSearchTitles, p.Values())
}

// GetTitles calls /GetTitles
func (c *Client) GetTitles(ctx context.Context, p GetTitlesParams) (interface{}, error) {
	return c.GetJSON(ctx, PathGetTitles, p.Values())
}

// GetAvailabilityInfo calls /GetAvailabilityInfo
func (c *Client) GetAvailabilityInfo(ctx context.Context, p AvailabilityParams) (interface{}, error) {
	return c.GetJSON(ctx, PathGetAvailabilityInfo, p.Values())
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPositive(v url.Values, key string, value int) {
	if value > 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
