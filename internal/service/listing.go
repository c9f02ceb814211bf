package service

import "nlb-mcp/internal/normalize"

// MaxTitles is how many titles a search returns.
const MaxTitles = 5

// TitleListing is the trimmed search result handed back to tool callers.
type TitleListing struct {
	TotalRecords      *int64       `json:"totalRecords,omitempty"`
	Count             *int64       `json:"count,omitempty"`             // never more than len(Titles)
	HasMoreRecords    *bool        `json:"hasMoreRecords,omitempty"`
	NextRecordsOffset *int64       `json:"nextRecordsOffset,omitempty"` // pass back as offset for the next page
	SetID             *int64       `json:"setId,omitempty"`             // pass back as set_id for the next page
	Titles            []BriefTitle `json:"titles"`
}

// BriefTitle is a title reduced to what an assistant needs to pick a record.
type BriefTitle struct {
	Title   string        `json:"title,omitempty"`
	Author  string        `json:"author,omitempty"`
	Records []BriefRecord `json:"records"`
}

// BriefRecord identifies one record and its format.
type BriefRecord struct {
	BRN          *int64 `json:"brn,omitempty"`
	Format       string `json:"format,omitempty"`
	Availability *bool  `json:"availability,omitempty"`
}

// NewTitleListing keeps the first max titles of a normalized result.
func NewTitleListing(res normalize.TitlesResult, max int) TitleListing {
	titles := res.Titles
	if len(titles) > max {
		titles = titles[:max]
	}

	out := TitleListing{
		TotalRecords:      res.TotalRecords,
		HasMoreRecords:    res.HasMoreRecords,
		NextRecordsOffset: res.NextRecordsOffset,
		SetID:             res.SetID,
		Titles:            make([]BriefTitle, 0, len(titles)),
	}
	if res.Count != nil {
		n := *res.Count
		if n > int64(len(titles)) {
			n = int64(len(titles))
		}
		out.Count = &n
	}

	for _, t := range titles {
		bt := BriefTitle{
			Title:   t.Title,
			Author:  t.Author,
			Records: make([]BriefRecord, 0, len(t.Records)),
		}
		for _, r := range t.Records {
			bt.Records = append(bt.Records, BriefRecord{
				BRN:          r.BRN,
				Format:       r.Format.Label(),
				Availability: r.Availability,
			})
		}
		out.Titles = append(out.Titles, bt)
	}
	return out
}
