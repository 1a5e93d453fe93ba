package pagination

import (
	"encoding/base64"
	"encoding/json"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

// Pagination carries the cursor query parameters shared by list endpoints.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Limit clamps the requested page size into [1, maxPageSize].
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return defaultPageSize
	}
	if p.PageSize > maxPageSize {
		return maxPageSize
	}
	return p.PageSize
}

// Cursor is the decoded page token. Key holds the outer sort key of the
// keyset (a year_month for settlements); ID is the row tiebreaker.
type Cursor struct {
	Key string `json:"key,omitempty"`
	ID  string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// TrimPage trims an over-fetched result set (limit+1 rows) and derives the
// next-page token from the last visible row.
func TrimPage[T any](rows []T, limit int, cursorFor func(T) Cursor) ([]T, *PageInfo, error) {
	info := &PageInfo{}
	if len(rows) <= limit {
		return rows, info, nil
	}

	rows = rows[:limit]
	token, err := EncodeCursor(cursorFor(rows[len(rows)-1]))
	if err != nil {
		return nil, nil, err
	}
	info.HasMore = true
	info.NextPageToken = token
	return rows, info, nil
}
