package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// listFlags are the query parameters accepted by list endpoints.
type listFlags struct {
	page   int
	limit  int
	search string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "items per page")
	cmd.Flags().StringVar(&f.search, "search", "", "filter by name")
}

func (f *listFlags) values() (url.Values, error) {
	if f.page < 0 {
		return nil, userError("invalid flag", fmt.Errorf("--page must not be negative"))
	}
	if f.limit < 0 {
		return nil, userError("invalid flag", fmt.Errorf("--limit must not be negative"))
	}
	q := url.Values{}
	if f.page > 0 {
		q.Set("page", strconv.Itoa(f.page))
	}
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	if f.search != "" {
		q.Set("search", f.search)
	}
	return q, nil
}
