package opendata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/jarcoal/httpmock"
)

const testBaseURL = "https://trees.example/records"

// setupHTTPMock activates httpmock and returns after registering cleanup.
func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

// registerCollection serves a synthetic collection of total records, honoring
// rows/start pagination the way the source endpoint does. It records the
// start offsets requested, in order.
func registerCollection(t *testing.T, total int, starts *[]int) {
	t.Helper()
	httpmock.RegisterResponder("GET", `=~^https://trees\.example/records/`,
		func(req *http.Request) (*http.Response, error) {
			rows, _ := strconv.Atoi(req.URL.Query().Get("rows"))
			start, _ := strconv.Atoi(req.URL.Query().Get("start"))
			if starts != nil {
				*starts = append(*starts, start)
			}
			body := map[string]any{
				"total_count": total,
				"results":     makeResults(start, rows, total),
			}
			return httpmock.NewJsonResponse(http.StatusOK, body)
		})
}

func makeResults(start, rows, total int) []map[string]any {
	var out []map[string]any
	for i := start; i < start+rows && i < total; i++ {
		out = append(out, map[string]any{
			"arbres_idbase": 1000 + i,
			"arbres_genre":  fmt.Sprintf("Genus%d", i),
		})
	}
	return out
}

func TestPagesWalksWholeCollection(t *testing.T) {
	setupHTTPMock(t)
	var starts []int
	registerCollection(t, 250, &starts)

	client := NewClient(testBaseURL, 100, 0, nil)
	var got []RawRecord
	total, pages, err := client.Pages(context.Background(), func(records []RawRecord) error {
		got = append(got, records...)
		return nil
	})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if total != 250 {
		t.Fatalf("total = %d, want 250", total)
	}
	if pages != 3 {
		t.Fatalf("pages = %d, want 3", pages)
	}
	if len(got) != 250 {
		t.Fatalf("records = %d, want 250", len(got))
	}
	// probe plus three pages, offsets strictly ascending
	want := []int{0, 0, 100, 200}
	if len(starts) != len(want) {
		t.Fatalf("requests = %v, want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("requests = %v, want %v", starts, want)
		}
	}
	if first := got[0].IDBase; first == nil || *first != 1000 {
		t.Fatalf("first record = %v, want id 1000", first)
	}
	if last := got[249].IDBase; last == nil || *last != 1249 {
		t.Fatalf("last record = %v, want id 1249", last)
	}
}

func TestPagesEmptyCollection(t *testing.T) {
	setupHTTPMock(t)
	var starts []int
	registerCollection(t, 0, &starts)

	client := NewClient(testBaseURL, 100, 0, nil)
	calls := 0
	total, pages, err := client.Pages(context.Background(), func([]RawRecord) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if total != 0 || pages != 0 || calls != 0 {
		t.Fatalf("total=%d pages=%d calls=%d, want all zero", total, pages, calls)
	}
	if len(starts) != 1 {
		t.Fatalf("requests = %v, want probe only", starts)
	}
}

func TestPagesAbortsOnPageError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", `=~^https://trees\.example/records/`,
		func(req *http.Request) (*http.Response, error) {
			start, _ := strconv.Atoi(req.URL.Query().Get("start"))
			if start >= 100 {
				return httpmock.NewStringResponse(http.StatusNotFound, "gone"), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"total_count": 150,
				"results":     makeResults(start, 100, 150),
			})
		})

	client := NewClient(testBaseURL, 100, 0, nil)
	var got []RawRecord
	_, pages, err := client.Pages(context.Background(), func(records []RawRecord) error {
		got = append(got, records...)
		return nil
	})
	if err == nil {
		t.Fatal("expected error from second page")
	}
	if pages != 1 {
		t.Fatalf("pages = %d, want 1 delivered before failure", pages)
	}
	if len(got) != 100 {
		t.Fatalf("records = %d, want the single complete page", len(got))
	}
}

func TestFetchRetriesTransientFailure(t *testing.T) {
	setupHTTPMock(t)
	attempts := 0
	httpmock.RegisterResponder("GET", `=~^https://trees\.example/records/`,
		func(req *http.Request) (*http.Response, error) {
			attempts++
			if attempts == 1 {
				return httpmock.NewStringResponse(http.StatusBadGateway, "upstream"), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"total_count": 0,
				"results":     []any{},
			})
		})

	client := NewClient(testBaseURL, 100, 2, nil)
	total, err := client.Total(context.Background())
	if err != nil {
		t.Fatalf("Total after retry: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestFetchDoesNotRetryClientError(t *testing.T) {
	setupHTTPMock(t)
	attempts := 0
	httpmock.RegisterResponder("GET", `=~^https://trees\.example/records/`,
		func(*http.Request) (*http.Response, error) {
			attempts++
			return httpmock.NewStringResponse(http.StatusForbidden, "denied"), nil
		})

	client := NewClient(testBaseURL, 100, 5, nil)
	if _, err := client.Total(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 for a permanent error", attempts)
	}
}

func TestFetchAll(t *testing.T) {
	setupHTTPMock(t)
	registerCollection(t, 42, nil)

	client := NewClient(testBaseURL, 20, 0, nil)
	all, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 42 {
		t.Fatalf("records = %d, want 42", len(all))
	}
}
