package search

import (
	"testing"
)

const sampleResultsPage = `<html><head><script>
var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[
{"videoRenderer":{"videoId":"abc123","title":{"runs":[{"text":"첫번째 동영상"}]}}},
{"adSlotRenderer":{"something":"else"}},
{"reelWatchEndpoint":{"videoId":"short99","headline":{"simpleText":"숏츠 제목"}}},
{"videoRenderer":{"videoId":"def456","title":{"runs":[{"text":"두번째 동영상"}]}}}
]}}]}}}}};
var other = 1;
</script></head><body></body></html>`

func TestParseInitialData(t *testing.T) {
	results, err := parseInitialData([]byte(sampleResultsPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}

	want := []VideoResult{
		{Type: "video", Title: "첫번째 동영상", Href: "https://www.youtube.com/watch?v=abc123"},
		{Type: "shorts", Title: "숏츠 제목", Href: "https://www.youtube.com/shorts/short99"},
		{Type: "video", Title: "두번째 동영상", Href: "https://www.youtube.com/watch?v=def456"},
	}
	for i, w := range want {
		if results[i] != w {
			t.Errorf("result[%d] = %+v, want %+v", i, results[i], w)
		}
	}
}

func TestExtractInitialData(t *testing.T) {
	testCases := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{"Simple", `var ytInitialData = {"a":1};`, `{"a":1}`, false},
		{"TrailingScript", `x; var ytInitialData = {"a":{"b":2}}; var y = 3;`, `{"a":{"b":2}}`, false},
		{"Missing", `<html></html>`, "", true},
		{"Unterminated", `var ytInitialData = {"a":1`, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractInitialData(tc.page)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
