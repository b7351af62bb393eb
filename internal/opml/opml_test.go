package opml_test

import (
	"strings"
	"testing"

	"readr/internal/opml"

	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Tech">
      <outline text="Go Blog" title="The Go Blog" type="rss" xmlUrl="https://go.dev/blog/feed.atom" htmlUrl="https://go.dev/blog"/>
      <outline text="Languages">
        <outline text="Rust" xmlUrl="https://blog.rust-lang.org/feed.xml"/>
      </outline>
    </outline>
    <outline text="Loose" xmlUrl=" https://example.com/rss "/>
    <outline text="Tagged" category="News" xmlUrl="https://news.example.com/rss"/>
    <outline text="Empty folder"/>
  </body>
</opml>`

func TestParseAndFlatten(t *testing.T) {
	doc, err := opml.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, "Subscriptions", doc.Head.Title)

	entries := opml.Flatten(doc.Body.Outlines)
	require.Equal(t, []opml.Entry{
		{Category: "Tech", Title: "The Go Blog", URL: "https://go.dev/blog/feed.atom", HTMLURL: "https://go.dev/blog"},
		{Category: "Languages", Title: "Rust", URL: "https://blog.rust-lang.org/feed.xml"},
		{Title: "Loose", URL: "https://example.com/rss"},
		{Category: "News", Title: "Tagged", URL: "https://news.example.com/rss"},
	}, entries)
}

func TestParse_Invalid(t *testing.T) {
	_, err := opml.Parse(strings.NewReader("not xml at all"))
	require.Error(t, err)
}

func TestOutline_IsFeed(t *testing.T) {
	require.True(t, opml.Outline{Type: "Atom"}.IsFeed())
	require.True(t, opml.Outline{XMLURL: "https://example.com"}.IsFeed())
	require.False(t, opml.Outline{Text: "Folder"}.IsFeed())
}

func TestEncode_RoundTrip(t *testing.T) {
	doc := opml.Document{
		Head: opml.Head{Title: "readr"},
		Body: opml.Body{Outlines: []opml.Outline{{
			Text:  "News & Views",
			Title: "News & Views",
			Outlines: []opml.Outline{
				{Text: "Feed", Title: "Feed", Type: "rss", XMLURL: "https://example.com/rss?a=1&b=2"},
			},
		}}},
	}
	payload, err := opml.Encode(doc)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(payload), "<?xml"))
	require.Contains(t, string(payload), `version="2.0"`)
	require.Contains(t, string(payload), "News &amp; Views")

	parsed, err := opml.Parse(strings.NewReader(string(payload)))
	require.NoError(t, err)
	entries := opml.Flatten(parsed.Body.Outlines)
	require.Len(t, entries, 1)
	require.Equal(t, "News & Views", entries[0].Category)
	require.Equal(t, "https://example.com/rss?a=1&b=2", entries[0].URL)
}
