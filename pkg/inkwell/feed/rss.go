package feed

import "encoding/xml"

// RSS 2.0 document structure. Defined by hand so each item can carry one
// <category> element per tag.

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []Item `xml:"item"`
}

type Item struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

// truncate shortens content to at most limit characters, appending an
// ellipsis marker when anything was cut.
func truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
