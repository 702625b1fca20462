package viberate

import (
	"strings"

	"golang.org/x/net/html"
)

func parseProfile(doc *html.Node) *RawProfile {
	profile := &RawProfile{
		Socials:   make(map[string]string),
		TopSongs:  make([]RawSong, 0),
		TopVideos: make([]RawVideo, 0),
	}

	if header := findNodeByClass(doc, "artist-name"); header != nil {
		profile.Name = getTextContent(header)
	}

	if listeners := findNodeByAttribute(doc, "data-stat", "spotify-monthly-listeners"); listeners != nil {
		profile.MonthlyListeners = getTextContent(listeners)
	}

	for _, node := range findNodesByClass(doc, "social-stat") {
		platform := getAttribute(node, "data-platform")
		value := findNodeByClass(node, "stat-value")

		if platform != "" && value != nil {
			profile.Socials[strings.ToLower(platform)] = getTextContent(value)
		}
	}

	for _, row := range findNodesByClass(doc, "track-row") {
		song := RawSong{}

		if link := findNodeByTag(row, "a"); link != nil {
			song.Title = getTextContent(link)
			song.Url = getAttribute(link, "href")
		}

		if streams := findNodeByClass(row, "track-streams"); streams != nil {
			song.Streams = getTextContent(streams)
		}

		if song.Title != "" {
			profile.TopSongs = append(profile.TopSongs, song)
		}
	}

	for _, row := range findNodesByClass(doc, "video-row") {
		video := RawVideo{}

		if link := findNodeByTag(row, "a"); link != nil {
			video.Title = getTextContent(link)
			video.Url = getAttribute(link, "href")
		}

		if views := findNodeByClass(row, "video-views"); views != nil {
			video.Views = getTextContent(views)
		}

		if video.Url != "" {
			profile.TopVideos = append(profile.TopVideos, video)
		}
	}

	return profile
}

func hasClass(node *html.Node, className string) bool {
	for _, class := range strings.Fields(getAttribute(node, "class")) {
		if class == className {
			return true
		}
	}

	return false
}

func findNodeByClass(node *html.Node, className string) *html.Node {
	nodes := findNodes(node, func(n *html.Node) bool { return hasClass(n, className) }, true)

	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

func findNodesByClass(node *html.Node, className string) []*html.Node {
	return findNodes(node, func(n *html.Node) bool { return hasClass(n, className) }, false)
}

func findNodeByTag(node *html.Node, tagName string) *html.Node {
	nodes := findNodes(node, func(n *html.Node) bool { return n.Data == tagName }, true)

	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

func findNodeByAttribute(node *html.Node, key string, value string) *html.Node {
	nodes := findNodes(node, func(n *html.Node) bool { return getAttribute(n, key) == value }, true)

	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

func findNodes(node *html.Node, match func(*html.Node) bool, first bool) []*html.Node {
	var nodes []*html.Node

	var find func(*html.Node)
	find = func(n *html.Node) {
		if first && len(nodes) > 0 {
			return
		}

		if n.Type == html.ElementNode && match(n) {
			nodes = append(nodes, n)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			find(child)
		}
	}

	find(node)

	return nodes
}

func getAttribute(node *html.Node, attrName string) string {
	for _, attr := range node.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}

	return ""
}

func getTextContent(node *html.Node) string {
	var builder strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}

	collect(node)

	return strings.Join(strings.Fields(builder.String()), " ")
}
