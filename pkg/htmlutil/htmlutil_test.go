package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestGetStrippedText(t *testing.T) {
	doc := parse(t, `<table><tr><td> <a href="/t/1"> Иванов </a>
		<br> И.И. </td></tr></table>`)
	cell := doc.Find("td").Nodes[0]

	require.Equal(t, "ИвановИ.И.", GetStrippedText(cell))
	require.Contains(t, GetText(cell), " Иванов ")
}

func TestTextNodesSkipsScripts(t *testing.T) {
	doc := parse(t, `<html><head><script>var a = "Группа 1";</script></head>
		<body><p>Группа 09.07.13п1</p></body></html>`)

	var joined []string
	for _, text := range TextNodes(doc) {
		if strings.TrimSpace(text) != "" {
			joined = append(joined, strings.TrimSpace(text))
		}
	}
	require.Equal(t, []string{"Группа 09.07.13п1"}, joined)
}

func TestFirstHref(t *testing.T) {
	doc := parse(t, `<div><a>no href</a><a href="a.html">a</a><a href="b.html">b</a></div>`)
	href, ok := FirstHref(doc.Find("div"))
	require.True(t, ok)
	require.Equal(t, "a.html", href)

	_, ok = FirstHref(doc.Find("a").First())
	require.False(t, ok)
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "Математика к/п", CollapseWhitespace("  Математика\n\t к/п "))
	require.Equal(t, "", CollapseWhitespace(" \n "))
}
