package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/kailas-cloud/docsearch/pkg/client"
)

var (
	okText    = color.New(color.FgGreen).SprintFunc()
	warnText  = color.New(color.FgYellow).SprintFunc()
	errText   = color.New(color.FgRed, color.Bold).SprintFunc()
	faintText = color.New(color.Faint).SprintFunc()
	boldText  = color.New(color.Bold).SprintFunc()
)

const snippetLen = 80

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %v\n", errText("error:"), err)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func printDocument(w io.Writer, doc *client.Document) {
	_, _ = fmt.Fprintf(w, "%s %s\n", boldText(doc.Title), faintText("("+doc.ID+")"))
	_, _ = fmt.Fprintf(w, "%s %s  %s %s\n",
		faintText("type:"), doc.FileType,
		faintText("created:"), doc.CreatedAt.Local().Format(time.DateTime))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, doc.Content)
}

func printHits(w io.Writer, res *client.SearchResult, mode client.SearchMode) {
	if res.Degraded {
		_, _ = fmt.Fprintln(w, warnText("semantic search unavailable, showing keyword results only"))
	}
	if len(res.Hits) == 0 {
		_, _ = fmt.Fprintln(w, faintText("no results"))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tID\tTITLE\tKEYWORD\tSEMANTIC\tHYBRID\tSNIPPET")
	for i := range res.Hits {
		h := &res.Hits[i]
		hybrid := "-"
		if h.HybridScore != nil {
			hybrid = fmt.Sprintf("%.4f", *h.HybridScore)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%.4f\t%s\t%s\n",
			i+1, h.ID, h.Title, h.KeywordScore, h.SemanticScore, hybrid, snippet(h.Content))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "%s\n", faintText(fmt.Sprintf("%d result(s), mode %s", len(res.Hits), modeLabel(mode))))
}

func modeLabel(m client.SearchMode) string {
	if m == "" {
		return "default"
	}
	return string(m)
}

// snippet flattens whitespace and cuts content to snippetLen runes.
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen-3]) + "..."
}
