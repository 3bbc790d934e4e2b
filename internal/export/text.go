package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

var separator = strings.Repeat("-", 20)

// Text writes a plain-text digest, one block per article.
func Text(w io.Writer, articles []model.Article) error {
	bw := bufio.NewWriter(w)
	for _, a := range articles {
		fmt.Fprintf(bw, "## %s\n", orMissing(a.Title))
		fmt.Fprintf(bw, "- Category: %s\n", orMissing(a.Category))
		fmt.Fprintf(bw, "- Keywords: %s\n", strings.Join(a.Keywords, ", "))
		fmt.Fprintf(bw, "- URL: %s\n\n", orMissing(a.URL))
		fmt.Fprintf(bw, "%s\n", orMissing(a.Summary))
		fmt.Fprintf(bw, "%s\n\n", separator)
	}
	return eris.Wrap(bw.Flush(), "export: write text")
}
