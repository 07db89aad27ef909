package epubtext_test

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/simp-lee/epubtext"
)

func ExampleRun() {
	stats, err := epubtext.Run([]string{"testdata/book.epub"}, "book.txt", epubtext.Options{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d paragraphs, %d lines appended\n", stats.Paragraphs, stats.Lines)
}

func ExampleNewExtractor() {
	e := epubtext.NewExtractor(os.Stdout, epubtext.Options{KeepGoing: true})
	if err := e.ExtractFile("testdata/book.epub"); err != nil {
		log.Fatal(err)
	}
}

func ExampleParse() {
	doc := `<html xmlns="http://www.w3.org/1999/xhtml"><body>
<p>Call me Ishmael.</p>
<p>Some years ago <em>never mind</em> how long.</p>
<p><em>Inline only</em></p>
</body></html>`

	root, err := epubtext.Parse(strings.NewReader(doc), epubtext.Options{})
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range root.FindAll("p") {
		fmt.Printf("%q\n", p.Text)
	}
	// Output:
	// "Call me Ishmael."
	// "Some years ago "
	// ""
}
