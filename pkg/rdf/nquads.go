package rdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral escapes s for use inside a quoted N-Quads literal.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// BlankNode returns the blank node label for a node identifier. The live
// loader stores the label as the value of the upsert predicate, so the
// identifier itself must be a valid label: letters, digits and underscore.
func BlankNode(id string) string {
	return "_:" + id
}

// FormatTriple renders a single triple as an N-Quads line without the
// trailing newline.
func FormatTriple(t common.Triple) string {
	var obj string
	switch {
	case t.Ref:
		obj = BlankNode(t.Object)
	case t.Datatype != "":
		obj = fmt.Sprintf(`"%s"^^<%s>`, EscapeLiteral(t.Object), t.Datatype)
	default:
		obj = `"` + EscapeLiteral(t.Object) + `"`
	}
	return fmt.Sprintf("%s <%s> %s .", BlankNode(t.Subject), t.Predicate, obj)
}

// WriteNQuads writes triples to w, one statement per line, in order.
func WriteNQuads(w io.Writer, triples []common.Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(FormatTriple(t)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes triples to path, replacing any previous content.
func WriteFile(path string, triples []common.Triple) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open interchange file: %w", err)
	}
	if err := WriteNQuads(f, triples); err != nil {
		f.Close()
		return fmt.Errorf("failed to write interchange file: %w", err)
	}
	return f.Close()
}
