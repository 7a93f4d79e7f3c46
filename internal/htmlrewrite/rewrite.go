// Package htmlrewrite replaces external <script src=...> tags in an HTML
// document with stubs that load the compiled bytecode of the same script,
// recording which scripts have to be compiled.
package htmlrewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/nwpack/internal/fsutil"
)

// BinExt is the extension given to compiled script outputs.
const BinExt = "bin"

const closeTag = "</script>"

var (
	openTagRe = regexp.MustCompile(`<script([ \t]+[^>]+)?>`)
	srcAttrRe = regexp.MustCompile(`[ \t]+src=(?:"([^"']+)"|'([^"']+)')`)
)

// Targets maps an original script src to the relative path of its compiled
// output.
type Targets map[string]string

// Merge copies every entry of other into t.
func (t Targets) Merge(other Targets) {
	for src, out := range other {
		t[src] = out
	}
}

// LoaderStub returns the inline script that loads the compiled script at
// binPath in place of the original tag.
func LoaderStub(binPath string) string {
	return fmt.Sprintf("<script>require('nw.gui').Window.get().evalNWBin(null, '%s');</script>", binPath)
}

// Rewrite scans html left to right and replaces every <script> element that
// carries a src attribute, from its opening tag through the next </script>,
// with a LoaderStub. Inline scripts are left byte-for-byte unchanged. An
// opening tag without a following </script> stops the scan and the rest of
// the document is kept as is.
func Rewrite(html string) (string, Targets) {
	targets := make(Targets)
	var out strings.Builder
	previous := 0
	pos := 0

	for pos < len(html) {
		loc := openTagRe.FindStringSubmatchIndex(html[pos:])
		if loc == nil {
			break
		}
		tagStart, tagEnd := pos+loc[0], pos+loc[1]

		closeIdx := strings.Index(html[tagEnd:], closeTag)
		if closeIdx < 0 {
			break
		}
		elemEnd := tagEnd + closeIdx + len(closeTag)

		var attrs string
		if loc[2] >= 0 {
			attrs = html[pos+loc[2] : pos+loc[3]]
		}
		if src := srcAttr(attrs); src != "" {
			binPath := fsutil.ReplaceExt(src, BinExt)
			out.WriteString(html[previous:tagStart])
			out.WriteString(LoaderStub(binPath))
			previous = elemEnd
			targets[src] = binPath
		}
		pos = elemEnd
	}

	out.WriteString(html[previous:])
	return out.String(), targets
}

func srcAttr(attrs string) string {
	m := srcAttrRe.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
