package render

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/lottie2gif/internal/lottie"
)

//go:embed lottie.html
var pageTemplate string

const (
	placeholderPlayer = "{{PLAYER}}"
	placeholderData   = "{{LOTTIE_DATA}}"
	placeholderWidth  = "{{WIDTH}}"
	placeholderHeight = "{{HEIGHT}}"
	placeholderMode   = "{{MODE}}"
)

// PlayerTag turns a player reference into a script tag. A path to an existing
// file is inlined so the page also works offline; anything else is used as src.
func PlayerTag(script string) (string, error) {
	if fi, err := os.Stat(script); err == nil && !fi.IsDir() {
		js, err := os.ReadFile(script)
		if err != nil {
			return "", err
		}
		return "<script>" + escapeScript(string(js)) + "</script>", nil
	}
	if script == "" {
		return "", fmt.Errorf("не задан скрипт плеера")
	}
	return `<script src="` + script + `"></script>`, nil
}

// Page fills the page template for one document. Substitution is a single
// pass, so placeholder words inside the document data stay untouched.
func Page(doc *lottie.Document, playerTag, mode string) []byte {
	if mode == "" {
		mode = "svg"
	}
	r := strings.NewReplacer(
		placeholderPlayer, playerTag,
		placeholderData, escapeScript(string(doc.Raw)),
		placeholderWidth, strconv.Itoa(doc.Width),
		placeholderHeight, strconv.Itoa(doc.Height),
		placeholderMode, mode,
	)
	return []byte(r.Replace(pageTemplate))
}

// escapeScript keeps "</script>" inside data from closing the script element.
// "<\/" is equivalent to "</" in both JSON strings and JavaScript.
func escapeScript(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
