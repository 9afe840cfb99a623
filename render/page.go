package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultCutMarker separates the three parts of a page template.
const DefaultCutMarker = "<!-- CUT HERE -->"

// ErrPageParts is returned when a template does not split into exactly three parts.
var ErrPageParts = errors.New("render: template must contain the cut marker exactly twice")

// Page is the static frame around the rendered blocks:
// Before, card blocks, AfterCards, question blocks, After.
type Page struct {
	Before, AfterCards, After string
}

// ParsePage splits src on marker.
func ParsePage(src, marker string) (Page, error) {
	if marker == "" {
		marker = DefaultCutMarker
	}
	parts := strings.Split(src, marker)
	if len(parts) != 3 {
		return Page{}, fmt.Errorf("%w (found %d)", ErrPageParts, len(parts)-1)
	}

	return Page{Before: parts[0], AfterCards: parts[1], After: parts[2]}, nil
}

// LoadPage reads and splits the template at path; an empty path yields DefaultPage.
func LoadPage(path, marker string) (Page, error) {
	if path == "" {
		return DefaultPage(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("render: read template: %w", err)
	}

	return ParsePage(string(data), marker)
}

// DefaultPage is a minimal standalone page with client-side math and a
// local "forget" list for question blocks.
func DefaultPage() Page {
	p, _ := ParsePage(defaultTemplate, DefaultCutMarker)
	return p
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Cards</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css">
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"></script>
<style>
body { max-width: 50em; margin: auto; font-family: sans-serif; }
.entry h1 { font-size: 1.4em; }
a.tag { text-decoration: none; margin-right: .3em; }
a.tag.colloq { color: darkorange; }
a.tag.question { color: crimson; }
.forgotten { display: none; }
</style>
</head>
<body>
<main id="cards">
<!-- CUT HERE -->
</main>
<section id="questions">
<!-- CUT HERE -->
</section>
<script>
function forget(id) {
  const gone = JSON.parse(localStorage.getItem("forgotten") || "[]");
  gone.push(id);
  localStorage.setItem("forgotten", JSON.stringify(gone));
  document.getElementById(id).parentElement.classList.add("forgotten");
  return false;
}
document.addEventListener("DOMContentLoaded", function () {
  for (const id of JSON.parse(localStorage.getItem("forgotten") || "[]")) {
    const el = document.getElementById(id);
    if (el) el.parentElement.classList.add("forgotten");
  }
  for (const el of document.querySelectorAll("code")) {
    const prev = el.previousSibling, next = el.nextSibling;
    if (prev && next && prev.nodeType === 3 && next.nodeType === 3 &&
        prev.textContent.endsWith("$") && next.textContent.startsWith("$")) {
      prev.textContent = prev.textContent.slice(0, -1);
      next.textContent = next.textContent.slice(1);
      katex.render(el.textContent, el, { throwOnError: false });
    }
  }
});
</script>
</body>
</html>
`
