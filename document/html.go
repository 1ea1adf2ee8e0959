package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	htmlHeadingRe   = regexp.MustCompile(`(?s)<h([1-6])>(.*?)</h[1-6]>`)
	htmlParagraphRe = regexp.MustCompile(`<p>`)
	htmlListItemRe  = regexp.MustCompile(`<li>`)
	markdownSpecial = strings.NewReplacer(
		`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
		"<", `\<`, ">", `\>`, "#", `\#`, "`", "\\`",
	)
)

// leadingListMarker matches text goldmark would read as an ordered item.
var leadingListMarker = regexp.MustCompile(`^(\d+)([.)])`)

var htmlHeadingSizes = map[string]string{
	"1": "28px",
	"2": "22px",
	"3": "18px",
}

// RenderHTML writes d as a standalone HTML page with pictures inlined as
// data URIs.
func RenderHTML(d *Document, w io.Writer) error {
	md, title, err := toMarkdown(d)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	body := styleHTML(buf.String(), textColor(d))

	_, err = fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body style=\"max-width:760px;margin:2em auto;font-family:Georgia,serif;line-height:1.6;\">\n%s</body>\n</html>\n",
		escapeXML(title), body)
	return err
}

func toMarkdown(d *Document) (md, title string, err error) {
	var b strings.Builder
	inList := false
	for _, n := range d.Nodes {
		if inList && n.Kind != KindBullet {
			b.WriteString("\n")
			inList = false
		}
		switch n.Kind {
		case KindTitle:
			title = n.Text
			fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(n.Text))
		case KindHeading:
			fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", n.Level), escapeMarkdown(n.Text))
		case KindBullet:
			text := escapeMarkdown(n.Text)
			if n.Bold {
				text = "**" + text + "**"
			}
			fmt.Fprintf(&b, "- %s\n", text)
			inList = true
		case KindParagraph:
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(n.Text))
		case KindImage:
			uri, err := dataURI(n.ImagePath)
			if err != nil {
				return "", "", err
			}
			fmt.Fprintf(&b, "![](%s)\n\n", uri)
		}
	}
	return b.String(), title, nil
}

// escapeMarkdown makes text render literally, so a node never turns into
// a list or heading it was not in the document model.
func escapeMarkdown(text string) string {
	text = markdownSpecial.Replace(text)
	if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		return `\` + text
	}
	return leadingListMarker.ReplaceAllString(text, `$1\$2`)
}

func dataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading picture %s: %w", path, err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// textColor is the colour shared by the text nodes; black when unset.
func textColor(d *Document) string {
	for _, n := range d.Nodes {
		if n.Kind != KindImage {
			return colorOrBlack(n.Color)
		}
	}
	return Black
}

// styleHTML inlines heading sizes, paragraph justification and the text
// colour so the page looks the same when pasted into an editor.
func styleHTML(html, color string) string {
	html = htmlHeadingRe.ReplaceAllStringFunc(html, func(block string) string {
		parts := htmlHeadingRe.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		size := htmlHeadingSizes[parts[1]]
		if size == "" {
			size = "16px"
		}
		align := ""
		if parts[1] == "1" {
			align = "text-align:center;"
		}
		return fmt.Sprintf(`<h%s style="font-size:%s;%scolor:#%s;">%s</h%s>`, parts[1], size, align, color, strings.TrimSpace(parts[2]), parts[1])
	})
	html = htmlParagraphRe.ReplaceAllString(html, fmt.Sprintf(`<p style="text-align:justify;color:#%s;">`, color))
	html = htmlListItemRe.ReplaceAllString(html, fmt.Sprintf(`<li style="color:#%s;">`, color))
	return html
}
