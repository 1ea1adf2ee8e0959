// Package document holds the format-neutral article model and renders it to
// DOCX, PDF or HTML.
package document

import (
	"fmt"
	"strconv"
)

// Kind identifies the structural role of a node.
type Kind int

const (
	KindTitle Kind = iota
	KindHeading
	KindBullet
	KindParagraph
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	case KindParagraph:
		return "paragraph"
	case KindImage:
		return "image"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Alignment of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignJustify
)

// Black is the colour every run ends up with.
const Black = "000000"

// Node is one block of the document. Text nodes carry a single run.
type Node struct {
	Kind  Kind
	Text  string
	Level int
	Bold  bool
	Align Alignment
	// Color is an RRGGBB hex string; empty means renderer default.
	Color string

	ImagePath string
	WidthIn   float64
	HeightIn  float64
}

// Document is an ordered list of nodes built incrementally.
type Document struct {
	Nodes []Node
}

func New() *Document { return &Document{} }

// AddTitle adds the level-0 title.
func (d *Document) AddTitle(text string) {
	d.Nodes = append(d.Nodes, Node{Kind: KindTitle, Text: text, Level: 0, Align: AlignCenter})
}

// AddHeading adds a heading at level (1-3).
func (d *Document) AddHeading(text string, level int) {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	d.Nodes = append(d.Nodes, Node{Kind: KindHeading, Text: text, Level: level, Bold: true})
}

// AddBullet adds a bulleted list item.
func (d *Document) AddBullet(text string, bold bool) {
	d.Nodes = append(d.Nodes, Node{Kind: KindBullet, Text: text, Bold: bold})
}

// AddParagraph adds a plain paragraph.
func (d *Document) AddParagraph(text string, align Alignment) {
	d.Nodes = append(d.Nodes, Node{Kind: KindParagraph, Text: text, Align: align})
}

// AddPicture adds an image stored at path, sized in inches.
func (d *Document) AddPicture(path string, widthIn, heightIn float64) {
	d.Nodes = append(d.Nodes, Node{Kind: KindImage, ImagePath: path, WidthIn: widthIn, HeightIn: heightIn})
}

// ForceTextColor sets the colour of every text node in the document.
func (d *Document) ForceTextColor(hex string) {
	for i := range d.Nodes {
		if d.Nodes[i].Kind != KindImage {
			d.Nodes[i].Color = hex
		}
	}
}

// Count returns how many nodes of kind k the document has.
func (d *Document) Count(k Kind) int {
	n := 0
	for _, node := range d.Nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}

// parseHex turns "RRGGBB" into components; bad input yields black.
func parseHex(hex string) (r, g, b int) {
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func colorOrBlack(hex string) string {
	if hex == "" {
		return Black
	}
	r, g, b := parseHex(hex)
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}
