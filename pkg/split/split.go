// Package split partitions a rendered document into size-bounded parts.
// The document is flattened into packable units (the global header, one unit
// per file block, the global footer) and packing is greedy over whole units:
// first the partition boundaries are decided against body size plus a fixed
// worst-case wrapper estimate, then each part's wrapper is rendered with its
// final numbers once the total count is known.
package split

import (
	"strconv"
	"strings"

	"promptpack/pkg/render"
	"promptpack/pkg/template"

	"go.uber.org/zap"
)

// Part is one self-contained chunk of the final output.
type Part struct {
	Number    int
	Total     int
	Files     []string // paths of the file blocks inside this part
	Text      string
	Oversized bool // a single unit larger than the limit; emitted with a warning
}

type unitKind int

const (
	unitHeader unitKind = iota
	unitBlock
	unitFooter
)

// unit is one indivisible piece of the document. The header unit is always
// first and the footer unit always last, so greedy packing lands the header
// in the first part and the footer in the last.
type unit struct {
	kind unitKind
	path string // block path; empty for header and footer
	text string
}

// Split partitions the document. When maxChars is zero or everything fits,
// the document is returned as a single part with no wrapper applied. A unit
// is never divided between parts: a unit that alone exceeds the limit
// becomes its own oversized part and only logs a warning.
func Split(doc *render.Document, part template.PartSection, maxChars int, logger *zap.Logger) []Part {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxChars <= 0 || fitsInSinglePart(doc, maxChars) {
		p := Part{Number: 1, Total: 1, Text: doc.Text()}
		for _, block := range doc.Blocks {
			p.Files = append(p.Files, block.Path)
		}
		return []Part{p}
	}

	units := docUnits(doc)
	overhead := wrapperOverhead(part, len(units))
	plan := pack(units, overhead, maxChars)
	return assemble(units, part, plan, maxChars, logger)
}

func docUnits(doc *render.Document) []unit {
	var units []unit
	if doc.Header != "" {
		units = append(units, unit{kind: unitHeader, text: doc.Header})
	}
	for _, block := range doc.Blocks {
		units = append(units, unit{kind: unitBlock, path: block.Path, text: block.Text})
	}
	if doc.Footer != "" {
		units = append(units, unit{kind: unitFooter, text: doc.Footer})
	}
	return units
}

func fitsInSinglePart(doc *render.Document, maxChars int) bool {
	total := len(doc.Footer)
	if doc.Header != "" {
		total += len(doc.Header) + 1
	}
	for _, block := range doc.Blocks {
		total += len(block.Text) + 1
	}
	return total <= maxChars
}

// wrapperOverhead estimates the character cost of the part wrapper with the
// numeric placeholders widened to the worst-case digit width (the unit count
// bounds the possible part count). The estimate can only over-reserve, so
// packed parts never overflow because of their wrapper.
func wrapperOverhead(part template.PartSection, unitCount int) int {
	wide := strings.Repeat("9", len(strconv.Itoa(unitCount)))

	overhead := len(renderWrapper(part.Header, wide, wide)) + 1
	overhead += len(renderWrapper(part.Footer, wide, wide)) + 1
	if part.Pending != "" {
		overhead += len(strings.ReplaceAll(part.Pending, template.TagPartsRemaining, wide)) + 1
	}
	return overhead
}

// pack decides the partition boundaries. Each entry is the unit index range
// [start, end) of one part.
func pack(units []unit, overhead, maxChars int) [][2]int {
	var plan [][2]int
	start := -1
	size := 0

	flush := func(end int) {
		if start >= 0 && end > start {
			plan = append(plan, [2]int{start, end})
			start = -1
			size = 0
		}
	}

	for i, u := range units {
		unitLen := len(u.text) + 1

		if unitLen+overhead > maxChars {
			// Oversized unit: close the current part and emit it alone.
			flush(i)
			plan = append(plan, [2]int{i, i + 1})
			continue
		}

		if start >= 0 && size+unitLen+overhead > maxChars {
			flush(i)
		}
		if start < 0 {
			start = i
		}
		size += unitLen
	}
	flush(len(units))

	return plan
}

// assemble renders each part now that the total count is known.
func assemble(units []unit, part template.PartSection, plan [][2]int, maxChars int, logger *zap.Logger) []Part {
	total := len(plan)
	parts := make([]Part, 0, total)

	for i, span := range plan {
		number := strconv.Itoa(i + 1)
		last := i == total-1

		var b strings.Builder
		b.WriteString(renderWrapper(part.Header, number, strconv.Itoa(total)))
		b.WriteString("\n")

		p := Part{Number: i + 1, Total: total}
		for _, u := range units[span[0]:span[1]] {
			b.WriteString(u.text)
			b.WriteString("\n")
			if u.kind == unitBlock {
				p.Files = append(p.Files, u.path)
			}
		}

		b.WriteString(renderWrapper(part.Footer, number, strconv.Itoa(total)))
		b.WriteString("\n")

		if !last && part.Pending != "" {
			remaining := strconv.Itoa(total - (i + 1))
			b.WriteString(strings.ReplaceAll(part.Pending, template.TagPartsRemaining, remaining))
			b.WriteString("\n")
		}

		p.Text = strings.TrimRight(b.String(), " \t\n")

		if len(p.Text) > maxChars {
			p.Oversized = true
			message := "Part exceeds the maximum part size"
			if span[1]-span[0] == 1 && units[span[0]].kind == unitBlock {
				message = "Part exceeds the maximum part size; a single file block is larger than the limit"
			}
			logger.Warn(message,
				zap.Int("part", p.Number),
				zap.Int("size", len(p.Text)),
				zap.Int("maxPartSize", maxChars),
				zap.Strings("files", p.Files))
		}

		parts = append(parts, p)
	}

	return parts
}

func renderWrapper(text, number, total string) string {
	text = strings.ReplaceAll(text, template.TagPartNumber, number)
	return strings.ReplaceAll(text, template.TagTotalParts, total)
}
