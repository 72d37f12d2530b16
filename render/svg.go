package render

import (
	"bytes"
	"fmt"
	"html"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders the current view as Scalable Vector Graphics (SVG)"
}

// Render creates an SVG representation of the scene. Geometry is written in
// canvas units under a single transform group, the way a 2D canvas would
// draw it.
func (r *SVGRenderer) Render(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	clip := s.clip()

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<g transform="matrix(%.4f 0 0 %.4f %.2f %.2f)">
`, s.Width, s.Height, s.Width, s.Height, s.Theme.Background,
		s.Scale, s.Scale, s.Translate.X, s.Translate.Y)

	fmt.Fprintf(&buf, "<g stroke-width=\"%.4f\" stroke-linecap=\"round\">\n", s.edgeWidth())
	for _, e := range s.Graph.Edges() {
		a, b, ok := s.edgeSegment(e)
		if !ok {
			continue
		}
		if !visible(clip, a.Scale(s.Scale).Add(s.Translate), b.Scale(s.Scale).Add(s.Translate)) {
			continue
		}
		color := s.Theme.Edge
		if s.Highlighted(e.A) || s.Highlighted(e.B) {
			color = s.Theme.Highlight
		}
		opacity := s.edgeOpacity(s.Graph.Node(e.A), s.Graph.Node(e.B))
		fmt.Fprintf(&buf, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-opacity=\"%.3f\"/>\n",
			a.X, a.Y, b.X, b.Y, color, opacity)
	}
	buf.WriteString("</g>\n")

	var labels bytes.Buffer
	fmt.Fprintf(&buf, "<g fill=\"%s\">\n", s.Theme.Node)
	for _, id := range s.Graph.Nodes() {
		n := s.Graph.Node(id)
		if !clip.Contains(s.Project(n.Pos)) {
			continue
		}
		p := s.local(n.Pos)
		if s.Highlighted(id) {
			fmt.Fprintf(&labels, "<text x=\"%.2f\" y=\"%.2f\" font-size=\"%.3f\">%s</text>\n",
				p.X, p.Y, s.labelSize(n), html.EscapeString(n.Label))
			continue
		}
		size := s.nodeSize(n)
		fmt.Fprintf(&buf, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.3f\"/>\n", p.X, p.Y, s.nodeRadius()*size)
		if s.Labels && n.Label != "" {
			fmt.Fprintf(&buf, "<text x=\"%.2f\" y=\"%.2f\" font-size=\"%.3f\" font-family=\"sans-serif\" text-anchor=\"middle\">%s</text>\n",
				p.X, p.Y+size*s.nodeRadius()+size/2, size/2, html.EscapeString(n.Label))
		}
	}
	buf.WriteString("</g>\n")

	if labels.Len() > 0 {
		fmt.Fprintf(&buf, "<g fill=\"%s\" font-family=\"sans-serif\" text-anchor=\"middle\" dominant-baseline=\"middle\">\n", s.Theme.Highlight)
		buf.Write(labels.Bytes())
		buf.WriteString("</g>\n")
	}
	buf.WriteString("</g>\n")

	if s.Caption != "" {
		fmt.Fprintf(&buf, "<text x=\"5\" y=\"15\" font-family=\"sans-serif\" font-size=\"10\" fill=\"#808080\">%s</text>\n",
			html.EscapeString(s.Caption))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}
