// Package ingest reads graph datasets from JSON, dependency manifests, CSV
// edge lists and plain-text relation logs.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/models"
)

// ErrUnsupportedFormat is returned for unknown input formats.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// Process reads raw input and returns the dataset it describes
	Process(r io.Reader) (*models.Dataset, error)

	// Name returns the name of the processor
	Name() string
}

// JSONProcessor handles {nodes, edges} documents. Documents without a
// top-level "nodes" array are read as dependency manifests.
type JSONProcessor struct{}

// Name returns the name of the processor
func (JSONProcessor) Name() string { return "json" }

type jsonNode struct {
	ID    string         `json:"id"`
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Group string         `json:"group"`
	Mass  float64        `json:"mass"`
	X     *float64       `json:"x"`
	Y     *float64       `json:"y"`
	Pos   *geom.Vec      `json:"pos"`
	Data  map[string]any `json:"data"`
}

type jsonEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Process parses JSON data
func (p JSONProcessor) Process(r io.Reader) (*models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	if _, ok := top["nodes"]; !ok {
		return ManifestProcessor{}.Process(bytes.NewReader(data))
	}

	var doc struct {
		Name  string     `json:"name"`
		Nodes []jsonNode `json:"nodes"`
		Edges []jsonEdge `json:"edges"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	name := doc.Name
	if name == "" {
		name = "JSON Import"
	}
	ds := models.NewDataset(name, "json")

	for i, n := range doc.Nodes {
		key := n.Key
		if key == "" {
			key = n.ID
		}
		node := models.Node{Key: key, Label: n.Label, Group: n.Group, Mass: n.Mass, Pos: n.Pos, Properties: n.Data}
		if node.Pos == nil && n.X != nil && n.Y != nil {
			node.Pos = &geom.Vec{X: *n.X, Y: *n.Y}
		}
		if err := ds.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}

	for _, e := range doc.Edges {
		if err := ds.AddEdge(models.NewEdge(e.Source, e.Target, e.Type, e.Weight)); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}
	return ds, nil
}

// ManifestProcessor handles dependency manifests of the form
// {"key": {"prettyName": "...", "connections": ["other", ...]}}. Node order
// follows the document; connections to unknown keys are skipped.
type ManifestProcessor struct{}

// Name returns the name of the processor
func (ManifestProcessor) Name() string { return "manifest" }

type manifestEntry struct {
	PrettyName  string   `json:"prettyName"`
	Group       string   `json:"group"`
	Connections []string `json:"connections"`
}

// Process parses a manifest
func (ManifestProcessor) Process(r io.Reader) (*models.Dataset, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("error parsing manifest: expected object")
	}

	type entry struct {
		key string
		manifestEntry
	}
	var entries []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("error parsing manifest: %w", err)
		}
		key, _ := tok.(string)
		var e manifestEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("error parsing manifest entry %q: %w", key, err)
		}
		entries = append(entries, entry{key, e})
	}

	ds := models.NewDataset("Manifest Import", "manifest")
	for _, e := range entries {
		if err := ds.AddNode(models.Node{Key: e.key, Label: e.PrettyName, Group: e.Group}); err != nil {
			return nil, err
		}
	}
	for _, e := range entries {
		for _, link := range e.Connections {
			if err := ds.Connect(e.key, link); err != nil && !errors.Is(err, models.ErrUnknownNode) {
				return nil, err
			}
		}
	}
	return ds, nil
}

// CSVProcessor handles edge lists with a header row
type CSVProcessor struct{}

// Name returns the name of the processor
func (CSVProcessor) Name() string { return "csv" }

// Process parses CSV data
func (CSVProcessor) Process(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	sourceIdx, targetIdx, weightIdx, labelIdx, typeIdx := -1, -1, -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			sourceIdx = i
		case "target", "to", "dst":
			targetIdx = i
		case "weight", "value", "strength":
			weightIdx = i
		case "label", "name", "title":
			labelIdx = i
		case "type", "kind":
			typeIdx = i
		}
	}
	if sourceIdx == -1 || targetIdx == -1 {
		return nil, fmt.Errorf("CSV must contain source and target columns")
	}

	ds := models.NewDataset("CSV Import", "csv")
	field := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	ensure := func(key, label string) error {
		if _, err := ds.FindNode(key); err == nil {
			return nil
		}
		return ds.AddNode(models.Node{Key: key, Label: label})
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		source, target := field(row, sourceIdx), field(row, targetIdx)
		if source == "" || target == "" {
			return nil, fmt.Errorf("line %d: %w", line, models.ErrEmptyKey)
		}
		if err := ensure(source, field(row, labelIdx)); err != nil {
			return nil, err
		}
		if err := ensure(target, ""); err != nil {
			return nil, err
		}

		weight := 1.0
		if s := field(row, weightIdx); s != "" {
			if w, err := strconv.ParseFloat(s, 64); err == nil {
				weight = w
			}
		}
		if err := ds.AddEdge(models.NewEdge(source, target, field(row, typeIdx), weight)); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// TextProcessor handles plain-text relation logs where each line joins two
// names, e.g. "A -> B" or "X connected to Y". Other lines are ignored.
type TextProcessor struct{}

// Name returns the name of the processor
func (TextProcessor) Name() string { return "text" }

var separators = []string{" -> ", " => ", " connected to ", " connects to ", " links to ", " linked to ", " depends on ", " - "}

// Process parses text data
func (TextProcessor) Process(r io.Reader) (*models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	ds := models.NewDataset("Text Import", "text")
	ensure := func(key string) error {
		if _, err := ds.FindNode(key); err == nil {
			return nil
		}
		return ds.AddNode(models.Node{Key: key})
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var source, target string
		for _, sep := range separators {
			parts := strings.Split(line, sep)
			if len(parts) == 2 {
				source, target = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
				break
			}
		}
		if source == "" || target == "" {
			continue
		}

		if err := ensure(source); err != nil {
			return nil, err
		}
		if err := ensure(target); err != nil {
			return nil, err
		}
		if err := ds.Connect(source, target); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSONProcessor{}, nil
	case "manifest":
		return ManifestProcessor{}, nil
	case "csv":
		return CSVProcessor{}, nil
	case "text", "txt", "log":
		return TextProcessor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	case ".txt", ".log":
		return "text"
	}
	return ""
}

// ProcessFile reads a dataset from disk. An empty format is guessed from
// the file extension.
func ProcessFile(path, format string) (*models.Dataset, error) {
	if format == "" {
		format = FormatFromPath(path)
	}
	p, err := GetProcessor(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	ds, err := p.Process(f)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s as %s: %w", path, p.Name(), err)
	}
	if ds.Name == "" || strings.HasSuffix(ds.Name, " Import") {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	ds.Source = path
	return ds, nil
}
