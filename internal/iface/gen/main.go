// Command gen reads the channel table and writes the channel marker types.
//
//	go run ./gen -in channels.yaml -out channels_gen.go
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Table is the channel table file
type Table struct {
	Package  string    `yaml:"package"`
	Imports  []string  `yaml:"imports"`
	Channels []Channel `yaml:"channels"`
}

// Channel binds a marker to a topic and a payload type
type Channel struct {
	Marker    string `yaml:"marker"`
	Topic     string `yaml:"topic"`
	Payload   string `yaml:"payload"`
	Unmarshal string `yaml:"unmarshal"`
	Doc       string `yaml:"doc"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var in, out string
	flag.StringVar(&in, "in", "channels.yaml", "Path to the channel table")
	flag.StringVar(&out, "out", "channels_gen.go", "Path to the generated file")
	flag.Parse()

	if err := run(in, out); err != nil {
		logger.Error(err.Error(), slog.String("in", in), slog.String("out", out))
		os.Exit(1)
	}
}

func run(in, out string) error {
	p, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading channel table: %w", err)
	}

	table, err := ParseTable(p)
	if err != nil {
		return err
	}

	src, err := Generate(table)
	if err != nil {
		return err
	}

	return os.WriteFile(out, src, 0o644)
}

// ParseTable decodes and checks a channel table. Markers must be unique; topics
// may repeat here and are checked by iface.Validate at startup.
func ParseTable(p []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(p, &table); err != nil {
		return nil, fmt.Errorf("parsing channel table: %w", err)
	}

	if table.Package == "" {
		return nil, errors.New("channel table: package is required")
	}

	markers := make(map[string]struct{}, len(table.Channels))
	for i, ch := range table.Channels {
		switch {
		case ch.Marker == "":
			return nil, fmt.Errorf("channel %d: marker is required", i)
		case ch.Topic == "":
			return nil, fmt.Errorf("channel %s: topic is required", ch.Marker)
		case ch.Payload == "":
			return nil, fmt.Errorf("channel %s: payload is required", ch.Marker)
		}

		if _, ok := markers[ch.Marker]; ok {
			return nil, fmt.Errorf("channel %s: duplicate marker", ch.Marker)
		}
		markers[ch.Marker] = struct{}{}
	}

	return &table, nil
}

// Generate renders the gofmt-ed Go source for table.
func Generate(table *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, table); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return src, nil
}

var fileTemplate = template.Must(template.New("channels").Parse(`// Code generated by gen from channels.yaml; DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)

const (
{{- range .Channels}}
	Topic{{.Marker}} = "{{.Topic}}"
{{- end}}
)
{{range .Channels}}
// {{.Marker}}Topic {{.Doc}}
type {{.Marker}}Topic struct{}

func ({{.Marker}}Topic) Topic() string { return Topic{{.Marker}} }

func ({{.Marker}}Topic) Encode(v {{.Payload}}) ([]byte, error) {
	return encode(Topic{{.Marker}}, v)
}

func ({{.Marker}}Topic) Decode(data []byte) ({{.Payload}}, error) {
{{- if .Unmarshal}}
	return decodeWith(Topic{{.Marker}}, data, {{.Unmarshal}})
{{- else}}
	return decode[{{.Payload}}](Topic{{.Marker}}, data)
{{- end}}
}
{{end}}
var bindings = []Binding{
{{- range .Channels}}
	newBinding[{{.Payload}}]("{{.Marker}}", {{.Marker}}Topic{}),
{{- end}}
}
`))
