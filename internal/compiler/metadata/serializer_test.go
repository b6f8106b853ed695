package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cfgschema/schemac/internal/compiler/ast"
)

func sampleSchema(t *testing.T) *ast.Schema {
	t.Helper()

	schema := ast.NewSchema()
	priority := 318

	eth := ast.NewNode("ethernet", ast.KindTagged)
	eth.Owner = "ethernet.py"
	eth.Priority = &priority
	eth.Help = &ast.Help{Summary: "Ethernet interface"}

	speed := ast.NewNode("speed", ast.KindLeaf)
	speed.Constraint = &ast.Constraint{Regex: []string{"(auto|10|100)"}}
	eth.Children["speed"] = speed

	interfaces := ast.NewNode("interfaces", ast.KindInterior)
	interfaces.Children["ethernet"] = eth
	schema.Root.Children["interfaces"] = interfaces

	schema.Tags = []string{"interfaces ethernet speed", "interfaces ethernet", "interfaces"}
	schema.Owners["interfaces ethernet"] = "ethernet.py"
	schema.Priorities[318] = []string{"interfaces ethernet"}
	schema.ComponentVersions["interfaces"] = "26"
	if err := schema.Defaults.Set([]string{"interfaces", "ethernet", "speed"}, "auto"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	return schema
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestRender_JSON tests the shape of the JSON rendering
func TestRender_JSON(t *testing.T) {
	data, err := Render(sampleSchema(t), FormatJSON)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	for _, key := range []string{"tree", "tags", "owners", "priorities", "component_versions", "defaults"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Rendered schema is missing %q", key)
		}
	}

	tree := doc["tree"].(map[string]interface{})
	if tree["kind"] != "node" {
		t.Errorf("Expected root kind 'node', got %v", tree["kind"])
	}

	if !strings.Contains(string(data), `"kind": "tagNode"`) {
		t.Errorf("Expected tagNode kind in output:\n%s", data)
	}
	if !strings.Contains(string(data), `"speed": "auto"`) {
		t.Errorf("Expected default value in output:\n%s", data)
	}
}

// TestRender_Deterministic tests that the same schema always renders the same bytes
func TestRender_Deterministic(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		first, err := Render(sampleSchema(t), format)
		if err != nil {
			t.Fatalf("Render(%s) error: %v", format, err)
		}

		for i := 0; i < 10; i++ {
			again, err := Render(sampleSchema(t), format)
			if err != nil {
				t.Fatalf("Render(%s) error: %v", format, err)
			}
			if !bytes.Equal(first, again) {
				t.Fatalf("Render(%s) is not deterministic:\n%s\n---\n%s", format, first, again)
			}
		}
	}
}

func TestRender_YAML(t *testing.T) {
	data, err := Render(sampleSchema(t), FormatYAML)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}

	versions, ok := doc["component_versions"].(map[string]interface{})
	if !ok || versions["interfaces"] != "26" {
		t.Errorf("Expected component version 26, got %v", doc["component_versions"])
	}
	if !strings.Contains(string(data), "kind: tagNode") {
		t.Errorf("Expected tagNode kind in output:\n%s", data)
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := Render(nil, FormatJSON); err == nil {
		t.Error("Expected error for nil schema")
	}
	if _, err := Render(ast.NewSchema(), Format("xml")); err == nil {
		t.Error("Expected error for unknown format")
	}
}

// TestCompress_RoundTrip tests that compression is reversible
func TestCompress_RoundTrip(t *testing.T) {
	data, err := Render(sampleSchema(t), FormatJSON)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress() error: %v", err)
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() error: %v", err)
	}

	if !bytes.Equal(data, decompressed) {
		t.Error("Decompressed data does not match the rendering")
	}
}

func TestCompress_EdgeCases(t *testing.T) {
	if _, err := Compress(nil); err == nil {
		t.Error("Expected error for nil data")
	}
	if out, err := Compress([]byte{}); err != nil || len(out) != 0 {
		t.Errorf("Compress(empty) = %v, %v", out, err)
	}
	if _, err := Decompress(nil); err == nil {
		t.Error("Expected error for nil data")
	}
	if _, err := Decompress([]byte("not gzip")); err == nil {
		t.Error("Expected error for invalid gzip data")
	}
}

func TestWriteToFile(t *testing.T) {
	dir := t.TempDir()
	schema := sampleSchema(t)

	plain := filepath.Join(dir, "out", "schema.json")
	if err := WriteToFile(schema, FormatJSON, plain, false); err != nil {
		t.Fatalf("WriteToFile() error: %v", err)
	}
	written, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	rendered, _ := Render(schema, FormatJSON)
	if !bytes.Equal(written, rendered) {
		t.Error("Written file differs from the rendering")
	}

	packed := filepath.Join(dir, "schema.json.gz")
	if err := WriteToFile(schema, FormatJSON, packed, true); err != nil {
		t.Fatalf("WriteToFile() error: %v", err)
	}
	compressed, err := os.ReadFile(packed)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	unpacked, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() error: %v", err)
	}
	if !bytes.Equal(unpacked, rendered) {
		t.Error("Compressed file does not decompress to the rendering")
	}

	if err := WriteToFile(schema, FormatJSON, "", false); err == nil {
		t.Error("Expected error for empty output path")
	}
}
