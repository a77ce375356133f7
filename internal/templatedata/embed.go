// Package templatedata embeds the built-in analysis templates for
// distribution inside the fireline binary. The embedded filesystem is rooted
// at "templates/" and contains one YAML file per template.
package templatedata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/fireline/internal/template"
)

// TemplateFS contains the embedded template files.
//
//go:embed templates/*.yml
var TemplateFS embed.FS

// DefaultName is the built-in template used when none is specified.
const DefaultName = "fireground"

// Names lists the built-in template names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(TemplateFS, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

// Load parses the built-in template with the given name.
func Load(name string) (*template.Template, error) {
	data, err := TemplateFS.ReadFile(path.Join("templates", name+".yml"))
	if err != nil {
		return nil, fmt.Errorf("templatedata: no built-in template %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return template.Parse(data)
}
