package registry

import (
	"fmt"
	"html/template"
	"io"

	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/property"
)

var docTemplate = template.Must(template.New("properties").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Object Properties</title></head>
<body>
<h1>Object Properties</h1>
{{- range .}}
<h2 id="type-{{.Type}}">{{.Name}}</h2>
<table border="1">
<tr><th>Index</th><th>Name</th><th>Flags</th><th>Description</th></tr>
{{- range .Properties}}
<tr><td>{{.Index}}</td><td>{{.Name}}</td><td>{{.Flags}}</td><td>{{.Description}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

type typeDoc struct {
	Type       ids.TypeTag
	Name       string
	Properties []propertyDoc
}

type propertyDoc struct {
	Index       property.Index
	Name        string
	Flags       property.Flags
	Description string
}

// WriteDocumentation renders an HTML page describing every type with
// registered properties, skipping types whose provider is not public and
// properties flagged Hidden. Like GetFullPropertySnapshot it walks everything.
func (r *Registry) WriteDocumentation(w io.Writer) error {
	var docs []typeDoc
	for _, tag := range r.DescribedTypes() {
		if p := r.provider(tag); p != nil && !p.AreTypesPublic() {
			continue
		}
		td := typeDoc{Type: tag, Name: r.TypeName(tag)}
		if td.Name == "" {
			td.Name = fmt.Sprintf("Type %d", tag)
		}
		for i, desc := range r.group(tag).desc.Descriptors {
			if desc.Flags.Has(property.Hidden) {
				continue
			}
			td.Properties = append(td.Properties, propertyDoc{
				Index:       property.Index(i),
				Name:        desc.Name,
				Flags:       desc.Flags &^ property.Valid,
				Description: desc.Description,
			})
		}
		docs = append(docs, td)
	}

	if err := docTemplate.Execute(w, docs); err != nil {
		return fmt.Errorf("render property documentation: %w", err)
	}
	return nil
}
