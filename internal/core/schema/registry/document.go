package registry

import (
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
)

const (
	propertyElement = "Property"
	idAttr          = "id"
	nameAttr        = "name"
	valueAttr       = "value"
)

// AddPropertiesToElement writes the serializable properties of id as a new
// elementName child of parent:
//
//	<elementName id="0x...">
//	  <Property name="Desired Speed" value="2"/>
//	</elementName>
//
// Properties flagged NonSerializable or Hidden are left out. When nothing is
// left no element is created and nil is returned. A nil parent yields a
// detached element.
func (r *Registry) AddPropertiesToElement(id ids.EntityID, parent *etree.Element, elementName string, includeID bool) *etree.Element {
	g := r.group(id.Type())
	set := r.GetProperties(id)

	var el *etree.Element
	for i, desc := range g.desc.Descriptors {
		if !desc.IsValid() || !desc.Flags.Serializable() {
			continue
		}
		ref, ok := set.At(property.Index(i))
		if !ok {
			continue
		}
		if el == nil {
			el = etree.NewElement(elementName)
			if includeID {
				el.CreateAttr(idAttr, id.String())
			}
		}
		prop := el.CreateElement(propertyElement)
		prop.CreateAttr(nameAttr, desc.Name)
		prop.CreateAttr(valueAttr, ref.String())
	}

	if el != nil && parent != nil {
		parent.AddChild(el)
	}
	return el
}

// GetPropertiesFromElement applies the Property entries of el to id and
// returns how many were written. Entries naming no known property, entries for
// read-only properties and entries whose value does not parse as the
// property's kind are skipped; omitted properties keep their current value.
func (r *Registry) GetPropertiesFromElement(id ids.EntityID, el *etree.Element) int {
	p := r.provider(id.Type())
	if p == nil || el == nil {
		return 0
	}
	g := r.group(id.Type())
	set := p.GetProperties(id)

	n := 0
	for _, entry := range el.SelectElements(propertyElement) {
		name := entry.SelectAttrValue(nameAttr, "")
		value := entry.SelectAttr(valueAttr)
		if value == nil {
			continue
		}

		idx := g.lookup(name)
		if idx == property.InvalidIndex {
			r.logger.Debug("unknown property ignored", log.Entity(id), log.Property(name))
			continue
		}
		if g.desc.At(idx).IsReadOnly() {
			continue
		}
		ref, ok := set.At(idx)
		if !ok {
			continue
		}
		if err := ref.SetFromString(value.Value); err != nil {
			r.logger.Debug("property value ignored", log.Entity(id), log.Property(name), log.Error(err))
			continue
		}
		r.changed(p, id, idx)
		n++
	}
	return n
}

// WriteDocument appends a root element holding every public instance with at
// least one serializable property and returns it.
func (r *Registry) WriteDocument(parent *etree.Element) *etree.Element {
	root := etree.NewElement(r.opts.RootElement)
	if parent != nil {
		parent.AddChild(root)
	}
	r.eachPublicInstance(func(id ids.EntityID) {
		r.AddPropertiesToElement(id, root, r.opts.ObjectElement, true)
	})
	return root
}

// ReadDocument applies every object under root and returns the number of
// properties written. Objects with a malformed id are skipped.
func (r *Registry) ReadDocument(root *etree.Element) int {
	if root == nil {
		return 0
	}
	n := 0
	for _, obj := range root.SelectElements(r.opts.ObjectElement) {
		raw := obj.SelectAttrValue(idAttr, "")
		id, err := ids.Parse(raw)
		if err != nil || !id.IsValid() {
			r.logger.Debug("object with malformed id ignored", log.String("id", raw))
			continue
		}
		n += r.GetPropertiesFromElement(id, obj)
	}
	return n
}

// Export writes the whole-registry document as indented XML.
func (r *Registry) Export(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	r.WriteDocument(&doc.Element)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write property document: %w", err)
	}
	return nil
}

// Import reads a document written by Export and applies it. Only malformed
// XML or a missing root element is an error.
func (r *Registry) Import(src io.Reader) (int, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(src); err != nil {
		return 0, fmt.Errorf("read property document: %w", err)
	}
	root := doc.SelectElement(r.opts.RootElement)
	if root == nil {
		return 0, fmt.Errorf("read property document: missing <%s> element", r.opts.RootElement)
	}
	return r.ReadDocument(root), nil
}
