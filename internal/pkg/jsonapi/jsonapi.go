// Package jsonapi assembles JSON:API documents from typed resources.
package jsonapi

import "strconv"

// Identifier is a resource linkage.
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship wraps a linkage: Identifier for to-one, []Identifier for to-many,
// nil for an empty to-one.
type Relationship struct {
	Data interface{} `json:"data"`
}

// Object is a serialized resource.
type Object struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]interface{}  `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Document is the top-level response body.
type Document struct {
	Data     interface{} `json:"data"`
	Included []Object    `json:"included,omitempty"`
	Links    interface{} `json:"links,omitempty"`
	Meta     interface{} `json:"meta,omitempty"`
}

// Resource is implemented by every serializable entity kind. Relationships
// and Included only describe relations the caller loaded.
type Resource interface {
	ResourceType() string
	ResourceID() string
	ResourceAttributes() map[string]interface{}
	ResourceRelationships() map[string]Relationship
	ResourceIncluded() []Resource
}

// ID formats a numeric primary key.
func ID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ToOne links a single resource, or null when r is nil.
func ToOne(r Resource) Relationship {
	if r == nil {
		return Relationship{Data: nil}
	}
	return Relationship{Data: Identifier{Type: r.ResourceType(), ID: r.ResourceID()}}
}

// ToMany links a list of resources; an empty list serializes as [].
func ToMany(rs []Resource) Relationship {
	ids := make([]Identifier, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, Identifier{Type: r.ResourceType(), ID: r.ResourceID()})
	}
	return Relationship{Data: ids}
}

// Serialize renders one resource without its included set.
func Serialize(r Resource) Object {
	attrs := r.ResourceAttributes()
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	obj := Object{Type: r.ResourceType(), ID: r.ResourceID(), Attributes: attrs}
	if rels := r.ResourceRelationships(); len(rels) > 0 {
		obj.Relationships = rels
	}
	return obj
}

// Single renders a document for one resource. Included resources are
// deduplicated by type and id, first occurrence first.
func Single(r Resource) Document {
	inc := newIncluded()
	inc.addAll(r.ResourceIncluded())
	return Document{Data: Serialize(r), Included: inc.objects}
}

// Collection renders a document for a list of resources. Data is always an
// array. Included resources shared between items appear once, in encounter order.
func Collection(rs []Resource) Document {
	data := make([]Object, 0, len(rs))
	inc := newIncluded()
	for _, r := range rs {
		data = append(data, Serialize(r))
		inc.addAll(r.ResourceIncluded())
	}
	return Document{Data: data, Included: inc.objects}
}

// Map converts a slice of entities to resources.
func Map[T any](items []T, fn func(T) Resource) []Resource {
	out := make([]Resource, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

type included struct {
	seen    map[Identifier]struct{}
	objects []Object
}

func newIncluded() *included {
	return &included{seen: make(map[Identifier]struct{})}
}

func (in *included) addAll(rs []Resource) {
	for _, r := range rs {
		key := Identifier{Type: r.ResourceType(), ID: r.ResourceID()}
		if _, ok := in.seen[key]; ok {
			continue
		}
		in.seen[key] = struct{}{}
		in.objects = append(in.objects, Serialize(r))
	}
}
