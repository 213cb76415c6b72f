package models

import (
	"errors"
	"fmt"
)

// Category identifies one of the resource groups a run can wipe.
type Category string

const (
	CategoryCatalogs         Category = "catalogs"
	CategoryJobs             Category = "jobs"
	CategoryNotebooks        Category = "notebooks"
	CategoryServingEndpoints Category = "serving_endpoints"
)

// ErrUnknownCategory is returned when a selection names a category outside the registry.
var ErrUnknownCategory = errors.New("unknown resource category")

// ResourceType describes a deletable resource category on the workspace.
type ResourceType struct {
	Name  Category        `json:"name"`  // "catalogs", "jobs", etc.
	Label string          `json:"label"` // Human-readable: "All Catalogs"
	Noun  string          `json:"noun"`  // Used in "Error listing <noun>" lines
	Skip  map[string]bool `json:"-"`     // Names to never delete
}

// ResourceTypes is the fixed registry, in execution order.
var ResourceTypes = []ResourceType{
	{Name: CategoryCatalogs, Label: "All Catalogs", Noun: "catalogs",
		Skip: map[string]bool{"hive_metastore": true}},
	{Name: CategoryJobs, Label: "All Jobs", Noun: "jobs"},
	{Name: CategoryNotebooks, Label: "All Notebooks", Noun: "notebooks"},
	{Name: CategoryServingEndpoints, Label: "All Serving Endpoints", Noun: "serving endpoints"},
}

// LookupResourceType returns the registry entry for a category.
func LookupResourceType(c Category) (ResourceType, bool) {
	for _, rt := range ResourceTypes {
		if rt.Name == c {
			return rt, true
		}
	}
	return ResourceType{}, false
}

// ParseCategory accepts either the category name ("jobs") or its label ("All Jobs").
func ParseCategory(s string) (Category, error) {
	for _, rt := range ResourceTypes {
		if string(rt.Name) == s || rt.Label == s {
			return rt.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Selection is a set of chosen categories.
type Selection map[Category]bool

// NewSelection builds a Selection from raw names or labels.
func NewSelection(values []string) (Selection, error) {
	sel := Selection{}
	for _, v := range values {
		c, err := ParseCategory(v)
		if err != nil {
			return nil, err
		}
		sel[c] = true
	}
	return sel, nil
}

// Ordered returns the selected categories in registry order.
func (s Selection) Ordered() []Category {
	var out []Category
	for _, rt := range ResourceTypes {
		if s[rt.Name] {
			out = append(out, rt.Name)
		}
	}
	return out
}
