// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxCategoryLevel is the deepest allowed category level. Levels are
// zero-based, so the hierarchy holds at most three tiers (0, 1, 2).
const MaxCategoryLevel = 2

// Category represents a node in the hierarchical category tree.
// Content items can have at most one category assigned.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	Level       int        `json:"level"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	IsActive    bool       `json:"isActive"`
	SortOrder   int        `json:"sortOrder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Virtual field populated by store methods and tree assembly.
	Children []*Category `json:"children,omitempty"`
}

// IsRoot returns true for top-level categories.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// BuildCategoryTree assembles parent→children adjacency from a flat list.
//
// Two passes: the first creates an arena of nodes keyed by id, the second
// links each node to its parent's children list, or to the root list when
// the node has no parent or the parent id does not resolve. This tolerates
// any input ordering (forward references included) and dangling parent ids.
// Every input node lands in exactly one place.
func BuildCategoryTree(flat []Category) []*Category {
	nodes := make(map[uuid.UUID]*Category, len(flat))
	order := make([]*Category, 0, len(flat))

	for i := range flat {
		n := flat[i]       // copy, so callers keep their slice untouched
		n.Children = nil
		nodes[n.ID] = &n
		order = append(order, &n)
	}

	var roots []*Category
	for _, n := range order {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// CountTreeNodes walks an assembled tree and returns the total node count.
// Used to verify that assembly neither drops nor duplicates nodes.
func CountTreeNodes(roots []*Category) int {
	total := 0
	for _, n := range roots {
		total += 1 + CountTreeNodes(n.Children)
	}
	return total
}
