// Package graph links analyzed files by imports and shared issue signatures.
package graph

import (
	"path"
	"strings"

	"github.com/huangsam/debtlens/core/heuristic"
	"github.com/huangsam/debtlens/schema"
)

// Graph constants.
const (
	MaxEdges       = 35
	minSharedTags  = 2
	sharedTagScale = 5.0
)

// Build returns the propagation edges for a snapshot. Import edges come first,
// then pattern edges, and the result is cut at MaxEdges in that order.
func Build(files []schema.FileAnalysis, contents map[string]string) []schema.PropagationEdge {
	edges := importEdges(files, contents)
	edges = append(edges, patternEdges(files)...)
	if len(edges) > MaxEdges {
		edges = edges[:MaxEdges]
	}
	return edges
}

// importEdges resolves quoted module references by their final path segment.
// The first file whose name matches wins.
func importEdges(files []schema.FileAnalysis, contents map[string]string) []schema.PropagationEdge {
	var edges []schema.PropagationEdge
	seen := make(map[[2]string]bool)
	for _, src := range files {
		for _, ref := range heuristic.ImportRefs(contents[src.Path]) {
			seg := stem(ref)
			if seg == "" {
				continue
			}
			target, ok := resolve(files, src.Path, seg)
			if !ok {
				continue
			}
			key := [2]string{src.Path, target}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, schema.PropagationEdge{
				Source: src.Path,
				Target: target,
				Weight: heuristic.Clamp01((src.TechnicalDebt + src.AILikelihood) / 2),
				Kind:   schema.ImportEdge,
			})
		}
	}
	return edges
}

func resolve(files []schema.FileAnalysis, source, seg string) (string, bool) {
	for _, candidate := range files {
		if candidate.Path == source {
			continue
		}
		if stem(candidate.Path) == seg {
			return candidate.Path, true
		}
	}
	return "", false
}

// stem returns the last path segment without its extension.
func stem(p string) string {
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// patternEdges emits one edge per unordered pair sharing enough issue tags.
func patternEdges(files []schema.FileAnalysis) []schema.PropagationEdge {
	var edges []schema.PropagationEdge
	for i := 0; i < len(files); i++ {
		tags := make(map[string]struct{}, len(files[i].Issues))
		for _, t := range files[i].Issues {
			tags[t] = struct{}{}
		}
		for j := i + 1; j < len(files); j++ {
			shared := 0
			for _, t := range files[j].Issues {
				if _, ok := tags[t]; ok {
					shared++
				}
			}
			if shared < minSharedTags {
				continue
			}
			edges = append(edges, schema.PropagationEdge{
				Source: files[i].Path,
				Target: files[j].Path,
				Weight: heuristic.Clamp01(float64(shared) / sharedTagScale),
				Kind:   schema.PatternEdge,
			})
		}
	}
	return edges
}
