package graph

import "sort"

// TopCategory is one of the highest page-count categories in a summary.
type TopCategory struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
}

// SummaryReport describes the shape of the graph after a pipeline stage.
type SummaryReport struct {
	TotalNodes       int           `json:"total_nodes"`
	TotalEdges       int           `json:"total_edges"`
	NumComponents    int           `json:"num_components"`
	LargestComponent int           `json:"largest_component"`
	Unannotated      int           `json:"unannotated"`
	MinPageCount     int           `json:"min_page_count"`
	MaxPageCount     int           `json:"max_page_count"`
	MeanPageCount    float64       `json:"mean_page_count"`
	TopCategories    []TopCategory `json:"top_categories"`
}

// Summarize computes a SummaryReport with the topN highest page-count categories.
func (g *Graph) Summarize(topN int) *SummaryReport {
	report := &SummaryReport{
		TotalNodes: g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}
	if report.TotalNodes == 0 {
		return report
	}

	uf := g.weakComponents()
	components := uf.Components()
	report.NumComponents = len(components)
	for _, c := range components {
		if len(c) > report.LargestComponent {
			report.LargestComponent = len(c)
		}
	}

	var top []TopCategory
	sum := 0
	first := true
	for id, attrs := range g.nodes {
		if attrs == nil {
			report.Unannotated++
			continue
		}
		if first || attrs.PageCount < report.MinPageCount {
			report.MinPageCount = attrs.PageCount
		}
		if first || attrs.PageCount > report.MaxPageCount {
			report.MaxPageCount = attrs.PageCount
		}
		first = false
		sum += attrs.PageCount
		top = append(top, TopCategory{ID: id, Name: attrs.Name, PageCount: attrs.PageCount})
	}
	if annotated := report.TotalNodes - report.Unannotated; annotated > 0 {
		report.MeanPageCount = float64(sum) / float64(annotated)
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].PageCount != top[j].PageCount {
			return top[i].PageCount > top[j].PageCount
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > topN {
		top = top[:topN]
	}
	report.TopCategories = top

	return report
}
