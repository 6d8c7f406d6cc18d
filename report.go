package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/mbvh"
	"github.com/df07/go-geomquery/pkg/query"
	"github.com/df07/go-geomquery/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/segmentio/encoding/json"
)

type report struct {
	Scene      string          `json:"scene"`
	Primitives int             `json:"primitives"`
	Heuristic  string          `json:"heuristic"`
	Sbvh       bvh.Stats       `json:"sbvh"`
	Mbvh       mbvh.Stats      `json:"mbvh"`
	Backends   []backendReport `json:"backends"`
}

type backendReport struct {
	Name       string        `json:"name"`
	BuildTime  time.Duration `json:"build_time"`
	Queries    query.Stats   `json:"queries"`
	Mismatches int           `json:"mismatches"`
}

func (r report) mismatches() int {
	n := 0
	for _, b := range r.Backends {
		n += b.Mismatches
	}
	return n
}

// writeReport prints the report as tables, or as indented JSON
func writeReport(w io.Writer, r report, asJSON bool) error {
	if asJSON {
		return writeJSON(w, r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scene %s, %d primitives, %s heuristic\n\n", r.Scene, r.Primitives, r.Heuristic)

	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Index", "Property", "Value"})
	table.Append([]string{"sbvh", "References", strconv.Itoa(r.Sbvh.References)})
	table.Append([]string{"", "Duplicated", strconv.Itoa(r.Sbvh.DuplicatedReferences)})
	table.Append([]string{"", "Nodes", strconv.Itoa(r.Sbvh.Nodes)})
	table.Append([]string{"", "Leafs", strconv.Itoa(r.Sbvh.Leafs)})
	table.Append([]string{"", "Max depth", strconv.Itoa(r.Sbvh.MaxDepth)})
	table.Append([]string{"", "Avg leaf depth", fmt.Sprintf("%.2f", r.Sbvh.AvgLeafDepth)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"mbvh", "Branching factor", strconv.Itoa(r.Mbvh.BranchingFactor)})
	table.Append([]string{"", "Leaf kind", r.Mbvh.LeafKind})
	table.Append([]string{"", "Nodes", strconv.Itoa(r.Mbvh.Nodes)})
	table.Append([]string{"", "Leaf records", strconv.Itoa(r.Mbvh.LeafRecords)})
	table.Append([]string{"", "Lane utilization", fmt.Sprintf("%02.1f %%", 100*r.Mbvh.LaneUtilization())})
	table.Append([]string{"", "Max depth", strconv.Itoa(r.Mbvh.MaxDepth)})
	table.Render()
	buf.WriteString("\n")

	table = tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Backend", "Build time", "Queries", "Found", "Avg nodes", "Max nodes", "Query time", "Mismatches"})
	for _, b := range r.Backends {
		table.Append([]string{
			b.Name,
			b.BuildTime.String(),
			strconv.Itoa(b.Queries.Queries),
			strconv.Itoa(b.Queries.Found),
			fmt.Sprintf("%.1f", b.Queries.AvgNodesVisited),
			strconv.Itoa(b.Queries.MaxNodesVisited),
			b.Queries.Duration.String(),
			strconv.Itoa(b.Mismatches),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", strconv.Itoa(r.mismatches())})
	table.Render()

	_, err := w.Write(buf.Bytes())
	return err
}

// writeScenes prints the built-in scenes
func writeScenes(w io.Writer, scenes []scene.SceneInfo, asJSON bool) error {
	if asJSON {
		return writeJSON(w, scenes)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scene", "Description", "Planar"})
	for _, s := range scenes {
		table.Append([]string{s.ID, s.Description, strconv.FormatBool(s.Planar)})
	}
	table.Render()

	_, err := w.Write(buf.Bytes())
	return err
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
