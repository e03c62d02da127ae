package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/chordanalyzr/internal/theory"
)

const noteNamesURI = "chordanalyzr://note-names"

// noteNamesTable renders the naming table as Markdown, one row per pitch class.
func noteNamesTable() string {
	byPitch := make([][]string, theory.Semitones)
	for _, n := range theory.Notes() {
		byPitch[n.PitchClass] = append(byPitch[n.PitchClass], n.Name)
	}

	var b strings.Builder
	b.WriteString("# Note names\n\n")
	b.WriteString("Names are case-insensitive and surrounding spaces are ignored ")
	b.WriteString("(\"c#\", \" Db \"). Anything not listed here is rejected.\n\n")
	b.WriteString("| Pitch class | Names |\n|---|---|\n")
	for pc, names := range byPitch {
		fmt.Fprintf(&b, "| %d | %s |\n", pc, strings.Join(names, ", "))
	}
	return b.String()
}

func (s *Server) readNoteNamesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteNamesURI,
			MIMEType: "text/markdown",
			Text:     noteNamesTable(),
		},
	}, nil
}
