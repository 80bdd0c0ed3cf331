// Package diffmap converts unified-diff patches into line-addressed added
// content. Every line number attached to downstream feedback depends on the
// counting discipline here.
package diffmap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// AddedLine is a line introduced by a diff, numbered in the target file.
type AddedLine struct {
	Number int
	Text   string
}

var hunkHeaderRE = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// AddedLines extracts the added lines from one file's unified-diff patch.
//
// A hunk header resets the counter to the hunk's new-file start. Added lines
// are recorded and advance the counter; removed lines are skipped without
// advancing (they do not exist in the target); context lines advance without
// being recorded. A patch with no parsable hunk header yields nil rather
// than an error: a single malformed patch must not abort the run.
func AddedLines(patch string) []AddedLine {
	if patch == "" {
		return nil
	}

	var added []AddedLine
	current := 0
	inHunk := false

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			if m := hunkHeaderRE.FindStringSubmatch(line); m != nil {
				current, _ = strconv.Atoi(m[1])
				inHunk = true
			} else {
				inHunk = false
			}
			continue
		}
		if !inHunk {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added = append(added, AddedLine{Number: current, Text: line[1:]})
			current++
		case strings.HasPrefix(line, "-"):
			// Removed from the target; the counter does not move.
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" is a marker, not a target line.
		default:
			current++
		}
	}

	return added
}

// Window joins the added lines with newlines for rules that match constructs
// spanning multiple lines.
func Window(lines []AddedLine) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

// SplitRawDiff parses a whole-PR unified diff into per-file ChangedFile
// records with reconstructed per-file patches and add/delete counts. It is
// used when the hosting platform hands us one raw diff instead of per-file
// patches.
func SplitRawDiff(raw string) ([]model.ChangedFile, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var files []model.ChangedFile
	for _, f := range parsed {
		cf := model.ChangedFile{
			Filename: f.NewName,
			Status:   fileStatus(f),
		}
		if cf.Filename == "" {
			cf.Filename = f.OldName
		}
		if f.IsRename {
			cf.PreviousFilename = f.OldName
		}

		var patch strings.Builder
		for _, frag := range f.TextFragments {
			fmt.Fprintf(&patch, "@@ -%d,%d +%d,%d @@\n",
				frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
			for _, line := range frag.Lines {
				patch.WriteString(line.Op.String())
				patch.WriteString(strings.TrimSuffix(line.Line, "\n"))
				patch.WriteByte('\n')
				switch line.Op {
				case gitdiff.OpAdd:
					cf.Additions++
				case gitdiff.OpDelete:
					cf.Deletions++
				}
			}
		}
		cf.Patch = strings.TrimSuffix(patch.String(), "\n")

		files = append(files, cf)
	}

	return files, nil
}

func fileStatus(f *gitdiff.File) string {
	switch {
	case f.IsNew:
		return "added"
	case f.IsDelete:
		return "removed"
	case f.IsRename:
		return "renamed"
	default:
		return "modified"
	}
}
