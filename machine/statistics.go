package machine

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Statistics accumulates an instruction-mix and branch-taken/not-taken
// histogram across a run, matching the shape of the teacher's
// PerformanceStatistics but scoped to what the RV64I core can observe.
type Statistics struct {
	TotalInstructions uint64
	InstructionCounts map[string]uint64

	BranchCount      uint64
	BranchTakenCount uint64
}

// branchMnemonics lists the mnemonics Record treats as conditional
// branches, for the taken/not-taken count.
var branchMnemonics = map[string]bool{
	"beq": true, "bne": true, "blt": true, "bge": true, "bltu": true, "bgeu": true,
}

// NewStatistics returns an empty Statistics collector.
func NewStatistics() *Statistics {
	return &Statistics{InstructionCounts: make(map[string]uint64)}
}

// Record folds one completed step into the running totals. branchTaken
// reports whether a conditional branch in r was taken rather than falling
// through; it is ignored for every other mnemonic.
func (s *Statistics) Record(r StepResult, branchTaken bool) {
	s.TotalInstructions++
	s.InstructionCounts[r.Mnemonic]++
	if branchMnemonics[r.Mnemonic] {
		s.BranchCount++
		if branchTaken {
			s.BranchTakenCount++
		}
	}
}

// instructionStats is the sorted, JSON/CSV-serializable view of
// InstructionCounts.
type instructionStats struct {
	Mnemonic string `json:"mnemonic"`
	Count    uint64 `json:"count"`
}

func (s *Statistics) sorted() []instructionStats {
	out := make([]instructionStats, 0, len(s.InstructionCounts))
	for m, c := range s.InstructionCounts {
		out = append(out, instructionStats{Mnemonic: m, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mnemonic < out[j].Mnemonic
	})
	return out
}

// WriteJSON writes the statistics as a JSON document.
func (s *Statistics) WriteJSON(w io.Writer) error {
	doc := struct {
		TotalInstructions uint64              `json:"total_instructions"`
		BranchCount       uint64              `json:"branch_count"`
		BranchTakenCount  uint64              `json:"branch_taken_count"`
		Instructions      []instructionStats  `json:"instructions"`
	}{
		TotalInstructions: s.TotalInstructions,
		BranchCount:       s.BranchCount,
		BranchTakenCount:  s.BranchTakenCount,
		Instructions:      s.sorted(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes mnemonic,count rows.
func (s *Statistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mnemonic", "count"}); err != nil {
		return err
	}
	for _, row := range s.sorted() {
		if err := cw.Write([]string{row.Mnemonic, fmt.Sprintf("%d", row.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
