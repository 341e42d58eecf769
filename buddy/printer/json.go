package printer

import (
	"encoding/json"
	"fmt"
)

type jsonArena struct {
	Name      string          `json:"name"`
	MinExp    int             `json:"min_exp"`
	MaxExp    int             `json:"max_exp"`
	Mapped    bool            `json:"mapped"`
	Usage     jsonUsage       `json:"usage"`
	Stats     jsonStats       `json:"stats"`
	Blocks    []jsonBlock     `json:"blocks,omitempty"`
	Truncated int             `json:"truncated,omitempty"`
	FreeLists []jsonFreeLevel `json:"free_lists,omitempty"`
}

type jsonUsage struct {
	ArenaBytes  uint64 `json:"arena_bytes"`
	FreeBytes   uint64 `json:"free_bytes"`
	TakenBytes  uint64 `json:"taken_bytes"`
	LargestFree int    `json:"largest_free_level"`
}

type jsonStats struct {
	AllocCalls   int `json:"alloc_calls"`
	FreeCalls    int `json:"free_calls"`
	FailedAllocs int `json:"failed_allocs"`
	FailedFrees  int `json:"failed_frees"`
	Splits       int `json:"splits"`
	Merges       int `json:"merges"`
}

type jsonBlock struct {
	Offset    uint32 `json:"offset"`
	Level     int    `json:"level"`
	Size      uint64 `json:"size"`
	Status    string `json:"status"`
	Requested uint32 `json:"requested,omitempty"`
}

type jsonFreeLevel struct {
	Level   int      `json:"level"`
	Size    uint64   `json:"size"`
	Offsets []uint32 `json:"offsets"`
}

// printJSON writes the snapshot as one indented JSON document.
func (pr *Printer) printJSON(s *snapshot) error {
	out := jsonArena{
		Name:   s.cfg.Name,
		MinExp: s.cfg.MinExp,
		MaxExp: s.cfg.MaxExp,
		Mapped: s.mapped,
		Usage: jsonUsage{
			ArenaBytes:  s.usage.ArenaBytes,
			FreeBytes:   s.usage.FreeBytes,
			TakenBytes:  s.usage.TakenBytes,
			LargestFree: s.usage.LargestFree,
		},
		Stats: jsonStats{
			AllocCalls:   s.stats.AllocCalls,
			FreeCalls:    s.stats.FreeCalls,
			FailedAllocs: s.stats.FailedAllocs,
			FailedFrees:  s.stats.FailedFrees,
			Splits:       s.stats.Splits,
			Merges:       s.stats.Merges,
		},
		Truncated: s.truncated,
	}
	for _, b := range s.blocks {
		out.Blocks = append(out.Blocks, jsonBlock{
			Offset:    b.Offset,
			Level:     b.Level,
			Size:      b.Size,
			Status:    b.Status.String(),
			Requested: b.Requested,
		})
	}
	for level, list := range s.freeLists {
		if len(list) == 0 {
			continue
		}
		out.FreeLists = append(out.FreeLists, jsonFreeLevel{
			Level:   level,
			Size:    s.cfg.LevelSize(level),
			Offsets: list,
		})
	}

	enc := json.NewEncoder(pr.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("printer: encode json: %w", err)
	}
	return nil
}
