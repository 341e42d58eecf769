package printer

import "github.com/joshuapare/buddykit/buddy"

// printText writes the snapshot as aligned text with grouped numbers.
func (pr *Printer) printText(s *snapshot) error {
	p := pr.p
	w := pr.writer
	name := s.cfg.Name
	if name == "" {
		name = "custom"
	}

	if _, err := p.Fprintf(w, "Arena %q: %d bytes, blocks %d B .. %d B (levels 0-%d)\n",
		name, s.cfg.ArenaSize(), s.cfg.LevelSize(0), s.cfg.ArenaSize(), s.cfg.TopLevel()); err != nil {
		return err
	}
	if !s.mapped {
		_, err := p.Fprintf(w, "Not mapped (no allocation yet)\n")
		return err
	}
	largest := "none"
	if s.usage.LargestFree >= 0 {
		largest = p.Sprintf("level %d (%d B)", s.usage.LargestFree, s.cfg.LevelSize(s.usage.LargestFree))
	}
	if _, err := p.Fprintf(w, "Usage: %d bytes taken, %d bytes free, largest free block %s\n",
		s.usage.TakenBytes, s.usage.FreeBytes, largest); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "Calls: %d allocs (%d failed), %d frees (%d failed), %d splits, %d merges\n",
		s.stats.AllocCalls, s.stats.FailedAllocs, s.stats.FreeCalls, s.stats.FailedFrees,
		s.stats.Splits, s.stats.Merges); err != nil {
		return err
	}

	if s.blocks != nil {
		if _, err := p.Fprintf(w, "\n%-10s %5s %10s %-6s %10s\n", "OFFSET", "LEVEL", "SIZE", "STATUS", "REQUESTED"); err != nil {
			return err
		}
		for _, b := range s.blocks {
			req := "-"
			if b.Status == buddy.StatusTaken {
				req = p.Sprintf("%d", b.Requested)
			}
			if _, err := p.Fprintf(w, "0x%08X %5d %10d %-6s %10s\n",
				b.Offset, b.Level, b.Size, b.Status, req); err != nil {
				return err
			}
		}
		if s.truncated > 0 {
			if _, err := p.Fprintf(w, "... %d more blocks\n", s.truncated); err != nil {
				return err
			}
		}
	}

	if s.freeLists != nil {
		if _, err := p.Fprintf(w, "\nFree lists:\n"); err != nil {
			return err
		}
		for level, list := range s.freeLists {
			if len(list) == 0 {
				continue
			}
			if _, err := p.Fprintf(w, "  level %2d (%d B): %d", level, s.cfg.LevelSize(level), len(list)); err != nil {
				return err
			}
			for _, off := range list {
				if _, err := p.Fprintf(w, " 0x%X", off); err != nil {
					return err
				}
			}
			if _, err := p.Fprintf(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
