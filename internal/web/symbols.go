package web

import (
	"net/http"
	"slices"

	"github.com/peterkuimelis/pairs/internal/game"
)

// SymbolSetInfo is the JSON representation of a symbol set for the
// /api/symbols endpoint.
type SymbolSetInfo struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if s.opts.SymbolsFile == "" {
		writeJSON(w, []SymbolSetInfo{{Number: 1, Name: "default", Symbols: game.DefaultSymbols}})
		return
	}

	sf, err := game.ParseSymbolFile(s.opts.SymbolsFile)
	if err != nil {
		s.logger.Warn("could not read symbols file", "path", s.opts.SymbolsFile, "error", err)
		http.Error(w, "could not read symbols file", http.StatusInternalServerError)
		return
	}

	sets := make([]SymbolSetInfo, 0, len(sf.Sets))
	for i, set := range sf.Sets {
		// Unique symbols for display
		var uniq []string
		for _, sym := range set.Symbols {
			if !slices.Contains(uniq, sym) {
				uniq = append(uniq, sym)
			}
		}
		sets = append(sets, SymbolSetInfo{Number: i + 1, Name: set.Name, Symbols: uniq})
	}
	writeJSON(w, sets)
}
