package game

import "math/rand"

// BuildDeck deals a shuffled deck of pairCount pairs.
//
// Remote items are used when there are at least pairCount distinct ones;
// otherwise the deck is built from the first pairCount distinct fallback
// symbols. The two sources are never mixed. A short fallback list yields a
// smaller deck.
func BuildDeck(rng *rand.Rand, pairCount int, remote []RemoteItem, fallback []string) []Card {
	if pairCount <= 0 {
		return nil
	}

	var deck []Card
	items := dedupeRemote(remote)
	if len(items) >= pairCount {
		for _, i := range rng.Perm(len(items))[:pairCount] {
			deck = append(deck, PairFromImageURL(items[i].ImageURL)...)
		}
	} else {
		symbols := dedupeSymbols(fallback)
		n := min(pairCount, len(symbols))
		for _, sym := range symbols[:n] {
			deck = append(deck, PairFromSymbol(sym)...)
		}
	}

	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// dedupeRemote drops items without a URL and repeats of an ID or URL,
// keeping the first occurrence.
func dedupeRemote(remote []RemoteItem) []RemoteItem {
	seenID := make(map[string]bool)
	seenURL := make(map[string]bool)
	var out []RemoteItem
	for _, it := range remote {
		if it.ImageURL == "" || seenID[it.ID] || seenURL[it.ImageURL] {
			continue
		}
		seenID[it.ID] = true
		seenURL[it.ImageURL] = true
		out = append(out, it)
	}
	return out
}

// dedupeSymbols drops empty and repeated symbol names, keeping first-seen
// order.
func dedupeSymbols(fallback []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sym := range fallback {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
