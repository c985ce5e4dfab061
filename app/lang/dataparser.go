package lang

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DataParser finds data candidates in a tokenized line.
type DataParser interface {
	Name() string
	Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error)
}

// ParseData runs every parser concurrently on line and returns the selected
// non-overlapping data sorted by start. A failing parser is logged and
// ignored; only cancellation aborts the batch. culture may be any tag;
// parsers receive the matched grammar culture.
func ParseData(ctx context.Context, logger *log.Logger, parsers []DataParser, culture string, line TokenizedTextLine) ([]Data, error) {
	culture = MatchCulture(culture)
	results := make([][]Data, len(parsers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parsers {
		g.Go(func() error {
			d, err := runDataParser(gctx, p, culture, line)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				logger.Printf("data parser %s failed on line %d: %v", p.Name(), line.LineNumber, err)
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var all []Data
	for _, r := range results {
		all = append(all, r...)
	}
	return SelectNonOverlappingData(all), nil
}

func runDataParser(ctx context.Context, p DataParser, culture string, line TokenizedTextLine) (d []Data, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Parse(ctx, culture, line)
}

// SelectNonOverlappingData picks the winning data among candidates:
//   - a candidate contained in another one with different bounds loses;
//   - among candidates with identical spans, the one whose type matches the
//     nearest already-resolved neighbour wins, else the one with the lowest
//     ConflictResolutionPriority;
//   - of partially overlapping spans, the longer, then the earlier, wins.
//
// The result is sorted by start.
func SelectNonOverlappingData(candidates []Data) []Data {
	var kept []Data
	for _, c := range candidates {
		if c == nil || c.Length() <= 0 {
			continue
		}
		contained := false
		for _, o := range candidates {
			if o == nil || o == c || sameSpan(o, c) {
				continue
			}
			if o.StartInLine() <= c.StartInLine() && o.EndInLine() >= c.EndInLine() {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, c)
		}
	}

	// group identical spans
	type group struct {
		start, end int
		data       []Data
	}
	var groups []*group
	index := map[[2]int]*group{}
	for _, d := range kept {
		key := [2]int{d.StartInLine(), d.EndInLine()}
		g, ok := index[key]
		if !ok {
			g = &group{start: key[0], end: key[1]}
			index[key] = g
			groups = append(groups, g)
		}
		g.data = append(g.data, d)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		li, lj := groups[i].end-groups[i].start, groups[j].end-groups[j].start
		if li != lj {
			return li > lj
		}
		return groups[i].start < groups[j].start
	})
	var accepted []*group
	for _, g := range groups {
		overlaps := false
		for _, a := range accepted {
			if g.start < a.end && a.start < g.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, g)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	resolved := make([]Data, len(accepted))
	for i, g := range accepted {
		if len(g.data) == 1 {
			resolved[i] = g.data[0]
		}
	}
	for i, g := range accepted {
		if resolved[i] == nil {
			resolved[i] = resolveConflict(g.data, resolved, i)
		}
	}
	return resolved
}

// resolveConflict chooses among data sharing one span.
func resolveConflict(candidates []Data, resolved []Data, at int) Data {
	pick := func(neighbour Data) Data {
		if neighbour == nil {
			return nil
		}
		for _, c := range candidates {
			if c.Type() == neighbour.Type() {
				return c
			}
		}
		return nil
	}
	for i := at - 1; i >= 0; i-- {
		if resolved[i] != nil {
			if d := pick(resolved[i]); d != nil {
				return d
			}
			break
		}
	}
	for i := at + 1; i < len(resolved); i++ {
		if resolved[i] != nil {
			if d := pick(resolved[i]); d != nil {
				return d
			}
			break
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ConflictResolutionPriority() < best.ConflictResolutionPriority() {
			best = c
		}
	}
	return best
}
