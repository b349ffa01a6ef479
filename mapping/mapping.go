// Package mapping projects fields of an "original" sample — its header,
// timestamps, raw values, or observed statistics — into indexed slots of a
// "remapped" sample, grounded on original_source/lib/mapping.c.
//
// The reference implementation's mapping_update has a documented bug: its
// MAPPING_TYPE_STATS switch case has no terminating break, so execution
// falls through into MAPPING_TYPE_TS and writes two extra slots nobody
// asked for. This package treats that as a bug, not a behavior to
// reproduce: each Kind is applied independently.
package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/villas-go/villasnode/sample"
)

// Kind identifies which family of source data a Token projects from.
type Kind int

const (
	KindStats Kind = iota
	KindHdr
	KindTS
	KindData
)

// StatsAgg identifies which aggregate of a histogram a stats.<id>.<agg>
// token reads.
type StatsAgg int

const (
	StatsTotal StatsAgg = iota
	StatsLast
	StatsLowest
	StatsHighest
	StatsMean
	StatsVar
	StatsStddev
)

// HdrField identifies which header scalar a hdr.<field> token reads.
type HdrField int

const (
	HdrSequence HdrField = iota
	HdrLength
	HdrID
	HdrFormat
)

// TSField identifies which timestamp pair a ts.<id> token reads.
type TSField int

const (
	TSOrigin TSField = iota
	TSReceived
	TSSent
)

// Token is one parsed mapping directive: <node>?.<source>[.<subfield>
// [.<detail>]][<range>], per spec §4.E.
type Token struct {
	Node string // empty when unqualified

	Kind Kind

	StatsID  int
	StatsAgg StatsAgg

	Hdr HdrField
	TS  TSField

	// DataFrom/DataTo are the inclusive original-sample slot range for
	// KindData; DataAll is set when the token was plain "data" (no
	// range), meaning "take the original's full length".
	DataFrom, DataTo int
	DataAll          bool

	// Offset is the remapped sample's destination slot for this token's
	// first written value; Length is how many slots it writes. Offset is
	// assigned by the caller building a mapping list (mirroring the
	// original's running `off` accumulator), not by Parse.
	Offset int
	Length int
}

// StatsLookup maps a stats field name (e.g. "owd", "gap") to a stable
// numeric id. It stands in for the reference implementation's
// stats_lookup_id, which is external to the sample-routing core this
// package belongs to.
type StatsLookup func(field string) (int, bool)

// Parse parses a single mapping token in literal grammar form. nodeNames,
// if non-nil, restricts the optional leading "<node>." qualifier to a
// known set; a token with no matching node prefix is treated as
// unqualified.
func Parse(str string, lookupStats StatsLookup, nodeNames map[string]bool) (*Token, error) {
	t := &Token{}

	rest := str
	if nodeNames != nil {
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			candidate := rest[:dot]
			if nodeNames[candidate] {
				t.Node = candidate
				rest = rest[dot+1:]
			}
		}
	}

	source, remainder, _ := cutAny(rest, ".[")
	if source == "" {
		source = "data"
	}

	switch source {
	case "stats":
		t.Kind = KindStats
		t.Length = 1
		field, remainder2, ok := cutOne(remainder, '.')
		if !ok {
			return nil, fmt.Errorf("mapping: %q: missing stats field", str)
		}
		subfield, _, ok := cutOne(remainder2, '.')
		if !ok {
			subfield = remainder2
		}
		if lookupStats == nil {
			return nil, fmt.Errorf("mapping: %q: no stats lookup available", str)
		}
		id, ok := lookupStats(field)
		if !ok {
			return nil, fmt.Errorf("mapping: %q: unknown stats field %q", str, field)
		}
		t.StatsID = id
		agg, ok := parseStatsAgg(subfield)
		if !ok {
			return nil, fmt.Errorf("mapping: %q: unknown stats aggregate %q", str, subfield)
		}
		t.StatsAgg = agg

	case "hdr":
		t.Kind = KindHdr
		t.Length = 1
		field, _, ok := cutOne(remainder, '.')
		if !ok {
			field = remainder
		}
		hf, ok := parseHdrField(field)
		if !ok {
			return nil, fmt.Errorf("mapping: %q: unknown hdr field %q", str, field)
		}
		t.Hdr = hf

	case "ts":
		t.Kind = KindTS
		t.Length = 2
		field, _, ok := cutOne(remainder, '.')
		if !ok {
			field = remainder
		}
		tf, ok := parseTSField(field)
		if !ok {
			return nil, fmt.Errorf("mapping: %q: unknown ts field %q", str, field)
		}
		t.TS = tf

	case "data":
		t.Kind = KindData
		rangeStr := extractRange(str)
		if rangeStr == "" {
			t.DataAll = true
			t.Length = 0 // resolved against the original sample's length at apply time
		} else {
			from, to, err := parseRange(rangeStr)
			if err != nil {
				return nil, fmt.Errorf("mapping: %q: %w", str, err)
			}
			t.DataFrom, t.DataTo = from, to
			t.Length = to - from + 1
		}

	default:
		return nil, fmt.Errorf("mapping: %q: unknown source %q", str, source)
	}

	return t, nil
}

func cutAny(s, cutset string) (before, after string, found bool) {
	i := strings.IndexAny(s, cutset)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func cutOne(s string, sep byte) (before, after string, found bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func extractRange(str string) string {
	open := strings.IndexByte(str, '[')
	if open < 0 {
		return ""
	}
	closeb := strings.IndexByte(str[open:], ']')
	if closeb < 0 {
		return ""
	}
	return str[open+1 : open+closeb]
}

func parseRange(s string) (from, to int, err error) {
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		from, err = strconv.Atoi(s[:dash])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range start: %w", err)
		}
		to, err = strconv.Atoi(s[dash+1:])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end: %w", err)
		}
	} else {
		from, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range index: %w", err)
		}
		to = from
	}
	if to < from {
		return 0, 0, fmt.Errorf("range end %d before start %d", to, from)
	}
	return from, to, nil
}

func parseStatsAgg(s string) (StatsAgg, bool) {
	switch s {
	case "total":
		return StatsTotal, true
	case "last":
		return StatsLast, true
	case "lowest":
		return StatsLowest, true
	case "highest":
		return StatsHighest, true
	case "mean":
		return StatsMean, true
	case "var":
		return StatsVar, true
	case "stddev":
		return StatsStddev, true
	}
	return 0, false
}

func parseHdrField(s string) (HdrField, bool) {
	switch s {
	case "sequence":
		return HdrSequence, true
	case "length":
		return HdrLength, true
	case "id":
		return HdrID, true
	case "format":
		return HdrFormat, true
	}
	return 0, false
}

func parseTSField(s string) (TSField, bool) {
	switch s {
	case "origin":
		return TSOrigin, true
	case "received":
		return TSReceived, true
	case "sent":
		return TSSent, true
	}
	return 0, false
}

// Histogram is the minimal statistic accessor a stats.<id>.<agg> token
// needs; it is satisfied by whatever per-path stats collector a node or
// hook maintains.
type Histogram interface {
	Total() float64
	Last() float64
	Lowest() float64
	Highest() float64
	Mean() float64
	Var() float64
	Stddev() float64
}

// StatsSource resolves a stats id (as produced by StatsLookup) to its
// Histogram.
type StatsSource func(id int) Histogram

// Apply projects one Token from original into remapped at t.Offset,
// widening remapped's length to include every slot the token writes, and
// never writing past remapped's capacity.
func Apply(t *Token, remapped, original *sample.Sample, stats StatsSource) error {
	length := t.Length
	if t.Kind == KindData && t.DataAll {
		length = original.Length()
	}

	if t.Offset+length > remapped.Capacity() {
		return fmt.Errorf("mapping: token would write past remapped capacity")
	}
	if t.Offset+length > remapped.Length() {
		remapped.SetLength(t.Offset + length)
	}

	switch t.Kind {
	case KindStats:
		if stats == nil {
			return fmt.Errorf("mapping: stats token without a stats source")
		}
		h := stats(t.StatsID)
		if h == nil {
			return fmt.Errorf("mapping: unknown stats id %d", t.StatsID)
		}
		var v float64
		switch t.StatsAgg {
		case StatsTotal:
			v = h.Total()
		case StatsLast:
			v = h.Last()
		case StatsLowest:
			v = h.Lowest()
		case StatsHighest:
			v = h.Highest()
		case StatsMean:
			v = h.Mean()
		case StatsVar:
			v = h.Var()
		case StatsStddev:
			v = h.Stddev()
		default:
			return fmt.Errorf("mapping: unknown stats aggregate %d", t.StatsAgg)
		}
		remapped.SetFormat(t.Offset, sample.FormatFloat)
		remapped.SetValue(t.Offset, sample.Value{F: v})

	case KindHdr:
		var v int64
		switch t.Hdr {
		case HdrSequence:
			v = int64(original.Sequence)
		case HdrLength:
			v = int64(original.Length())
		case HdrID:
			v = int64(original.ID)
		case HdrFormat:
			// The original's per-sample "format" is a bitmap; slot 0's tag
			// stands in for it here since remapped headers are single-valued.
			v = int64(original.Format(0))
		default:
			return fmt.Errorf("mapping: unknown hdr field %d", t.Hdr)
		}
		remapped.SetFormat(t.Offset, sample.FormatInt)
		remapped.SetValue(t.Offset, sample.Value{I: v})

	case KindTS:
		var sec, nsec int64
		switch t.TS {
		case TSOrigin:
			sec, nsec = original.OriginSec, original.OriginNsec
		case TSReceived:
			sec, nsec = original.ReceivedSec, original.ReceivedNs
		case TSSent:
			sec, nsec = original.SentSec, original.SentNsec
		default:
			return fmt.Errorf("mapping: unknown ts field %d", t.TS)
		}
		remapped.SetFormat(t.Offset, sample.FormatInt)
		remapped.SetValue(t.Offset, sample.Value{I: sec})
		remapped.SetFormat(t.Offset+1, sample.FormatInt)
		remapped.SetValue(t.Offset+1, sample.Value{I: nsec})

	case KindData:
		from, to := t.DataFrom, t.DataTo
		if t.DataAll {
			from, to = 0, original.Length()-1
		}
		off := t.Offset
		for j := from; j <= to; j++ {
			if j >= original.Length() {
				remapped.SetFormat(off, sample.FormatFloat)
				remapped.SetValue(off, sample.Value{F: 0})
			} else {
				remapped.SetFormat(off, original.Format(j))
				remapped.SetValue(off, original.Value(j))
			}
			off++
		}

	default:
		return fmt.Errorf("mapping: unknown token kind %d", t.Kind)
	}

	return nil
}

// ApplyAll copies remapped's shared header fields from original (spec's
// mapping_remap: sequence and timestamps travel unconditionally) and then
// applies every token in order, each writing at its own pre-assigned
// Offset.
func ApplyAll(tokens []*Token, remapped, original *sample.Sample, stats StatsSource) error {
	remapped.Sequence = original.Sequence
	remapped.Source = original.Source
	remapped.OriginSec, remapped.OriginNsec = original.OriginSec, original.OriginNsec
	remapped.ReceivedSec, remapped.ReceivedNs = original.ReceivedSec, original.ReceivedNs
	remapped.SentSec, remapped.SentNsec = original.SentSec, original.SentNsec

	for _, t := range tokens {
		if err := Apply(t, remapped, original, stats); err != nil {
			return err
		}
	}
	return nil
}

// AssignOffsets lays tokens out contiguously starting at 0, resolving any
// KindData/DataAll token's Length against originalLength, and returns the
// total width written. This mirrors the reference implementation's
// running `off` accumulator in mapping_update, hoisted out of Apply into
// its own pass; it writes each token's Offset in place and leaves Length
// unchanged.
func AssignOffsets(tokens []*Token, originalLength int) int {
	off := 0
	for _, t := range tokens {
		t.Offset = off
		length := t.Length
		if t.Kind == KindData && t.DataAll {
			length = originalLength
		}
		off += length
	}
	return off
}
