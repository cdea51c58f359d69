// Package classify implements Stage 0: mapping an input filename to a
// channel kind via a priority-ordered pattern table (spec.md §4.1).
package classify

import (
	"regexp"
	"strings"

	"chillgrid/domain/signal"
)

// Decision is the Stage 0 output for one file.
type Decision struct {
	Channel     signal.ChannelKind
	Confidence  float64
	MatchedRule string
}

type rule struct {
	name    string
	channel signal.ChannelKind
	conf    float64
	pattern *regexp.Regexp
}

// rules is priority-ordered: first match wins. Condenser keywords are
// checked first because they are highly specific; generic LOAD resolves
// to POWER last among the strong matches.
var rules = []rule{
	{"condenser_return", signal.ChannelCDWRT, 1.0, regexp.MustCompile(`COND|CDW`)},
	{"chws_supply", signal.ChannelCHWST, 1.0, regexp.MustCompile(`CHW.*SUPPLY|CHWST|CHW.*ST\b|SUPPLY.*TEMP|LEAVING.*TEMP|CHW.*LEAV`)},
	{"chws_return", signal.ChannelCHWRT, 1.0, regexp.MustCompile(`CHW.*RETURN|CHWRT|CHW.*RT\b|RETURN.*TEMP|ENTERING.*TEMP|CHW.*ENTER`)},
	{"power_generic", signal.ChannelPower, 0.8, regexp.MustCompile(`POWER|KW|KILOWATT|WATT|ENERGY|ELEC|DEMAND|LOAD`)},
	{"flow_generic", signal.ChannelFlow, 0.8, regexp.MustCompile(`FLOW|GPM|LPS|L/S|LITRE|GALLON|RATE`)},
}

// normalize upper-cases, strips the extension, and normalises delimiters
// to a single space so pattern matching ignores punctuation noise.
func normalize(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.ToUpper(name)
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	return replacer.Replace(name)
}

// Classify maps filename to a channel kind per the priority table.
// No match returns ChannelOther at confidence 0.0 — spec.md §4.1's
// "unknown channel kind" failure mode, still admitted as an auxiliary
// signal but excluded from BMD requirements.
func Classify(filename string) Decision {
	normalized := normalize(filename)
	for _, r := range rules {
		if r.pattern.MatchString(normalized) {
			return Decision{Channel: r.channel, Confidence: r.conf, MatchedRule: r.name}
		}
	}
	return Decision{Channel: signal.ChannelOther, Confidence: 0.0, MatchedRule: "none"}
}

// Classification is the persisted Stage 0 artifact (stage0_classification.json).
type Classification struct {
	FeedMap map[string]signal.ChannelKind `json:"feed_map"`
	Files   []FileClassification         `json:"files"`
}

// FileClassification is one file's classification record for audit.
type FileClassification struct {
	Filename    string             `json:"filename"`
	Channel     signal.ChannelKind `json:"channel"`
	Confidence  float64            `json:"confidence"`
	MatchedRule string             `json:"matched_rule"`
}

// ClassifyAll classifies a batch of filenames and builds the feed map.
func ClassifyAll(filenames []string) Classification {
	out := Classification{
		FeedMap: make(map[string]signal.ChannelKind, len(filenames)),
		Files:   make([]FileClassification, 0, len(filenames)),
	}
	for _, f := range filenames {
		d := Classify(f)
		out.FeedMap[f] = d.Channel
		out.Files = append(out.Files, FileClassification{
			Filename: f, Channel: d.Channel, Confidence: d.Confidence, MatchedRule: d.MatchedRule,
		})
	}
	return out
}
