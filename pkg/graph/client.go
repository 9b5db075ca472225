package graph

// Processor turns batches of judgment records into graph triples.
//
// A Processor holds no state between batches. Every call to RunBatch starts
// with empty memo tables and an empty title index, so identical input always
// yields identical output.
//
// A Processor should be created using NewProcessor.
type Processor struct {
	sentinels sentinelSet
}

// NewProcessorParams defines the configuration for a new Processor.
//
// ExtraSentinels adds raw values that are treated as missing in addition to
// the built-in ones ("", "nan", "null", "none", "n/a", "[]", "{}").
type NewProcessorParams struct {
	ExtraSentinels []string
}

// NewProcessor creates a Processor configured with params.
//
// Example:
//
//	p := graph.NewProcessor(graph.NewProcessorParams{})
//	res := p.RunBatch(records)
//	for _, t := range res.Triples {
//		fmt.Println(t.Subject, t.Predicate, t.Object)
//	}
func NewProcessor(params NewProcessorParams) *Processor {
	return &Processor{
		sentinels: newSentinelSet(params.ExtraSentinels),
	}
}
