// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"expvar"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	searchTotal     *expvar.Int
	searchEmpty     *expvar.Int
	searchLatencyMS *expvar.Int

	generateTotal    *expvar.Int
	generateFailures *expvar.Int
	generateLatency  *expvar.Int

	parseStructured *expvar.Int
	parseHeuristic  *expvar.Int

	indexSkippedTotal *expvar.Int
	indexDocsTotal    *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		searchTotal = expvar.NewInt("cropdoctor_retrieval_search_total")
		searchEmpty = expvar.NewInt("cropdoctor_retrieval_search_empty")
		searchLatencyMS = expvar.NewInt("cropdoctor_retrieval_search_latency_ms")

		generateTotal = expvar.NewInt("cropdoctor_generate_total")
		generateFailures = expvar.NewInt("cropdoctor_generate_failures")
		generateLatency = expvar.NewInt("cropdoctor_generate_latency_ms")

		parseStructured = expvar.NewInt("cropdoctor_parse_structured_total")
		parseHeuristic = expvar.NewInt("cropdoctor_parse_heuristic_total")

		indexSkippedTotal = expvar.NewInt("cropdoctor_index_skipped_total")
		indexDocsTotal = expvar.NewInt("cropdoctor_index_docs_total")
	})
}

// RecordSearch captures one retrieval search and its latency.
func RecordSearch(results int, dur time.Duration) {
	ensureInit()
	searchTotal.Add(1)
	if results == 0 {
		searchEmpty.Add(1)
	}
	searchLatencyMS.Add(dur.Milliseconds())
}

// RecordGenerate captures one generator call.
func RecordGenerate(ok bool, dur time.Duration) {
	ensureInit()
	generateTotal.Add(1)
	if !ok {
		generateFailures.Add(1)
	}
	generateLatency.Add(dur.Milliseconds())
}

// RecordParse captures which tier of the response parser produced the
// recommendation.
func RecordParse(structured bool) {
	ensureInit()
	if structured {
		parseStructured.Add(1)
	} else {
		parseHeuristic.Add(1)
	}
}

// RecordIndexed captures corpus indexing progress.
func RecordIndexed(docs, skipped int) {
	ensureInit()
	indexDocsTotal.Add(int64(docs))
	indexSkippedTotal.Add(int64(skipped))
}
